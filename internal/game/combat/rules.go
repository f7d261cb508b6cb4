package combat

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// hitTable holds base hit percentages indexed by [Distance][BodyPartType].
var hitTable = [3][numBodyParts]int{
	Close:  {Head: 70, Thorax: 90, Arm: 80, Leg: 80},
	Medium: {Head: 40, Thorax: 60, Arm: 50, Leg: 50},
	Far:    {Head: 15, Thorax: 25, Arm: 20, Leg: 20},
}

// BaseHitPercent returns the table percentage for a shot at part from d.
func BaseHitPercent(d Distance, part BodyPartType) int {
	if d < Close || d > Far || part < Head || part > Leg {
		return 0
	}
	return hitTable[d][part]
}

// Rules collects the tunable probabilities of the engine.
type Rules struct {
	// CoverPierceChance is the chance an enemy hit on a covered target
	// breaks through the cover and connects.
	CoverPierceChance float64
	// CoverBreakOnHitChance is the chance a landed hit knocks the target
	// out of cover.
	CoverBreakOnHitChance float64
	// StrayShotChance is the chance a miss at a covered target strips cover.
	StrayShotChance float64
	// FlankChance is the per-turn chance an enemy starts flanking a covered player.
	FlankChance float64
	// FlankTurns is the countdown assigned when a flank starts.
	FlankTurns int
	FleeChance float64
	// PlayerCoverAccuracy scales the player's hit percentage while in cover.
	PlayerCoverAccuracy float64
	OverkillDamage      int

	HeadShotChance float64
	LegShotChance  float64
	ArmShotChance  float64
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		CoverPierceChance:     0.30,
		CoverBreakOnHitChance: 0.50,
		StrayShotChance:       0.30,
		FlankChance:           0.35,
		FlankTurns:            2,
		FleeChance:            0.50,
		PlayerCoverAccuracy:   0.75,
		OverkillDamage:        9999,
		HeadShotChance:        0.20,
		LegShotChance:         0.30,
		ArmShotChance:         0.30,
	}
}

// Validate checks every probability lies in [0, 1] and the integer knobs
// are in range, reporting all violations at once.
func (r Rules) Validate() error {
	var errs []error
	probs := map[string]float64{
		"cover_pierce_chance":       r.CoverPierceChance,
		"cover_break_on_hit_chance": r.CoverBreakOnHitChance,
		"stray_shot_chance":         r.StrayShotChance,
		"flank_chance":              r.FlankChance,
		"flee_chance":               r.FleeChance,
		"player_cover_accuracy":     r.PlayerCoverAccuracy,
		"head_shot_chance":          r.HeadShotChance,
		"leg_shot_chance":           r.LegShotChance,
		"arm_shot_chance":           r.ArmShotChance,
	}
	for _, name := range slices.Sorted(maps.Keys(probs)) {
		if v := probs[name]; v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}
	if r.FlankTurns < 1 || r.FlankTurns > 2 {
		errs = append(errs, fmt.Errorf("flank_turns must be 1 or 2, got %d", r.FlankTurns))
	}
	if r.OverkillDamage <= 0 {
		errs = append(errs, fmt.Errorf("overkill_damage must be > 0, got %d", r.OverkillDamage))
	}
	return errors.Join(errs...)
}

// HitChance returns the probability in [0, 1] that attacker hits part.
// A player attacker in cover has the table percentage scaled by
// PlayerCoverAccuracy and rounded up.
func (r Rules) HitChance(attacker *Combatant, part BodyPartType) float64 {
	pct := BaseHitPercent(attacker.Distance, part)
	if attacker.Kind == KindPlayer && attacker.InCover {
		// ceil in basis points so 50 * 0.7 is 35, not 36
		bp := int(math.Round(r.PlayerCoverAccuracy * 10000))
		pct = (pct*bp + 9999) / 10000
	}
	return float64(pct) / 100
}

// CalculateHitChance is HitChance under DefaultRules.
func CalculateHitChance(attacker *Combatant, part BodyPartType) float64 {
	return DefaultRules().HitChance(attacker, part)
}
