package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// Source is the subset of dice.Source used by the engine.
// Using a local interface avoids importing dice for one method set.
type Source interface {
	Intn(n int) int
	Float64() float64
}

var (
	// ErrNoWeapon is returned when the shooter has nothing equipped.
	ErrNoWeapon = errors.New("no weapon equipped")
	// ErrReloading is returned when the shooter's weapon is waiting for a reload.
	ErrReloading = errors.New("weapon needs reloading")
	// ErrEmpty is returned when the shooter's magazine is empty.
	ErrEmpty = errors.New("magazine is empty")
)

// CanFire reports why c cannot shoot, or nil if it can.
func CanFire(c *Combatant) error {
	switch {
	case c.Weapon == nil:
		return ErrNoWeapon
	case c.Weapon.Reloading:
		return ErrReloading
	case c.Weapon.Ammo() == 0:
		return ErrEmpty
	}
	return nil
}

// ShotResult describes the outcome of one fired round.
type ShotResult struct {
	Part        BodyPartType
	Roll        float64
	HitChance   float64
	Hit         bool
	Blocked     bool
	Damage      int
	Killed      bool
	CoverBroken bool
}

// FleeResult describes the outcome of a flee attempt.
type FleeResult int

const (
	FleeSucceeded FleeResult = iota
	FleeFailed
	FleeWrongDistance
	FleeLegsGone
	FleeNotAllowed
)

// String returns a short label for r.
func (r FleeResult) String() string {
	switch r {
	case FleeSucceeded:
		return "succeeded"
	case FleeFailed:
		return "failed"
	case FleeWrongDistance:
		return "wrong_distance"
	case FleeLegsGone:
		return "legs_gone"
	default:
		return "not_allowed"
	}
}

// TargetAdvisor lets an external policy pick an enemy's aim point.
// ok == false defers to the built-in policy.
type TargetAdvisor interface {
	ChooseTarget(enemy, player *Combatant) (part BodyPartType, ok bool)
	FlankChance(enemy, player *Combatant, base float64) float64
}

// Resolver applies the combat rules to pairs of combatants and narrates the
// results. A Resolver is not safe for concurrent use; each engagement owns one.
type Resolver struct {
	src       Source
	rules     Rules
	out       Output
	logger    *zap.Logger
	advisor   TargetAdvisor
	observers []Observer
}

// NewResolver creates a Resolver.
//
// Precondition: src, out and logger must be non-nil; rules must validate.
func NewResolver(src Source, rules Rules, out Output, logger *zap.Logger) *Resolver {
	if src == nil || out == nil || logger == nil {
		panic("combat.NewResolver: src, out and logger must not be nil")
	}
	return &Resolver{src: src, rules: rules, out: out, logger: logger}
}

// SetAdvisor installs an enemy targeting policy. nil restores the default.
func (r *Resolver) SetAdvisor(a TargetAdvisor) { r.advisor = a }

// AddObserver registers o to receive every emitted event.
func (r *Resolver) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Rules returns the rules in effect.
func (r *Resolver) Rules() Rules { return r.rules }

func (r *Resolver) emit(ev Event) {
	if ev.Narrative != "" {
		var err error
		if w, ok := r.out.(EventWriter); ok {
			err = w.WriteEvent(ev)
		} else {
			err = r.out.WriteLine(ev.Narrative)
		}
		if err != nil {
			r.logger.Debug("writing narrative", zap.Error(err))
		}
	}
	for _, o := range r.observers {
		o.Observe(ev)
	}
}

func (r *Resolver) say(format string, args ...any) {
	r.emit(Event{Type: EventInfo, Narrative: fmt.Sprintf(format, args...)})
}

// ShootAt fires one round from attacker at target's part.
//
// Precondition: attacker and target are non-nil and distinct.
// Postcondition: on error nothing changed. Otherwise exactly one round was
// consumed, and the returned ShotResult describes hit, miss, or block.
func (r *Resolver) ShootAt(attacker, target *Combatant, part BodyPartType) (ShotResult, error) {
	if err := CanFire(attacker); err != nil {
		return ShotResult{}, err
	}
	if err := attacker.Weapon.Fire(); err != nil {
		if errors.Is(err, inventory.ErrMagazineEmpty) {
			return ShotResult{}, ErrEmpty
		}
		return ShotResult{}, ErrReloading
	}

	res := ShotResult{Part: part, Roll: r.src.Float64(), HitChance: r.rules.HitChance(attacker, part)}
	dove := target.consumeJustTookCover()
	hit := res.Roll <= res.HitChance
	r.logger.Debug("shot",
		zap.String("attacker", attacker.Name),
		zap.String("target", target.Name),
		zap.Stringer("part", part),
		zap.Float64("roll", res.Roll),
		zap.Float64("chance", res.HitChance),
		zap.Bool("target_in_cover", target.InCover),
	)

	if attacker.Kind == KindEnemy && target.InCover {
		if !hit {
			r.emit(Event{Type: EventMiss, Actor: attacker, Target: target, Part: part, Narrative: missText(attacker, target)})
			return res, nil
		}
		if r.src.Float64() >= r.rules.CoverPierceChance {
			res.Blocked = true
			r.emit(Event{Type: EventBlockedByCover, Actor: attacker, Target: target, Part: part,
				Narrative: fmt.Sprintf("%s's shot is blocked by %s's cover!", attacker.Name, target.Name)})
			return res, nil
		}
		target.BreakCover()
		res.CoverBroken = true
		r.emit(Event{Type: EventCoverPierced, Actor: attacker, Target: target, Part: part,
			Narrative: fmt.Sprintf("%s's shot punches through %s's cover!", attacker.Name, target.Name)})
		if dove {
			r.emitDive(attacker, target)
		}
		r.land(attacker, target, part, &res)
		return res, nil
	}

	if !hit {
		r.emit(Event{Type: EventMiss, Actor: attacker, Target: target, Part: part, Narrative: missText(attacker, target)})
		if target.InCover && r.src.Float64() < r.rules.StrayShotChance {
			target.BreakCover()
			res.CoverBroken = true
			r.emit(Event{Type: EventStrayShot, Actor: attacker, Target: target,
				Narrative: fmt.Sprintf("A stray round chews through %s's cover. %s is exposed!", target.Name, target.Name)})
		}
		return res, nil
	}

	if dove {
		r.emitDive(attacker, target)
	}
	wasInCover := target.InCover
	r.land(attacker, target, part, &res)
	if wasInCover && r.src.Float64() < r.rules.CoverBreakOnHitChance {
		target.BreakCover()
		res.CoverBroken = true
		r.emit(Event{Type: EventCoverBroken, Actor: attacker, Target: target,
			Narrative: fmt.Sprintf("The impact knocks %s out of cover!", target.Name)})
	}
	if attacker.Kind == KindPlayer && attacker.InCover && target.Kind == KindEnemy && !target.IsDead() {
		target.StartFlank(1)
		r.emit(Event{Type: EventForcedFlank, Actor: target, Target: attacker,
			Narrative: fmt.Sprintf("%s marks your muzzle flash and starts moving around your cover!", target.Name)})
	}
	return res, nil
}

func (r *Resolver) emitDive(attacker, target *Combatant) {
	r.emit(Event{Type: EventDiveHit, Actor: attacker, Target: target,
		Narrative: fmt.Sprintf("%s is hit while diving for cover!", target.Name)})
}

// land applies a connecting hit and narrates it.
func (r *Resolver) land(attacker, target *Combatant, part BodyPartType, res *ShotResult) {
	bp := target.Part(part)
	wasBlackedOut := bp.IsBlackedOut()
	wasDead := target.IsDead()

	damage := attacker.Weapon.Damage()
	if wasBlackedOut {
		damage = r.rules.OverkillDamage
	}
	target.ApplyDamage(part, damage)
	res.Hit = true
	res.Damage = damage
	res.Killed = !wasDead && target.IsDead()

	ev := Event{Actor: attacker, Target: target, Part: part, Damage: damage}
	switch {
	case wasBlackedOut:
		ev.Type = EventHit
		if res.Killed {
			ev.Type = EventKill
		}
		ev.Narrative = overkillText(attacker, target, part)
	case bp.HP == 0:
		ev.Type = EventLimbDestroyed
		if res.Killed {
			ev.Type = EventKill
		}
		ev.Narrative = fatalityText(attacker, target, part)
	default:
		ev.Type = EventHit
		ev.Narrative = hitText(attacker, target, part, damage)
	}
	r.emit(ev)
}

// Reload reloads c's weapon and narrates the result. A combatant without a
// weapon is silently ignored.
func (r *Resolver) Reload(c *Combatant) {
	if c.Weapon == nil {
		return
	}
	if !c.Reload() {
		r.emit(Event{Type: EventAlreadyLoaded, Actor: c,
			Narrative: fmt.Sprintf("%s's %s is already fully loaded.", c.Name, c.Weapon.Name())})
		return
	}
	r.emit(Event{Type: EventReload, Actor: c,
		Narrative: fmt.Sprintf("%s reloads the %s.", c.Name, c.Weapon.Name())})
}

// AttemptFlee rolls c's attempt to disengage. Only the player may flee;
// it must be at Far range with a working leg.
//
// Postcondition: no state changes; each call draws at most one roll.
func (r *Resolver) AttemptFlee(c *Combatant) FleeResult {
	if c.Kind != KindPlayer {
		return FleeNotAllowed
	}
	if c.Distance != Far {
		return FleeWrongDistance
	}
	if c.Part(Leg).IsBlackedOut() {
		return FleeLegsGone
	}
	if r.src.Float64() <= r.rules.FleeChance {
		return FleeSucceeded
	}
	return FleeFailed
}

// DecideAction runs one enemy turn against player: advance a flank in
// progress, reload, start a flank against a covered player, or shoot.
// Dead combatants and non-enemies do nothing.
func (r *Resolver) DecideAction(enemy, player *Combatant) {
	if enemy.Kind != KindEnemy || enemy.IsDead() {
		return
	}

	if enemy.Flanking {
		if !enemy.Tick() {
			r.emit(Event{Type: EventFlankAdvance, Actor: enemy, Target: player,
				Narrative: fmt.Sprintf("%s keeps working around your flank.", enemy.Name)})
			return
		}
		player.BreakCover()
		r.emit(Event{Type: EventFlankComplete, Actor: enemy, Target: player,
			Narrative: fmt.Sprintf("%s has flanked you! Your cover is useless.", enemy.Name)})
		return
	}

	if enemy.Weapon == nil {
		return
	}
	if enemy.Weapon.NeedsReload() {
		r.Reload(enemy)
		return
	}

	if player.InCover {
		chance := r.rules.FlankChance
		if r.advisor != nil {
			chance = clamp01(r.advisor.FlankChance(enemy, player, chance))
		}
		if r.src.Float64() < chance {
			enemy.StartFlank(r.rules.FlankTurns)
			r.emit(Event{Type: EventFlankStart, Actor: enemy, Target: player,
				Narrative: fmt.Sprintf("%s breaks off and starts flanking your position!", enemy.Name)})
			return
		}
	}

	part := r.chooseTarget(enemy, player)
	if _, err := r.ShootAt(enemy, player, part); err != nil {
		r.logger.Debug("enemy could not fire", zap.String("enemy", enemy.Name), zap.Error(err))
	}
}

func (r *Resolver) chooseTarget(enemy, player *Combatant) BodyPartType {
	if r.advisor != nil {
		if part, ok := r.advisor.ChooseTarget(enemy, player); ok {
			return part
		}
	}
	switch {
	case !player.Part(Head).IsBlackedOut() && r.src.Float64() < r.rules.HeadShotChance:
		return Head
	case !player.Part(Leg).IsBlackedOut() && r.src.Float64() < r.rules.LegShotChance:
		return Leg
	case !player.Part(Arm).IsBlackedOut() && r.src.Float64() < r.rules.ArmShotChance:
		return Arm
	default:
		return Thorax
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
