// Package combat implements the turn-based firefight engine: per-limb damage,
// table-driven hit chances, shot resolution, cover and flanking, and the
// engagement loop that alternates the player and the enemy squad.
package combat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// Kind distinguishes the player-controlled combatant from AI enemies.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// EnemyType selects an enemy's HP pools, weapon distribution and display name.
type EnemyType string

const (
	EnemyScav     EnemyType = "scav"
	EnemyFactionA EnemyType = "faction_a"
	EnemyFactionB EnemyType = "faction_b"
)

// Valid reports whether t is one of the known enemy types.
func (t EnemyType) Valid() bool {
	switch t {
	case EnemyScav, EnemyFactionA, EnemyFactionB:
		return true
	}
	return false
}

// HPPools holds the starting hit points of each body part.
type HPPools struct {
	Head   int `yaml:"head" mapstructure:"head"`
	Thorax int `yaml:"thorax" mapstructure:"thorax"`
	Arm    int `yaml:"arm" mapstructure:"arm"`
	Leg    int `yaml:"leg" mapstructure:"leg"`
}

// Validate reports an error if any pool is not positive.
func (p HPPools) Validate() error {
	for _, part := range BodyPartTypes() {
		if p.For(part) <= 0 {
			return fmt.Errorf("%s hp must be > 0, got %d", part, p.For(part))
		}
	}
	return nil
}

// For returns the pool for part.
func (p HPPools) For(part BodyPartType) int {
	switch part {
	case Head:
		return p.Head
	case Arm:
		return p.Arm
	case Leg:
		return p.Leg
	default:
		return p.Thorax
	}
}

// ScavPools are the HP pools of a scavenger.
var ScavPools = HPPools{Head: 50, Thorax: 150, Arm: 100, Leg: 100}

// OperatorPools are the HP pools of faction operators and the player.
var OperatorPools = HPPools{Head: 50, Thorax: 200, Arm: 150, Leg: 150}

// Combatant is one participant in an engagement. Fields shared by every
// participant live directly on the struct; JustTookCover is meaningful only
// for KindPlayer and EnemyType only for KindEnemy.
//
// Invariant: exactly one BodyPart per BodyPartType exists for the lifetime
// of the combatant.
type Combatant struct {
	ID             string
	Kind           Kind
	Name           string
	InCover        bool
	Flanking       bool
	FlankCountdown int
	Distance       Distance
	Weapon         *inventory.Weapon

	EnemyType     EnemyType
	JustTookCover bool

	parts [numBodyParts]BodyPart
}

func newCombatant(kind Kind, name string, pools HPPools, weapon *inventory.Weapon) *Combatant {
	c := &Combatant{
		ID:       uuid.New().String(),
		Kind:     kind,
		Name:     name,
		Distance: Medium,
		Weapon:   weapon,
	}
	for _, part := range BodyPartTypes() {
		c.parts[part] = NewBodyPart(pools.For(part))
	}
	return c
}

// NewPlayer creates the player-controlled combatant.
//
// Precondition: pools validate; weapon may be nil (the player cannot shoot).
func NewPlayer(name string, pools HPPools, weapon *inventory.Weapon) *Combatant {
	return newCombatant(KindPlayer, name, pools, weapon)
}

// NewEnemy creates an AI-controlled combatant of the given type.
func NewEnemy(name string, t EnemyType, pools HPPools, weapon *inventory.Weapon) *Combatant {
	c := newCombatant(KindEnemy, name, pools, weapon)
	c.EnemyType = t
	return c
}

// IsPlayer reports whether this combatant is player controlled.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// Part returns the body part of type p. The returned pointer aliases the
// combatant's state.
func (c *Combatant) Part(p BodyPartType) *BodyPart {
	return &c.parts[p]
}

// IsDead reports whether the head or thorax is blacked out.
func (c *Combatant) IsDead() bool {
	return c.parts[Head].IsBlackedOut() || c.parts[Thorax].IsBlackedOut()
}

// ApplyDamage applies amount to part. A hit on a part that is already
// blacked out forces Head and Thorax to zero and changes nothing else.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= hp <= maxHp for every part.
func (c *Combatant) ApplyDamage(part BodyPartType, amount int) {
	if c.parts[part].IsBlackedOut() {
		c.parts[Head].HP = 0
		c.parts[Thorax].HP = 0
		return
	}
	bp := &c.parts[part]
	bp.HP -= amount
	if bp.HP < 0 {
		bp.HP = 0
	}
}

// TakeCover puts the combatant behind cover.
//
// Postcondition: InCover is true. Returns false if it already was.
func (c *Combatant) TakeCover() bool {
	if c.InCover {
		return false
	}
	c.InCover = true
	if c.Kind == KindPlayer {
		c.JustTookCover = true
	}
	return true
}

// BreakCover exposes the combatant.
//
// Postcondition: InCover is false. Returns false if it already was.
func (c *Combatant) BreakCover() bool {
	if !c.InCover {
		return false
	}
	c.InCover = false
	return true
}

// consumeJustTookCover returns and clears the take-cover latch.
func (c *Combatant) consumeJustTookCover() bool {
	v := c.JustTookCover
	c.JustTookCover = false
	return v
}

// StartFlank begins a flanking maneuver lasting turns enemy turns.
func (c *Combatant) StartFlank(turns int) {
	c.Flanking = true
	c.FlankCountdown = turns
}

// Tick advances the combatant's flank countdown by one turn.
//
// Postcondition: returns true exactly when a flank completed on this tick,
// in which case Flanking is false and FlankCountdown is zero.
func (c *Combatant) Tick() bool {
	if !c.Flanking {
		return false
	}
	if c.FlankCountdown > 0 {
		c.FlankCountdown--
	}
	if c.FlankCountdown > 0 {
		return false
	}
	c.Flanking = false
	return true
}

// Reload refills the combatant's weapon.
//
// Postcondition: Weapon.Ammo() == Weapon.MaxAmmo() and Weapon.Reloading is
// false. Returns false when there is no weapon or it was already full.
func (c *Combatant) Reload() bool {
	if c.Weapon == nil {
		return false
	}
	return c.Weapon.Reload()
}
