package npc

import (
	"fmt"

	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// Spawn creates a fresh enemy combatant from tmpl, arming it with a weapon
// drawn from the template's weighted distribution.
//
// Precondition: tmpl must have passed Validate(); reg and src must be non-nil.
// Postcondition: returns a KindEnemy combatant at full HP with a loaded
// weapon, or an error if the chosen weapon is not registered.
func Spawn(tmpl *Template, reg *inventory.Registry, src dice.Source) (*combat.Combatant, error) {
	wt := pickWeapon(tmpl.Weapons, src)
	weapon, err := reg.NewWeapon(wt)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", tmpl.ID, err)
	}
	return combat.NewEnemy(tmpl.Name, tmpl.Type, tmpl.HP, weapon), nil
}

// pickWeapon selects an entry with probability proportional to its weight.
func pickWeapon(choices []WeaponChoice, src dice.Source) inventory.WeaponType {
	total := 0
	for _, c := range choices {
		total += c.Weight
	}
	n := src.Intn(total)
	for _, c := range choices {
		if n < c.Weight {
			return c.Weapon
		}
		n -= c.Weight
	}
	return choices[len(choices)-1].Weapon
}

// Roster indexes templates by enemy type for random encounters.
type Roster struct {
	byType map[combat.EnemyType]*Template
	order  []combat.EnemyType
}

// NewRoster builds a Roster from templates. A later template for the same
// enemy type replaces an earlier one.
//
// Precondition: templates is non-empty and every template validates.
func NewRoster(templates []*Template) *Roster {
	r := &Roster{byType: make(map[combat.EnemyType]*Template)}
	for _, t := range templates {
		if _, ok := r.byType[t.Type]; !ok {
			r.order = append(r.order, t.Type)
		}
		r.byType[t.Type] = t
	}
	return r
}

// Template returns the template for t, or nil.
func (r *Roster) Template(t combat.EnemyType) *Template { return r.byType[t] }

// Len returns the number of distinct enemy types.
func (r *Roster) Len() int { return len(r.order) }

// SpawnGroup spawns between lo and hi enemies (inclusive), each of a
// uniformly random type.
//
// Precondition: 1 <= lo <= hi; r is non-empty.
func (r *Roster) SpawnGroup(lo, hi int, reg *inventory.Registry, src dice.Source) ([]*combat.Combatant, error) {
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("npc: invalid group size range [%d, %d]", lo, hi)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("npc: roster is empty")
	}
	n := lo + src.Intn(hi-lo+1)
	group := make([]*combat.Combatant, 0, n)
	for i := 0; i < n; i++ {
		tmpl := r.byType[r.order[src.Intn(len(r.order))]]
		c, err := Spawn(tmpl, reg, src)
		if err != nil {
			return nil, err
		}
		group = append(group, c)
	}
	return group, nil
}
