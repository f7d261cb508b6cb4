// Package npc provides enemy template definitions, spawning, and loot.
package npc

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// WeaponChoice is one weighted entry in a template's weapon distribution.
type WeaponChoice struct {
	Weapon inventory.WeaponType `yaml:"weapon"`
	Weight int                  `yaml:"weight"`
}

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string           `yaml:"id"`
	Type        combat.EnemyType `yaml:"enemy_type"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	HP          combat.HPPools   `yaml:"hp"`
	Weapons     []WeaponChoice   `yaml:"weapons"`
	Loot        *LootTable       `yaml:"loot"`
}

// Validate checks that the template satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Type is a known
// enemy type, every HP pool is positive, at least one weapon has a positive
// weight, and the loot table (if any) is valid. All violations are reported.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !t.Type.Valid() {
		errs = append(errs, fmt.Errorf("enemy_type %q is not one of scav, faction_a, faction_b", t.Type))
	}
	if err := t.HP.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hp: %w", err))
	}
	total := 0
	for i, w := range t.Weapons {
		if !w.Weapon.Valid() {
			errs = append(errs, fmt.Errorf("weapons[%d]: unknown weapon %q", i, w.Weapon))
		}
		if w.Weight < 0 {
			errs = append(errs, fmt.Errorf("weapons[%d]: weight must be >= 0, got %d", i, w.Weight))
		}
		total += w.Weight
	}
	if total <= 0 {
		errs = append(errs, errors.New("weapons: at least one entry must have a positive weight"))
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir within fsys and returns the
// parsed templates in file-name order.
//
// Precondition: dir must be a readable directory within fsys.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(fsys fs.FS, dir string) ([]*Template, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// DefaultTemplates returns the stock scavenger and faction operator
// templates, without loot.
func DefaultTemplates() []*Template {
	return []*Template{
		{
			ID:      "scav",
			Type:    combat.EnemyScav,
			Name:    "Scavenger",
			HP:      combat.ScavPools,
			Weapons: []WeaponChoice{{Weapon: inventory.WeaponPistol, Weight: 1}},
		},
		{
			ID:   "pmc_a",
			Type: combat.EnemyFactionA,
			Name: "PMC (A)",
			HP:   combat.OperatorPools,
			Weapons: []WeaponChoice{
				{Weapon: inventory.WeaponAssaultRifle, Weight: 70},
				{Weapon: inventory.WeaponPistol, Weight: 30},
			},
		},
		{
			ID:   "pmc_b",
			Type: combat.EnemyFactionB,
			Name: "PMC (B)",
			HP:   combat.OperatorPools,
			Weapons: []WeaponChoice{
				{Weapon: inventory.WeaponAssaultRifle, Weight: 70},
				{Weapon: inventory.WeaponPistol, Weight: 30},
			},
		},
	}
}
