package inventory

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon  = "weapon"
	KindAmmo    = "ammo"
	KindMedical = "medical"
	KindKey     = "key"
	KindJunk    = "junk"
)

var validKinds = map[string]bool{
	KindWeapon:  true,
	KindAmmo:    true,
	KindMedical: true,
	KindKey:     true,
	KindJunk:    true,
}

// ItemDef defines a lootable item loaded from YAML.
type ItemDef struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Kind        string     `yaml:"kind"`
	WeaponRef   WeaponType `yaml:"weapon_ref"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of weapon, ammo, medical, key, junk; got %q", d.Kind))
	}
	if d.Kind == KindWeapon && !d.WeaponRef.Valid() {
		errs = append(errs, fmt.Errorf("weapon_ref %q is not a known weapon type", d.WeaponRef))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all YAML files in dir within fsys as ItemDefs.
func LoadItems(fsys fs.FS, dir string) ([]*ItemDef, error) {
	return loadDir[ItemDef](fsys, dir, "items")
}

// ItemInstance is one concrete stack of an item lying somewhere in the world.
type ItemInstance struct {
	InstanceID string
	ItemDefID  string
	Quantity   int
}
