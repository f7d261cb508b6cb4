// Package inventory provides firearm definitions and instances, loot item
// definitions, and the floor where dropped items accumulate.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
)

// WeaponType identifies a firearm family. Each type has exactly one WeaponDef.
type WeaponType string

const (
	// WeaponRifle is the bolt-action scoped rifle.
	WeaponRifle WeaponType = "rifle"
	// WeaponAssaultRifle is the automatic assault rifle.
	WeaponAssaultRifle WeaponType = "assault_rifle"
	// WeaponShotgun is the pump shotgun.
	WeaponShotgun WeaponType = "shotgun"
	// WeaponPistol is the sidearm every combatant can fall back on.
	WeaponPistol WeaponType = "pistol"
)

// WeaponTypes lists every known weapon type in catalogue order.
func WeaponTypes() []WeaponType {
	return []WeaponType{WeaponRifle, WeaponAssaultRifle, WeaponShotgun, WeaponPistol}
}

// Valid reports whether t is one of the known weapon types.
func (t WeaponType) Valid() bool {
	switch t {
	case WeaponRifle, WeaponAssaultRifle, WeaponShotgun, WeaponPistol:
		return true
	}
	return false
}

// WeaponDef defines the static properties of a weapon type loaded from YAML.
type WeaponDef struct {
	Type             WeaponType `yaml:"type"`
	Name             string     `yaml:"name"`
	Description      string     `yaml:"description"`
	Damage           int        `yaml:"damage"`
	Accuracy         float64    `yaml:"accuracy"`
	MagazineCapacity int        `yaml:"magazine_capacity"`
	Scoped           bool       `yaml:"scoped"`
}

// Validate checks that the WeaponDef satisfies its invariants.
//
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid; otherwise every
// violation is reported in one error.
func (w *WeaponDef) Validate() error {
	var errs []error
	if !w.Type.Valid() {
		errs = append(errs, fmt.Errorf("type %q is not a known weapon type", w.Type))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if w.Damage <= 0 {
		errs = append(errs, errors.New("damage must be > 0"))
	}
	if w.Accuracy <= 0 || w.Accuracy > 1 {
		errs = append(errs, fmt.Errorf("accuracy must be in (0, 1], got %v", w.Accuracy))
	}
	if w.MagazineCapacity <= 0 {
		errs = append(errs, errors.New("magazine_capacity must be > 0"))
	}
	if w.Scoped && w.Type != WeaponRifle {
		errs = append(errs, errors.New("only the rifle may be scoped"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// LoadWeapons reads all YAML files in dir within fsys as WeaponDefs.
//
// Precondition: dir is a readable directory in fsys.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(fsys fs.FS, dir string) ([]*WeaponDef, error) {
	return loadDir[WeaponDef](fsys, dir, "weapons")
}

// DefaultWeaponDefs returns the stock catalogue used when no content is
// configured.
func DefaultWeaponDefs() []*WeaponDef {
	return []*WeaponDef{
		{Type: WeaponRifle, Name: "Rifle", Description: "A bolt-action rifle with a mounted scope.", Damage: 80, Accuracy: 0.60, MagazineCapacity: 5, Scoped: true},
		{Type: WeaponAssaultRifle, Name: "Assault Rifle", Description: "A select-fire carbine.", Damage: 25, Accuracy: 0.75, MagazineCapacity: 30},
		{Type: WeaponShotgun, Name: "Shotgun", Description: "A worn but functional pump shotgun.", Damage: 60, Accuracy: 0.50, MagazineCapacity: 8},
		{Type: WeaponPistol, Name: "Pistol", Description: "A battered 9mm sidearm.", Damage: 50, Accuracy: 0.65, MagazineCapacity: 15},
	}
}
