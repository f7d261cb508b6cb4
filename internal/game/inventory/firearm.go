package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrReloading is returned by Fire while the weapon waits for a reload.
	ErrReloading = errors.New("inventory: weapon needs reloading")
	// ErrNotScopeable is returned by ToggleScope for weapons without a scope.
	ErrNotScopeable = errors.New("inventory: weapon has no scope")
)

// Weapon is one firearm instance: a definition plus mutable magazine, reload,
// and scope state.
//
// Invariant: Reloading is true exactly when the magazine was emptied by Fire
// and no Reload has happened since. Scoped implies Def.Scoped.
type Weapon struct {
	Def       *WeaponDef
	Mag       *Magazine
	Reloading bool
	Scoped    bool
}

// NewWeapon returns a fully loaded, unscoped instance of def.
//
// Precondition: def is non-nil and valid.
func NewWeapon(def *WeaponDef) *Weapon {
	if def == nil {
		panic("inventory: NewWeapon: def must not be nil")
	}
	return &Weapon{Def: def, Mag: NewMagazine(def.MagazineCapacity)}
}

// Name returns the display name of the weapon.
func (w *Weapon) Name() string { return w.Def.Name }

// Type returns the weapon's type.
func (w *Weapon) Type() WeaponType { return w.Def.Type }

// Damage returns the damage dealt by one hit.
func (w *Weapon) Damage() int { return w.Def.Damage }

// Ammo returns the number of loaded rounds.
func (w *Weapon) Ammo() int { return w.Mag.Loaded }

// MaxAmmo returns the magazine capacity.
func (w *Weapon) MaxAmmo() int { return w.Mag.Capacity }

// NeedsReload reports whether the weapon cannot fire until reloaded.
func (w *Weapon) NeedsReload() bool {
	return w.Reloading || w.Mag.IsEmpty()
}

// Fire consumes one round.
//
// Precondition: none; failures are returned.
// Postcondition: on success Ammo() decreases by one, Reloading becomes true
// iff the magazine is now empty, and a scoped rifle is unscoped.
func (w *Weapon) Fire() error {
	if w.Reloading {
		return ErrReloading
	}
	if err := w.Mag.Consume(); err != nil {
		return err
	}
	w.Reloading = w.Mag.IsEmpty()
	if w.Def.Scoped {
		w.Scoped = false
	}
	return nil
}

// Reload refills the magazine and clears Reloading.
//
// Postcondition: Ammo() == MaxAmmo() and Reloading == false. Returns false
// when the magazine was already full and nothing changed.
func (w *Weapon) Reload() bool {
	if w.Mag.IsFull() && !w.Reloading {
		return false
	}
	w.Mag.Refill()
	w.Reloading = false
	return true
}

// ToggleScope flips the scoped state of a scoped rifle.
//
// Postcondition: returns the new scoped state, or ErrNotScopeable with no
// state change for weapons without a scope.
func (w *Weapon) ToggleScope() (bool, error) {
	if !w.Def.Scoped {
		return false, fmt.Errorf("%s: %w", w.Def.Name, ErrNotScopeable)
	}
	w.Scoped = !w.Scoped
	return w.Scoped, nil
}
