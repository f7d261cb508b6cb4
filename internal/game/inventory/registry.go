package inventory

import "fmt"

// Registry holds weapon and item definitions indexed by key.
type Registry struct {
	weapons map[WeaponType]*WeaponDef
	items   map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[WeaponType]*WeaponDef),
		items:   make(map[string]*ItemDef),
	}
}

// NewDefaultRegistry returns a Registry holding DefaultWeaponDefs.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, w := range DefaultWeaponDefs() {
		_ = r.RegisterWeapon(w)
	}
	return r
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.Type) returns w; returns error if w.Type already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.Type]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon type %q already registered", w.Type)
	}
	r.weapons[w.Type] = w
	return nil
}

// RegisterItem adds d to the registry.
//
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Weapon returns the WeaponDef for t, or nil if not registered.
func (r *Registry) Weapon(t WeaponType) *WeaponDef {
	return r.weapons[t]
}

// Item returns the ItemDef for id and whether it was found.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// NewWeapon returns a fresh, loaded instance of the weapon registered for t.
func (r *Registry) NewWeapon(t WeaponType) (*Weapon, error) {
	def := r.weapons[t]
	if def == nil {
		return nil, fmt.Errorf("inventory: no weapon registered for type %q", t)
	}
	return NewWeapon(def), nil
}

// ItemName returns the display name for id, falling back to id itself.
func (r *Registry) ItemName(id string) string {
	if d, ok := r.items[id]; ok {
		return d.Name
	}
	return id
}
