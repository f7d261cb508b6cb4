package inventory

import (
	"errors"
	"fmt"
)

// ErrMagazineEmpty is returned when a round is requested from an empty magazine.
var ErrMagazineEmpty = errors.New("inventory: magazine is empty")

// Magazine tracks the loaded round count for one firearm instance.
// Invariant: 0 <= Loaded <= Capacity.
type Magazine struct {
	Loaded   int
	Capacity int
}

// NewMagazine returns a fully loaded Magazine.
//
// Precondition:  capacity > 0 (panics otherwise).
// Postcondition: Loaded == Capacity == capacity.
func NewMagazine(capacity int) *Magazine {
	if capacity <= 0 {
		panic(fmt.Sprintf("inventory: NewMagazine: capacity must be > 0, got %d", capacity))
	}
	return &Magazine{Loaded: capacity, Capacity: capacity}
}

// IsEmpty reports whether no rounds remain.
func (m *Magazine) IsEmpty() bool {
	return m.Loaded <= 0
}

// IsFull reports whether the magazine is at capacity.
func (m *Magazine) IsFull() bool {
	return m.Loaded >= m.Capacity
}

// Consume removes one round.
//
// Postcondition: on success Loaded decreases by 1; returns ErrMagazineEmpty
// and leaves Loaded unchanged when empty.
func (m *Magazine) Consume() error {
	if m.IsEmpty() {
		return ErrMagazineEmpty
	}
	m.Loaded--
	return nil
}

// Refill restores Loaded to Capacity.
func (m *Magazine) Refill() {
	m.Loaded = m.Capacity
}
