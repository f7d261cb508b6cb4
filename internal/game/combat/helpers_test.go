package combat_test

import (
	"io"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// scriptedSrc returns queued Float64 values in order, then fallback.
type scriptedSrc struct {
	floats   []float64
	fallback float64
}

func (s *scriptedSrc) Float64() float64 {
	if len(s.floats) == 0 {
		return s.fallback
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSrc) Intn(_ int) int { return 0 }

func rolls(vals ...float64) *scriptedSrc {
	return &scriptedSrc{floats: vals, fallback: 0.99}
}

// lineSink records narrative lines.
type lineSink struct{ lines []string }

func (l *lineSink) WriteLine(text string) error {
	l.lines = append(l.lines, text)
	return nil
}

func (l *lineSink) contains(sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// scriptIn feeds fixed command lines, then io.EOF.
type scriptIn struct{ lines []string }

func (s *scriptIn) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func pistol() *inventory.Weapon {
	return inventory.NewWeapon(&inventory.WeaponDef{
		Type: inventory.WeaponPistol, Name: "Pistol", Damage: 50, Accuracy: 0.65, MagazineCapacity: 15,
	})
}

func newPlayer() *combat.Combatant {
	return combat.NewPlayer("Alice", combat.OperatorPools, pistol())
}

func newScav() *combat.Combatant {
	return combat.NewEnemy("Scavenger", combat.EnemyScav, combat.ScavPools, pistol())
}

func newResolver(t *testing.T, src combat.Source) (*combat.Resolver, *lineSink, *[]combat.Event) {
	t.Helper()
	out := &lineSink{}
	events := &[]combat.Event{}
	r := combat.NewResolver(src, combat.DefaultRules(), out, zaptest.NewLogger(t))
	r.AddObserver(combat.ObserverFunc(func(ev combat.Event) { *events = append(*events, ev) }))
	return r, out, events
}

func eventTypes(events []combat.Event) []combat.EventType {
	out := make([]combat.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
