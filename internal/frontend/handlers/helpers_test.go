package handlers_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/firefight/internal/config"
	"github.com/cory-johannsen/firefight/internal/frontend/handlers"
	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/cory-johannsen/firefight/internal/game/npc"
)

// zeroSrc makes every roll succeed: Float64 and Intn always return 0.
type zeroSrc struct{}

func (zeroSrc) Intn(int) int      { return 0 }
func (zeroSrc) Float64() float64 { return 0 }

func testContent(t *testing.T) *handlers.Content {
	t.Helper()
	reg := inventory.NewDefaultRegistry()
	require.NoError(t, reg.RegisterItem(&inventory.ItemDef{ID: "bandage", Name: "Field bandage", Kind: inventory.KindMedical}))
	require.NoError(t, reg.RegisterItem(&inventory.ItemDef{ID: "ammo_9mm", Name: "9mm rounds", Kind: inventory.KindAmmo}))

	scav := npc.DefaultTemplates()[0]
	require.Equal(t, combat.EnemyScav, scav.Type)
	scav.Loot = &npc.LootTable{Items: []npc.ItemDrop{
		{ItemID: "bandage", Chance: 1.0},
		{ItemID: "ammo_9mm", Chance: 1.0, Quantity: "2d6"},
	}}
	return &handlers.Content{Registry: reg, Roster: npc.NewRoster([]*npc.Template{scav})}
}

func testSkirmishConfig() config.SkirmishConfig {
	return config.SkirmishConfig{
		MinEnemies:   1,
		MaxEnemies:   3,
		PlayerWeapon: string(inventory.WeaponPistol),
		PlayerHP:     config.HPConfig{Head: 50, Thorax: 200, Arm: 150, Leg: 150},
	}
}

type fixture struct {
	sk    *handlers.Skirmish
	floor *inventory.FloorManager
	out   *bytes.Buffer
	io    *handlers.LineIO
	seen  []combat.Event
}

func newFixture(t *testing.T, cfg config.SkirmishConfig, input ...string) *fixture {
	t.Helper()
	f := &fixture{floor: inventory.NewFloorManager(), out: &bytes.Buffer{}}
	obs := combat.ObserverFunc(func(ev combat.Event) { f.seen = append(f.seen, ev) })
	f.sk = handlers.NewSkirmish(testContent(t), combat.DefaultRules(), cfg, zeroSrc{}, f.floor, zaptest.NewLogger(t), obs)
	f.io = handlers.NewLineIO(strings.NewReader(strings.Join(input, "\n")+"\n"), f.out, false)
	return f
}
