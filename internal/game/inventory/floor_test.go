package inventory_test

import (
	"fmt"
	"testing"

	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFloorManager_DropAndSnapshot(t *testing.T) {
	fm := inventory.NewFloorManager()
	fm.Drop("arena", inventory.ItemInstance{InstanceID: "i1", ItemDefID: "medkit", Quantity: 1})
	fm.Drop("arena", inventory.ItemInstance{InstanceID: "i0", ItemDefID: "medkit", Quantity: 0})

	items := fm.ItemsInRoom("arena")
	require.Len(t, items, 1)
	items[0].InstanceID = "mutated"
	assert.Equal(t, "i1", fm.ItemsInRoom("arena")[0].InstanceID)
}

func TestFloorManager_Pickup(t *testing.T) {
	fm := inventory.NewFloorManager()
	fm.Drop("arena", inventory.ItemInstance{InstanceID: "i1", ItemDefID: "medkit", Quantity: 1})
	fm.Drop("arena", inventory.ItemInstance{InstanceID: "i2", ItemDefID: "ammo_9mm", Quantity: 12})

	got, ok := fm.Pickup("arena", "i1")
	require.True(t, ok)
	assert.Equal(t, "medkit", got.ItemDefID)

	_, ok = fm.Pickup("arena", "i1")
	assert.False(t, ok)
	remaining := fm.ItemsInRoom("arena")
	require.Len(t, remaining, 1)
	assert.Equal(t, "i2", remaining[0].InstanceID)
}

func TestFloorManager_PickupAll(t *testing.T) {
	fm := inventory.NewFloorManager()
	assert.Empty(t, fm.PickupAll("arena"))
	fm.Drop("arena", inventory.ItemInstance{InstanceID: "i1", ItemDefID: "medkit", Quantity: 1})
	assert.Len(t, fm.PickupAll("arena"), 1)
	assert.Empty(t, fm.ItemsInRoom("arena"))
}

func TestFloorManager_DropPickup_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fm := inventory.NewFloorManager()
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			fm.Drop("arena", inventory.ItemInstance{InstanceID: fmt.Sprintf("i%d", i), ItemDefID: "junk", Quantity: 1})
		}
		k := rapid.IntRange(0, n).Draw(rt, "k")
		for i := 0; i < k; i++ {
			_, ok := fm.Pickup("arena", fmt.Sprintf("i%d", i))
			assert.True(rt, ok)
		}
		assert.Len(rt, fm.ItemsInRoom("arena"), n-k)
	})
}
