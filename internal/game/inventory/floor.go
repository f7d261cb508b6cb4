package inventory

import "sync"

// FloorManager tracks item instances lying on the floor of each room or
// arena. It is safe for concurrent use.
type FloorManager struct {
	mu    sync.RWMutex
	rooms map[string][]ItemInstance
}

// NewFloorManager creates a FloorManager with no items on any floor.
func NewFloorManager() *FloorManager {
	return &FloorManager{rooms: make(map[string][]ItemInstance)}
}

// Drop places inst on the floor of roomID. Instances with a non-positive
// quantity are ignored.
//
// Postcondition: inst is appended to the room's floor items.
func (fm *FloorManager) Drop(roomID string, inst ItemInstance) {
	if inst.Quantity <= 0 {
		return
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.rooms[roomID] = append(fm.rooms[roomID], inst)
}

// Pickup removes and returns the item with instanceID from roomID.
//
// Postcondition: on failure the room is unchanged and ok is false.
func (fm *FloorManager) Pickup(roomID, instanceID string) (ItemInstance, bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	items := fm.rooms[roomID]
	for i, inst := range items {
		if inst.InstanceID != instanceID {
			continue
		}
		rest := make([]ItemInstance, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		fm.rooms[roomID] = append(rest, items[i+1:]...)
		return inst, true
	}
	return ItemInstance{}, false
}

// PickupAll removes and returns every item on the floor of roomID.
//
// Postcondition: the room's floor is empty.
func (fm *FloorManager) PickupAll(roomID string) []ItemInstance {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	items := fm.rooms[roomID]
	delete(fm.rooms, roomID)
	if items == nil {
		return []ItemInstance{}
	}
	return items
}

// ItemsInRoom returns a snapshot copy of the items on the floor of roomID.
func (fm *FloorManager) ItemsInRoom(roomID string) []ItemInstance {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	out := make([]ItemInstance, len(fm.rooms[roomID]))
	copy(out, fm.rooms[roomID])
	return out
}
