package npc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// ItemDrop defines a single item entry in a loot table with a drop chance
// and a dice expression for the quantity, e.g. "1d3" or "2".
type ItemDrop struct {
	ItemID   string  `yaml:"item"`
	Chance   float64 `yaml:"chance"`
	Quantity string  `yaml:"quantity"`
}

// LootTable defines the possible loot drops for an enemy template.
type LootTable struct {
	Items []ItemDrop `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff every item has an id, a chance in (0, 1],
// and a quantity expression whose smallest result is at least 1. An empty
// loot table is valid.
func (lt *LootTable) Validate() error {
	var errs []error
	for i, item := range lt.Items {
		if item.ItemID == "" {
			errs = append(errs, fmt.Errorf("loot table: item[%d] must have a non-empty item id", i))
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			errs = append(errs, fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance))
		}
		expr, err := dice.Parse(quantityExpr(item))
		if err != nil {
			errs = append(errs, fmt.Errorf("loot table: item[%d] quantity: %w", i, err))
			continue
		}
		if minimum := expr.Count + expr.Modifier; minimum < 1 {
			errs = append(errs, fmt.Errorf("loot table: item[%d] quantity %q can roll below 1", i, item.Quantity))
		}
	}
	return errors.Join(errs...)
}

// quantityExpr treats an omitted quantity as a single item.
func quantityExpr(item ItemDrop) string {
	if item.Quantity == "" {
		return "1"
	}
	return item.Quantity
}

// GenerateLoot rolls loot from lt using src.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: each returned instance has a fresh InstanceID and a
// Quantity >= 1, and comes from an entry whose chance roll succeeded.
func GenerateLoot(lt LootTable, src dice.Source) []inventory.ItemInstance {
	var result []inventory.ItemInstance
	for _, item := range lt.Items {
		if src.Float64() >= item.Chance {
			continue
		}
		qty := 1
		if expr, err := dice.Parse(quantityExpr(item)); err == nil {
			if total := dice.RollFrom(expr, src).Total(); total > 0 {
				qty = total
			}
		}
		result = append(result, inventory.ItemInstance{
			InstanceID: uuid.New().String(),
			ItemDefID:  item.ItemID,
			Quantity:   qty,
		})
	}
	return result
}
