package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLoadout(capacity int) (*Loadout, *Inventory) {
	inv := newTestInventory(1000)
	loadout := NewLoadout(inv, func() int { return capacity }, func() {})
	return loadout, inv
}

func TestLoadout_Purchase(t *testing.T) {
	loadout, inv := newTestLoadout(2)
	inv.SetCount(ItemWood, 100)
	inv.SetCount(ItemIron, 100)

	hull := ComponentCatalog["reinforced_hull"]
	assert.True(t, loadout.Purchase(hull))
	assert.Equal(t, 20, inv.GetCount(ItemWood))
	assert.Equal(t, 60, inv.GetCount(ItemIron))
	assert.Equal(t, 1, loadout.EquippedCount())

	// second one is unaffordable, nothing deducted
	assert.False(t, loadout.Purchase(hull))
	assert.Equal(t, 20, inv.GetCount(ItemWood))
	assert.Equal(t, 60, inv.GetCount(ItemIron))
	assert.Len(t, loadout.Owned(), 1)
}

func TestLoadout_PurchaseBeyondCapacityOwnsUnequipped(t *testing.T) {
	loadout, inv := newTestLoadout(1)
	inv.SetCount(ItemWood, 1000)
	inv.SetCount(ItemIron, 1000)

	hull := ComponentCatalog["reinforced_hull"]
	assert.True(t, loadout.Purchase(hull))
	assert.True(t, loadout.Purchase(hull))

	assert.Len(t, loadout.Owned(), 2)
	assert.Equal(t, 1, loadout.EquippedCount())
	assert.False(t, loadout.Owned()[1].IsEquipped)
}

func TestLoadout_EquipUnequip(t *testing.T) {
	loadout, inv := newTestLoadout(1)
	inv.SetCount(ItemWood, 1000)
	inv.SetCount(ItemIron, 1000)

	hull := ComponentCatalog["reinforced_hull"]
	loadout.Purchase(hull)
	loadout.Purchase(hull)

	// capacity full
	assert.False(t, loadout.Equip(hull))

	assert.True(t, loadout.Unequip(hull))
	assert.Equal(t, 0, loadout.EquippedCount())

	assert.True(t, loadout.Equip(hull))
	assert.Equal(t, 1, loadout.EquippedCount())

	// nothing owned of this definition
	assert.False(t, loadout.Equip(ComponentCatalog["silk_sails"]))
	assert.False(t, loadout.Unequip(ComponentCatalog["silk_sails"]))
}

func TestLoadout_ClearAll(t *testing.T) {
	loadout, inv := newTestLoadout(2)
	inv.SetCount(ItemWood, 1000)
	inv.SetCount(ItemIron, 1000)

	loadout.Purchase(ComponentCatalog["reinforced_hull"])
	loadout.ClearAll()

	assert.Empty(t, loadout.Owned())
	assert.Equal(t, 0, loadout.EquippedCount())
}

func TestLoadout_RestoreDropsExcessEquipFlags(t *testing.T) {
	loadout, _ := newTestLoadout(2)
	hull := ComponentCatalog["reinforced_hull"]

	loadout.Restore([]*OwnedComponent{
		{Definition: hull, IsEquipped: true},
		{Definition: hull, IsEquipped: true},
		{Definition: hull, IsEquipped: true},
	})

	assert.Equal(t, 2, loadout.EquippedCount())
	assert.True(t, loadout.Owned()[0].IsEquipped)
	assert.True(t, loadout.Owned()[1].IsEquipped)
	assert.False(t, loadout.Owned()[2].IsEquipped)
}
