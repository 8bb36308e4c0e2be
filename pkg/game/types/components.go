package types

// ComponentDefinition is a static catalog entry for a ship upgrade.
type ComponentDefinition struct {
	Name        string
	Cost        map[ItemKind]int
	StatChanges []StatChange
}

// ComponentCatalog is the set of purchasable ship upgrades, keyed by name.
// Snapshot entries naming a component not in the catalog are skipped on
// restore.
var ComponentCatalog = map[string]*ComponentDefinition{
	"reinforced_hull": {
		Name: "reinforced_hull",
		Cost: map[ItemKind]int{ItemWood: 80, ItemIron: 40},
		StatChanges: []StatChange{
			{Stat: StatHullStrength, Modifier: StatModifierAdditive, Value: 50},
		},
	},
	"silk_sails": {
		Name: "silk_sails",
		Cost: map[ItemKind]int{ItemCloth: 60, ItemCoin: 150},
		StatChanges: []StatChange{
			{Stat: StatSpeed, Modifier: StatModifierMultiplicative, Value: 1.25},
		},
	},
	"cargo_hold": {
		Name: "cargo_hold",
		Cost: map[ItemKind]int{ItemWood: 120, ItemCoin: 100},
		StatChanges: []StatChange{
			{Stat: StatCargoCapacity, Modifier: StatModifierAdditive, Value: 25},
		},
	},
	"long_cannons": {
		Name: "long_cannons",
		Cost: map[ItemKind]int{ItemIron: 90, ItemCoin: 200},
		StatChanges: []StatChange{
			{Stat: StatCannonDamage, Modifier: StatModifierAdditive, Value: 5},
			{Stat: StatCannonDamage, Modifier: StatModifierMultiplicative, Value: 1.1},
		},
	},
	"crows_nest": {
		Name: "crows_nest",
		Cost: map[ItemKind]int{ItemWood: 40, ItemCloth: 30},
		StatChanges: []StatChange{
			{Stat: StatHullStrength, Modifier: StatModifierAdditive, Value: 10},
			{Stat: StatSpeed, Modifier: StatModifierMultiplicative, Value: 1.05},
		},
	},
}

// OwnedComponent is one purchased instance of a definition. A player may own
// several instances of the same definition; each is its own entry.
type OwnedComponent struct {
	Definition *ComponentDefinition
	IsEquipped bool
}

// Loadout tracks the components a player owns and which are equipped.
type Loadout struct {
	owned     []*OwnedComponent
	inventory *Inventory
	capacity  func() int
	onChange  func()
}

// NewLoadout creates an empty loadout. capacity returns the current
// component capacity stat; onChange runs after every ownership or equip
// change so the owner can recompute stats.
func NewLoadout(inventory *Inventory, capacity func() int, onChange func()) *Loadout {
	return &Loadout{
		inventory: inventory,
		capacity:  capacity,
		onChange:  onChange,
	}
}

// Purchase buys a new instance of def. The whole cost must be affordable or
// nothing is deducted. The instance is auto-equipped when there is capacity
// left, otherwise it is owned unequipped.
func (l *Loadout) Purchase(def *ComponentDefinition) bool {
	if !l.canAfford(def.Cost) {
		return false
	}
	for kind, count := range def.Cost {
		l.inventory.UpdateItem(kind, -count, 0)
	}

	l.owned = append(l.owned, &OwnedComponent{
		Definition: def,
		IsEquipped: l.EquippedCount() < l.capacity(),
	})
	l.onChange()
	return true
}

// Equip equips the first owned, unequipped instance of def.
func (l *Loadout) Equip(def *ComponentDefinition) bool {
	if l.EquippedCount() >= l.capacity() {
		return false
	}
	for _, owned := range l.owned {
		if owned.Definition == def && !owned.IsEquipped {
			owned.IsEquipped = true
			l.onChange()
			return true
		}
	}
	return false
}

// Unequip unequips the first owned, equipped instance of def.
func (l *Loadout) Unequip(def *ComponentDefinition) bool {
	for _, owned := range l.owned {
		if owned.Definition == def && owned.IsEquipped {
			owned.IsEquipped = false
			l.onChange()
			return true
		}
	}
	return false
}

// ClearAll removes every owned component. Used by death and by the creative
// clear override.
func (l *Loadout) ClearAll() {
	l.owned = nil
	l.onChange()
}

// EquippedCount returns the number of currently equipped components.
func (l *Loadout) EquippedCount() int {
	count := 0
	for _, owned := range l.owned {
		if owned.IsEquipped {
			count++
		}
	}
	return count
}

// EquippedDefinitions returns the equipped definitions in owned-list order.
// Stat recomputation depends on this order.
func (l *Loadout) EquippedDefinitions() []*ComponentDefinition {
	var equipped []*ComponentDefinition
	for _, owned := range l.owned {
		if owned.IsEquipped {
			equipped = append(equipped, owned.Definition)
		}
	}
	return equipped
}

// Owned returns the owned component list.
func (l *Loadout) Owned() []*OwnedComponent {
	return l.owned
}

// Restore replaces the owned list without cost checks, used by snapshot
// apply. Equip flags beyond the component capacity are dropped in list order.
func (l *Loadout) Restore(owned []*OwnedComponent) {
	l.owned = owned
	equipped := 0
	for _, o := range l.owned {
		if !o.IsEquipped {
			continue
		}
		if equipped >= l.capacity() {
			o.IsEquipped = false
			continue
		}
		equipped++
	}
	l.onChange()
}

func (l *Loadout) canAfford(cost map[ItemKind]int) bool {
	for kind, count := range cost {
		if l.inventory.GetCount(kind) < count {
			return false
		}
	}
	return true
}
