package types

import "fmt"

// ItemKind identifies a stackable item. The set is closed: snapshots and
// catalog entries referencing an unknown kind fail at load time instead of
// defaulting silently.
type ItemKind uint8

const (
	ItemCoin ItemKind = iota
	ItemTrophy
	ItemWood
	ItemIron
	ItemCloth
	ItemCannonBall
)

func (k ItemKind) String() string {
	switch k {
	case ItemCoin:
		return "coin"
	case ItemTrophy:
		return "trophy"
	case ItemWood:
		return "wood"
	case ItemIron:
		return "iron"
	case ItemCloth:
		return "cloth"
	case ItemCannonBall:
		return "cannonball"
	default:
		return "unknown"
	}
}

// ParseItemKind parses an item kind name as used in snapshots and catalogs.
func ParseItemKind(name string) (ItemKind, error) {
	switch name {
	case "coin":
		return ItemCoin, nil
	case "trophy":
		return ItemTrophy, nil
	case "wood":
		return ItemWood, nil
	case "iron":
		return ItemIron, nil
	case "cloth":
		return ItemCloth, nil
	case "cannonball":
		return ItemCannonBall, nil
	default:
		return 0, fmt.Errorf("unknown item kind: %s", name)
	}
}

// Stat identifies a derived ship attribute.
type Stat uint8

const (
	StatHullStrength Stat = iota
	StatSpeed
	StatCannonDamage
	StatCargoCapacity
	StatComponentCapacity
)

func (s Stat) String() string {
	switch s {
	case StatHullStrength:
		return "hull_strength"
	case StatSpeed:
		return "speed"
	case StatCannonDamage:
		return "cannon_damage"
	case StatCargoCapacity:
		return "cargo_capacity"
	case StatComponentCapacity:
		return "component_capacity"
	default:
		return "unknown"
	}
}
