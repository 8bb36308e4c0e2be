package types

// StatTable maps each stat to its current value.
type StatTable map[Stat]float64

// BaseStats is the stat table of a bare ship with no components equipped.
var BaseStats = StatTable{
	StatHullStrength:      100,
	StatSpeed:             5,
	StatCannonDamage:      10,
	StatCargoCapacity:     50,
	StatComponentCapacity: 2,
}

func (t StatTable) Copy() StatTable {
	copy := make(StatTable, len(t))
	for stat, value := range t {
		copy[stat] = value
	}
	return copy
}

// GetInt returns a stat value truncated to an int.
func (t StatTable) GetInt(stat Stat) int {
	return int(t[stat])
}

// StatModifier is how a stat change combines with the running value.
type StatModifier uint8

const (
	StatModifierAdditive StatModifier = iota
	StatModifierMultiplicative
)

// StatChange is a single modification a component applies to one stat.
type StatChange struct {
	Stat     Stat
	Modifier StatModifier
	Value    float64
}

// RecomputeStats builds a stat table from the base table and the equipped
// components, applied in owned-list order with each component's changes in
// definition order. Changes mutate the running value in place, so interleaved
// additive and multiplicative changes to the same stat are order-dependent.
// That matches the live game; do not replace it with a commutative formula.
func RecomputeStats(base StatTable, equipped []*ComponentDefinition) StatTable {
	result := base.Copy()
	for _, def := range equipped {
		for _, change := range def.StatChanges {
			switch change.Modifier {
			case StatModifierAdditive:
				result[change.Stat] += change.Value
			case StatModifierMultiplicative:
				result[change.Stat] *= change.Value
			}
		}
	}
	return result
}
