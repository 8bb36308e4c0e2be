package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeStats_NoComponents(t *testing.T) {
	stats := RecomputeStats(BaseStats, nil)

	assert.Equal(t, 100, stats.GetInt(StatHullStrength))
	assert.Equal(t, 5, stats.GetInt(StatSpeed))
	assert.Equal(t, 10, stats.GetInt(StatCannonDamage))
	assert.Equal(t, 50, stats.GetInt(StatCargoCapacity))
	assert.Equal(t, 2, stats.GetInt(StatComponentCapacity))
}

func TestRecomputeStats_DoesNotMutateBase(t *testing.T) {
	RecomputeStats(BaseStats, []*ComponentDefinition{ComponentCatalog["reinforced_hull"]})

	assert.Equal(t, float64(100), BaseStats[StatHullStrength])
}

func TestRecomputeStats_Deterministic(t *testing.T) {
	equipped := []*ComponentDefinition{
		ComponentCatalog["reinforced_hull"],
		ComponentCatalog["silk_sails"],
		ComponentCatalog["long_cannons"],
	}

	first := RecomputeStats(BaseStats, equipped)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, RecomputeStats(BaseStats, equipped))
	}
}

func TestRecomputeStats_OrderDependent(t *testing.T) {
	plusTen := &ComponentDefinition{
		Name: "plus_ten",
		StatChanges: []StatChange{
			{Stat: StatCannonDamage, Modifier: StatModifierAdditive, Value: 10},
		},
	}
	double := &ComponentDefinition{
		Name: "double",
		StatChanges: []StatChange{
			{Stat: StatCannonDamage, Modifier: StatModifierMultiplicative, Value: 2},
		},
	}

	addThenDouble := RecomputeStats(BaseStats, []*ComponentDefinition{plusTen, double})
	doubleThenAdd := RecomputeStats(BaseStats, []*ComponentDefinition{double, plusTen})

	// (10 + 10) * 2 = 40 but 10 * 2 + 10 = 30
	assert.Equal(t, 40, addThenDouble.GetInt(StatCannonDamage))
	assert.Equal(t, 30, doubleThenAdd.GetInt(StatCannonDamage))
}

func TestRecomputeStats_ChangesWithinComponentApplyInOrder(t *testing.T) {
	stats := RecomputeStats(BaseStats, []*ComponentDefinition{ComponentCatalog["long_cannons"]})

	// (10 + 5) * 1.1 = 16.5, truncated
	assert.Equal(t, 16, stats.GetInt(StatCannonDamage))
}
