package loot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedChoice_SetAndTotal(t *testing.T) {
	wc := NewWeightedChoice[string]()
	wc.Set("a", 3)
	wc.Set("b", 7)

	assert.Equal(t, 10, wc.Total())
	assert.Equal(t, 2, wc.Len())
	assert.Equal(t, 3, wc.Weight("a"))
}

func TestWeightedChoice_NonPositiveWeightRemoves(t *testing.T) {
	wc := NewWeightedChoice[string]()
	wc.Set("a", 5)
	wc.Set("a", 0)

	assert.Equal(t, 0, wc.Len())
	assert.Equal(t, 0, wc.Total())

	wc.Set("b", 4)
	wc.Set("b", -1)
	assert.Equal(t, 0, wc.Len())
}

func TestWeightedChoice_AddMergesLikeABag(t *testing.T) {
	wc := WeightedChoiceFrom(map[string]int{"a": 1, "b": 2})
	other := WeightedChoiceFrom(map[string]int{"b": 3, "c": 4})

	wc.AddChoice(other)

	assert.Equal(t, 1, wc.Weight("a"))
	assert.Equal(t, 5, wc.Weight("b"))
	assert.Equal(t, 4, wc.Weight("c"))
	assert.Equal(t, 10, wc.Total())
}

func TestWeightedChoice_Pop(t *testing.T) {
	wc := WeightedChoiceFrom(map[string]int{"a": 2, "b": 8})

	assert.Equal(t, 8, wc.Pop("b"))
	assert.Equal(t, 0, wc.Pop("b"))
	assert.Equal(t, 2, wc.Total())
}

func TestWeightedChoice_ChooseEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	wc := NewWeightedChoice[string]()

	_, ok := wc.Choose(rng)
	assert.False(t, ok)
}

func TestWeightedChoice_ChooseRespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	wc := WeightedChoiceFrom(map[string]int{"common": 90, "rare": 10})

	const trials = 20000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		key, ok := wc.Choose(rng)
		require.True(t, ok)
		counts[key]++
	}

	rareRate := float64(counts["rare"]) / trials
	assert.InDelta(t, 0.10, rareRate, 0.02)
}

func TestWeightedChoice_ChancesToChoose(t *testing.T) {
	wc := WeightedChoiceFrom(map[string]int{"a": 1, "b": 3})

	assert.InDelta(t, 0.25, wc.ChancesToChoose("a"), 1e-9)
	assert.InDelta(t, 0.75, wc.ChancesToChoose("b"), 1e-9)
	assert.Zero(t, wc.ChancesToChoose("missing"))
}

func TestWeightedChoice_CloneIsIndependent(t *testing.T) {
	wc := WeightedChoiceFrom(map[string]int{"a": 1})
	clone := wc.Clone()
	clone.Set("a", 10)

	assert.Equal(t, 1, wc.Weight("a"))
	assert.Equal(t, 10, clone.Weight("a"))
}
