package loot

import (
	"cmp"
	"math/rand"
	"slices"
)

// WeightedChoice is a mutable weighted-sampling primitive over ordered keys.
// It is the single source of weighted randomness in the engine: every loot
// node and the distribution remainder pass route their sampling through it so
// statistical behavior stays uniform and testable.
//
// Keys are kept sorted, which makes sampling deterministic for a seeded
// *rand.Rand regardless of insertion order. Weights are strictly positive;
// setting a key to zero or below removes it.
type WeightedChoice[K cmp.Ordered] struct {
	keys    []K
	weights map[K]int
	total   int
}

// NewWeightedChoice returns an empty choice.
func NewWeightedChoice[K cmp.Ordered]() *WeightedChoice[K] {
	return &WeightedChoice[K]{weights: make(map[K]int)}
}

// WeightedChoiceFrom builds a choice from a weight map, dropping non-positive
// entries.
func WeightedChoiceFrom[K cmp.Ordered](weights map[K]int) *WeightedChoice[K] {
	wc := NewWeightedChoice[K]()
	wc.AddMap(weights)
	return wc
}

// Set assigns the weight for a key. Non-positive weights remove the key.
func (wc *WeightedChoice[K]) Set(key K, weight int) {
	current, exists := wc.weights[key]
	if weight <= 0 {
		if exists {
			wc.total -= current
			delete(wc.weights, key)
			idx, _ := slices.BinarySearch(wc.keys, key)
			wc.keys = slices.Delete(wc.keys, idx, idx+1)
		}
		return
	}
	if exists {
		wc.total += weight - current
		wc.weights[key] = weight
		return
	}
	wc.weights[key] = weight
	wc.total += weight
	idx, _ := slices.BinarySearch(wc.keys, key)
	wc.keys = slices.Insert(wc.keys, idx, key)
}

// Add sums delta into the key's weight. The merge semantics are the same as
// bag merge: weights accumulate per key and drop out at zero or below.
func (wc *WeightedChoice[K]) Add(key K, delta int) {
	wc.Set(key, wc.weights[key]+delta)
}

// AddMap merges a weight map into the choice, summing per key.
func (wc *WeightedChoice[K]) AddMap(weights map[K]int) {
	keys := make([]K, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		wc.Add(key, weights[key])
	}
}

// AddChoice merges another choice into this one, summing per key.
func (wc *WeightedChoice[K]) AddChoice(other *WeightedChoice[K]) {
	for _, key := range other.keys {
		wc.Add(key, other.weights[key])
	}
}

// Pop removes a key and returns its weight, or 0 if absent.
func (wc *WeightedChoice[K]) Pop(key K) int {
	weight := wc.weights[key]
	wc.Set(key, 0)
	return weight
}

// Weight returns the stored weight for a key, or 0 if absent.
func (wc *WeightedChoice[K]) Weight(key K) int {
	return wc.weights[key]
}

// Total returns the sum of all positive weights.
func (wc *WeightedChoice[K]) Total() int {
	return wc.total
}

// Len returns the number of keys with positive weight.
func (wc *WeightedChoice[K]) Len() int {
	return len(wc.keys)
}

// Keys returns the keys in sorted order.
func (wc *WeightedChoice[K]) Keys() []K {
	return slices.Clone(wc.keys)
}

// Clone returns an independent copy.
func (wc *WeightedChoice[K]) Clone() *WeightedChoice[K] {
	out := &WeightedChoice[K]{
		keys:    slices.Clone(wc.keys),
		weights: make(map[K]int, len(wc.weights)),
		total:   wc.total,
	}
	for key, weight := range wc.weights {
		out.weights[key] = weight
	}
	return out
}

// Choose samples a key with probability weight/total. The second return is
// false when no positive-weight entries exist.
//
// Sampling draws a uniform integer in [1, total] and walks the sorted keys
// accumulating weight until the running sum reaches the draw.
func (wc *WeightedChoice[K]) Choose(rng *rand.Rand) (K, bool) {
	var zero K
	if wc.total <= 0 {
		return zero, false
	}
	draw := rng.Intn(wc.total) + 1
	running := 0
	for _, key := range wc.keys {
		running += wc.weights[key]
		if running >= draw {
			return key, true
		}
	}
	// Unreachable while total matches the stored weights.
	return zero, false
}

// ChancesToChoose returns weight/total for the key, or 0 if absent.
func (wc *WeightedChoice[K]) ChancesToChoose(key K) float64 {
	if wc.total <= 0 {
		return 0
	}
	return float64(wc.weights[key]) / float64(wc.total)
}

// ToMap returns the weights as a plain map.
func (wc *WeightedChoice[K]) ToMap() map[K]int {
	out := make(map[K]int, len(wc.weights))
	for key, weight := range wc.weights {
		out[key] = weight
	}
	return out
}
