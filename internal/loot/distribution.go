package loot

import (
	"math/rand"
	"sort"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// RemainderPolicy is the rule for assigning leftover indivisible units after
// proportional floor allocation.
type RemainderPolicy string

const (
	// RemainderRandom resamples the full contributor pool for every leftover
	// unit; one contributor may receive several.
	RemainderRandom RemainderPolicy = "random"

	// RemainderSpread removes a contributor from the pool once they receive
	// a leftover unit, refilling the pool when exhausted, so nobody gets a
	// second unit before everyone had a chance at one.
	RemainderSpread RemainderPolicy = "spread"

	// RemainderEveryone rounds every contributor's share up instead of
	// down, so no remainder exists to distribute.
	RemainderEveryone RemainderPolicy = "everyone"
)

// Distributor partitions a rolled bag among contributors. Pseudo-items and
// real items are configured independently: each group chooses proportional or
// uniform shares and a remainder policy.
//
// Uniform is not a separate code path: it overwrites every contribution
// weight to 1 and runs the proportional machinery.
type Distributor struct {
	ProportionalItems  bool
	ProportionalPseudo bool
	ItemRemainder      RemainderPolicy
	PseudoRemainder    RemainderPolicy
}

// NewDistributor returns the default configuration: proportional splits for
// both groups, spread remainder for items, random for pseudo-items.
func NewDistributor() Distributor {
	return Distributor{
		ProportionalItems:  true,
		ProportionalPseudo: true,
		ItemRemainder:      RemainderSpread,
		PseudoRemainder:    RemainderRandom,
	}
}

// Distribute partitions bag (plus any extras, merged first) across the
// contributors, weighting by contribution score. The result is empty iff
// there are no contributors or nothing to distribute.
//
// Per item, the total allocated quantity is never below the input quantity:
// floor shares plus remainder units cover it exactly, and ceiling modes
// (experience, RemainderEveryone) may exceed it.
func (d Distributor) Distribute(rng *rand.Rand, bag domain.Bag, contributions map[int64]int, extras ...domain.Bag) map[int64]domain.Bag {
	merged := bag.Clone()
	for _, extra := range extras {
		merged.Merge(extra)
	}

	out := make(map[int64]domain.Bag)
	if len(contributions) == 0 || merged.IsEmpty() {
		return out
	}
	for contributor := range contributions {
		out[contributor] = make(domain.Bag)
	}

	pseudo, items := merged.Split()
	d.distributeGroup(rng, out, pseudo, contributions, d.ProportionalPseudo, d.PseudoRemainder)
	d.distributeGroup(rng, out, items, contributions, d.ProportionalItems, d.ItemRemainder)
	return out
}

func (d Distributor) distributeGroup(rng *rand.Rand, out map[int64]domain.Bag, group domain.Bag, contributions map[int64]int, proportional bool, policy RemainderPolicy) {
	if group.IsEmpty() {
		return
	}

	weights := shareWeights(contributions, proportional)
	total := 0
	for _, weight := range weights {
		total += weight
	}

	contributors := make([]int64, 0, len(weights))
	for contributor := range weights {
		contributors = append(contributors, contributor)
	}
	sort.Slice(contributors, func(i, j int) bool { return contributors[i] < contributors[j] })

	for _, itemID := range group.SortedIDs() {
		quantity := group[itemID]

		// Experience always rounds up so a nonzero contribution never
		// nets zero experience. RemainderEveryone rounds everything up.
		useCeil := domain.IsExperience(itemID) || policy == RemainderEveryone

		allocated := 0
		for _, contributor := range contributors {
			weight := weights[contributor]
			var share int
			if useCeil {
				share = (quantity*weight + total - 1) / total
			} else {
				share = quantity * weight / total
			}
			if share > 0 {
				out[contributor].Add(itemID, share)
				allocated += share
			}
		}

		if useCeil {
			continue
		}

		remainder := quantity - allocated
		if remainder <= 0 {
			continue
		}
		d.spendRemainder(rng, out, itemID, remainder, weights, policy)
	}
}

// spendRemainder hands out leftover units one at a time via a WeightedChoice
// resample over the contribution weights.
func (d Distributor) spendRemainder(rng *rand.Rand, out map[int64]domain.Bag, itemID string, remainder int, weights map[int64]int, policy RemainderPolicy) {
	pool := WeightedChoiceFrom(weights)
	for unit := 0; unit < remainder; unit++ {
		if pool.Len() == 0 {
			// SPREAD refill: everyone had a chance, start a new pass.
			pool = WeightedChoiceFrom(weights)
		}
		contributor, ok := pool.Choose(rng)
		if !ok {
			return
		}
		out[contributor].Add(itemID, 1)
		if policy == RemainderSpread {
			pool.Pop(contributor)
		}
	}
}

// shareWeights resolves the weights used for splitting: the raw contribution
// scores when proportional, or 1 per contributor when uniform. All-zero
// contributions degrade to uniform so the bag is still handed out.
func shareWeights(contributions map[int64]int, proportional bool) map[int64]int {
	weights := make(map[int64]int, len(contributions))
	positive := false
	for contributor, score := range contributions {
		if proportional && score > 0 {
			weights[contributor] = score
			positive = true
		} else {
			weights[contributor] = 0
		}
	}
	if !proportional || !positive {
		for contributor := range contributions {
			weights[contributor] = 1
		}
	}
	return weights
}
