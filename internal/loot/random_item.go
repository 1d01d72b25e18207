package loot

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// RandomItemConfig configures the weighted item pool shared by the
// RandomItem family.
type RandomItemConfig struct {
	// Items maps item id to selection weight.
	Items map[string]int

	// SingleItemID makes one weighted draw fix the item for the whole roll:
	// the full rolled quantity lands on that one item.
	SingleItemID bool

	// DistinctItemIDs removes an item from the pool after its first draw,
	// so a roll never repeats an item.
	DistinctItemIDs bool

	// QuantityCaps limits how many units of an item one roll may emit. The
	// item leaves the pool once its cap is exhausted.
	QuantityCaps map[string]int
}

// randomItemCore holds the resolved pool and modifiers. Quantity policy is
// supplied by the concrete variant (FixedQuantity / RandomLoot).
type randomItemCore struct {
	items           *WeightedChoice[string]
	singleItemID    bool
	distinctItemIDs bool
	quantityCaps    map[string]int
}

func newRandomItemCore(cfg RandomItemConfig) (randomItemCore, error) {
	items := WeightedChoiceFrom(cfg.Items)
	if items.Total() <= 0 {
		return randomItemCore{}, fmt.Errorf("%w: random item pool has no positive weights", domain.ErrInvalidConfiguration)
	}
	caps := make(map[string]int, len(cfg.QuantityCaps))
	for itemID, cap := range cfg.QuantityCaps {
		caps[itemID] = cap
	}
	return randomItemCore{
		items:           items,
		singleItemID:    cfg.SingleItemID,
		distinctItemIDs: cfg.DistinctItemIDs,
		quantityCaps:    caps,
	}, nil
}

// draw emits `quantity` units from the weighted pool.
//
// The incremental one-unit-at-a-time design is load-bearing: it is how
// distinct_item_ids and per-item caps compose with weighted sampling without
// double-counting. A single bulk draw would over-award capped items.
func (c *randomItemCore) draw(rng *rand.Rand, quantity int) domain.Bag {
	bag := make(domain.Bag)
	if quantity <= 0 {
		return bag
	}

	if c.singleItemID {
		itemID, ok := c.items.Choose(rng)
		if !ok {
			return bag
		}
		if cap, capped := c.quantityCaps[itemID]; capped && quantity > cap {
			quantity = cap
		}
		if quantity > 0 {
			bag.Add(itemID, quantity)
		}
		return bag
	}

	pool := c.items.Clone()
	remaining := make(map[string]int, len(c.quantityCaps))
	for itemID, cap := range c.quantityCaps {
		remaining[itemID] = cap
		if cap <= 0 {
			pool.Pop(itemID)
		}
	}

	for drawn := 0; drawn < quantity; drawn++ {
		itemID, ok := pool.Choose(rng)
		if !ok {
			break // pool exhausted
		}
		bag.Add(itemID, 1)
		if c.distinctItemIDs {
			pool.Pop(itemID)
			continue
		}
		if cap, capped := remaining[itemID]; capped {
			cap--
			remaining[itemID] = cap
			if cap <= 0 {
				pool.Pop(itemID)
			}
		}
	}
	return bag
}

// quantityProb is one (quantity, probability) point of a variant's quantity
// distribution, used for the analytic drop chance.
type quantityProb struct {
	quantity int
	prob     float64
}

// dropChance computes the probability the item is ever emitted, given the
// variant's quantity distribution. Exact for the single-item and plain
// multi-draw modes; for distinct/capped pools the draws are not independent,
// so the independent-draw form is used as an approximation except for the
// exhaustive case (quantity covers the whole distinct pool), which is exact.
func (c *randomItemCore) dropChance(itemID string, quantities []quantityProb) float64 {
	selection := c.items.ChancesToChoose(itemID)
	if selection == 0 {
		return 0
	}
	if cap, capped := c.quantityCaps[itemID]; capped && cap <= 0 {
		return 0
	}

	chance := 0.0
	for _, qp := range quantities {
		if qp.quantity <= 0 {
			continue
		}
		if c.singleItemID {
			chance += qp.prob * selection
			continue
		}
		if c.distinctItemIDs && qp.quantity >= c.items.Len() {
			chance += qp.prob
			continue
		}
		chance += qp.prob * (1 - math.Pow(1-selection, float64(qp.quantity)))
	}
	return chance
}

// ============================================================================
// FixedQuantity
// ============================================================================

// FixedQuantity draws a fixed number of units from a weighted item pool.
type FixedQuantity struct {
	core     randomItemCore
	Quantity int
}

// NewFixedQuantity builds a fixed-quantity weighted drop.
func NewFixedQuantity(cfg RandomItemConfig, quantity int) (*FixedQuantity, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative, got %d", domain.ErrInvalidArgument, quantity)
	}
	core, err := newRandomItemCore(cfg)
	if err != nil {
		return nil, err
	}
	return &FixedQuantity{core: core, Quantity: quantity}, nil
}

func (n *FixedQuantity) Roll(rng *rand.Rand, times int) (domain.Bag, error) {
	return roll(n, rng, times)
}

func (n *FixedQuantity) rollOnce(rng *rand.Rand) domain.Bag {
	return n.core.draw(rng, n.Quantity)
}

func (n *FixedQuantity) DropChance(itemID string) float64 {
	return n.core.dropChance(itemID, []quantityProb{{quantity: n.Quantity, prob: 1}})
}

func (n *FixedQuantity) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *FixedQuantity) Tag() Tag                   { return TagFixedQuantity }

// Config returns a copy of the pool configuration, for serialization.
func (n *FixedQuantity) Config() RandomItemConfig { return n.core.config() }

// ============================================================================
// RandomLoot
// ============================================================================

// RandomLoot draws a weighted-random number of units from a weighted item
// pool: both the item pool and the quantity are weighted choices.
type RandomLoot struct {
	core       randomItemCore
	Quantities *WeightedChoice[int]
}

// NewRandomLoot builds a weighted-quantity weighted drop.
func NewRandomLoot(cfg RandomItemConfig, quantities map[int]int) (*RandomLoot, error) {
	core, err := newRandomItemCore(cfg)
	if err != nil {
		return nil, err
	}
	wc := WeightedChoiceFrom(quantities)
	if wc.Total() <= 0 {
		return nil, fmt.Errorf("%w: random loot has no positive quantity weights", domain.ErrInvalidConfiguration)
	}
	return &RandomLoot{core: core, Quantities: wc}, nil
}

func (n *RandomLoot) Roll(rng *rand.Rand, times int) (domain.Bag, error) {
	return roll(n, rng, times)
}

func (n *RandomLoot) rollOnce(rng *rand.Rand) domain.Bag {
	quantity, ok := n.Quantities.Choose(rng)
	if !ok {
		return make(domain.Bag)
	}
	return n.core.draw(rng, quantity)
}

func (n *RandomLoot) DropChance(itemID string) float64 {
	total := float64(n.Quantities.Total())
	quantities := make([]quantityProb, 0, n.Quantities.Len())
	for _, quantity := range n.Quantities.Keys() {
		quantities = append(quantities, quantityProb{
			quantity: quantity,
			prob:     float64(n.Quantities.Weight(quantity)) / total,
		})
	}
	return n.core.dropChance(itemID, quantities)
}

func (n *RandomLoot) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *RandomLoot) Tag() Tag                   { return TagRandomLoot }

// Config returns a copy of the pool configuration, for serialization.
func (n *RandomLoot) Config() RandomItemConfig { return n.core.config() }

func (c *randomItemCore) config() RandomItemConfig {
	caps := make(map[string]int, len(c.quantityCaps))
	for itemID, cap := range c.quantityCaps {
		caps[itemID] = cap
	}
	return RandomItemConfig{
		Items:           c.items.ToMap(),
		SingleItemID:    c.singleItemID,
		DistinctItemIDs: c.distinctItemIDs,
		QuantityCaps:    caps,
	}
}
