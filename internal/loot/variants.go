package loot

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// ============================================================================
// Empty
// ============================================================================

// Empty drops nothing. Used as a placeholder in content tables.
type Empty struct{}

// NewEmpty returns the empty node.
func NewEmpty() *Empty { return &Empty{} }

func (n *Empty) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }
func (n *Empty) rollOnce(*rand.Rand) domain.Bag                     { return make(domain.Bag) }
func (n *Empty) DropChance(string) float64                          { return 0 }
func (n *Empty) CanDrop(string) bool                                { return false }
func (n *Empty) Tag() Tag                                           { return TagEmpty }

// ============================================================================
// Fixed
// ============================================================================

// Fixed drops a deterministic item and quantity on every roll.
type Fixed struct {
	ItemID   string
	Quantity int
}

// NewFixed returns a deterministic drop. Quantity must be positive.
func NewFixed(itemID string, quantity int) (*Fixed, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: fixed quantity must be positive, got %d", domain.ErrInvalidArgument, quantity)
	}
	return &Fixed{ItemID: itemID, Quantity: quantity}, nil
}

func (n *Fixed) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *Fixed) rollOnce(*rand.Rand) domain.Bag {
	return domain.Bag{n.ItemID: n.Quantity}
}

func (n *Fixed) DropChance(itemID string) float64 {
	if itemID == n.ItemID {
		return 1
	}
	return 0
}

func (n *Fixed) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *Fixed) Tag() Tag                   { return TagFixed }

// ============================================================================
// FixedItem
// ============================================================================

// FixedItem drops one fixed item with a weighted quantity distribution.
// A zero quantity key is allowed and yields an empty roll when drawn.
type FixedItem struct {
	ItemID     string
	Quantities *WeightedChoice[int]
}

// NewFixedItem builds a fixed-item node from a quantity weight map.
func NewFixedItem(itemID string, quantities map[int]int) (*FixedItem, error) {
	wc := WeightedChoiceFrom(quantities)
	if wc.Total() <= 0 {
		return nil, fmt.Errorf("%w: fixed item %q has no positive quantity weights", domain.ErrInvalidConfiguration, itemID)
	}
	return &FixedItem{ItemID: itemID, Quantities: wc}, nil
}

func (n *FixedItem) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *FixedItem) rollOnce(rng *rand.Rand) domain.Bag {
	bag := make(domain.Bag)
	quantity, ok := n.Quantities.Choose(rng)
	if !ok || quantity <= 0 {
		return bag
	}
	bag.Add(n.ItemID, quantity)
	return bag
}

func (n *FixedItem) DropChance(itemID string) float64 {
	if itemID != n.ItemID {
		return 0
	}
	positive := 0
	for _, quantity := range n.Quantities.Keys() {
		if quantity > 0 {
			positive += n.Quantities.Weight(quantity)
		}
	}
	return float64(positive) / float64(n.Quantities.Total())
}

func (n *FixedItem) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *FixedItem) Tag() Tag                   { return TagFixedItem }

// ============================================================================
// Possible
// ============================================================================

// Possible gates an inner node behind a percent chance.
type Possible struct {
	Inner   Loot
	Percent float64
}

// NewPossible wraps inner so it only rolls with probability percent/100.
func NewPossible(inner Loot, percent float64) (*Possible, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: possible percent must be in [0,100], got %v", domain.ErrInvalidArgument, percent)
	}
	return &Possible{Inner: inner, Percent: percent}, nil
}

func (n *Possible) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *Possible) rollOnce(rng *rand.Rand) domain.Bag {
	if rng.Float64()*100 < n.Percent {
		return n.Inner.rollOnce(rng)
	}
	return make(domain.Bag)
}

func (n *Possible) DropChance(itemID string) float64 {
	return n.Inner.DropChance(itemID) * n.Percent / 100
}

func (n *Possible) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *Possible) Tag() Tag                   { return TagPossible }

// ============================================================================
// Repeated
// ============================================================================

// Repeated rolls its inner node a fixed number of independent times per roll,
// merging the results. Equivalent to a Composite of n copies of the inner.
type Repeated struct {
	Inner Loot
	Times int
}

// NewRepeated wraps inner to roll `times` independent times.
func NewRepeated(inner Loot, times int) (*Repeated, error) {
	if times < 0 {
		return nil, fmt.Errorf("%w: repeat count must be non-negative, got %d", domain.ErrInvalidArgument, times)
	}
	return &Repeated{Inner: inner, Times: times}, nil
}

func (n *Repeated) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *Repeated) rollOnce(rng *rand.Rand) domain.Bag {
	bag := make(domain.Bag)
	for i := 0; i < n.Times; i++ {
		bag.Merge(n.Inner.rollOnce(rng))
	}
	return bag
}

func (n *Repeated) DropChance(itemID string) float64 {
	return 1 - math.Pow(1-n.Inner.DropChance(itemID), float64(n.Times))
}

func (n *Repeated) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *Repeated) Tag() Tag                   { return TagRepeated }

// ============================================================================
// Composite
// ============================================================================

// Composite rolls every child independently and merges the bags (logical AND).
type Composite struct {
	Children []Loot
}

// NewComposite builds a composite over the given children.
func NewComposite(children ...Loot) *Composite {
	return &Composite{Children: slices.Clone(children)}
}

// Append returns a new composite with the child added. The receiver is left
// untouched so shared trees stay safe.
func (n *Composite) Append(child Loot) *Composite {
	children := make([]Loot, 0, len(n.Children)+1)
	children = append(children, n.Children...)
	children = append(children, child)
	return &Composite{Children: children}
}

func (n *Composite) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *Composite) rollOnce(rng *rand.Rand) domain.Bag {
	bag := make(domain.Bag)
	for _, child := range n.Children {
		bag.Merge(child.rollOnce(rng))
	}
	return bag
}

// DropChance is the independent-OR of the children ever dropping the item:
// 1 - prod(1 - chance_i).
func (n *Composite) DropChance(itemID string) float64 {
	miss := 1.0
	for _, child := range n.Children {
		miss *= 1 - child.DropChance(itemID)
	}
	return 1 - miss
}

func (n *Composite) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *Composite) Tag() Tag                   { return TagComposite }

// ============================================================================
// Choice
// ============================================================================

// Choice rolls exactly one child, selected by per-index weight (logical OR).
type Choice struct {
	Children []Loot
	Weights  *WeightedChoice[int]
}

// NewChoice builds a weighted choice over children. weights must align with
// children and contain at least one positive entry.
func NewChoice(children []Loot, weights []int) (*Choice, error) {
	if len(children) != len(weights) {
		return nil, fmt.Errorf("%w: choice has %d children but %d weights", domain.ErrInvalidConfiguration, len(children), len(weights))
	}
	wc := NewWeightedChoice[int]()
	for i, weight := range weights {
		wc.Set(i, weight)
	}
	if wc.Total() <= 0 {
		return nil, fmt.Errorf("%w: choice has no positive child weights", domain.ErrInvalidConfiguration)
	}
	return &Choice{Children: slices.Clone(children), Weights: wc}, nil
}

// Append returns a new choice with the child added at the given weight.
func (n *Choice) Append(child Loot, weight int) *Choice {
	children := make([]Loot, 0, len(n.Children)+1)
	children = append(children, n.Children...)
	children = append(children, child)
	weights := n.Weights.Clone()
	weights.Set(len(children)-1, weight)
	return &Choice{Children: children, Weights: weights}
}

func (n *Choice) Roll(rng *rand.Rand, times int) (domain.Bag, error) { return roll(n, rng, times) }

func (n *Choice) rollOnce(rng *rand.Rand) domain.Bag {
	idx, ok := n.Weights.Choose(rng)
	if !ok {
		return make(domain.Bag)
	}
	return n.Children[idx].rollOnce(rng)
}

// DropChance is the selection-weighted average of the children's chances.
func (n *Choice) DropChance(itemID string) float64 {
	chance := 0.0
	for idx, child := range n.Children {
		chance += n.Weights.ChancesToChoose(idx) * child.DropChance(itemID)
	}
	return chance
}

func (n *Choice) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *Choice) Tag() Tag                   { return TagChoice }
