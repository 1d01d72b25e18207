package loot

import (
	"fmt"
	"math/rand"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// UniformQuantity drops a single item id with a quantity drawn uniformly from
// [Min, Max]. Draws of zero or below emit nothing, so a range spanning zero
// acts as a partial chance of dropping at all.
type UniformQuantity struct {
	ItemID string
	Min    int
	Max    int
}

// NewUniformQuantity builds a uniform-range drop. Min must not exceed Max.
func NewUniformQuantity(itemID string, min, max int) (*UniformQuantity, error) {
	if min > max {
		return nil, fmt.Errorf("%w: uniform range inverted, min %d > max %d", domain.ErrInvalidArgument, min, max)
	}
	return &UniformQuantity{ItemID: itemID, Min: min, Max: max}, nil
}

func (n *UniformQuantity) Roll(rng *rand.Rand, times int) (domain.Bag, error) {
	return roll(n, rng, times)
}

func (n *UniformQuantity) rollOnce(rng *rand.Rand) domain.Bag {
	bag := make(domain.Bag)
	quantity := n.Min + rng.Intn(n.Max-n.Min+1)
	if quantity > 0 {
		bag.Add(n.ItemID, quantity)
	}
	return bag
}

func (n *UniformQuantity) DropChance(itemID string) float64 {
	if itemID != n.ItemID || n.Max < 1 {
		return 0
	}
	low := n.Min
	if low < 1 {
		low = 1
	}
	span := n.Max - n.Min + 1
	return float64(n.Max-low+1) / float64(span)
}

func (n *UniformQuantity) CanDrop(itemID string) bool { return n.DropChance(itemID) > 0 }
func (n *UniformQuantity) Tag() Tag                   { return TagUniformQuantity }

// ============================================================================
// Pseudo-item specializations
// ============================================================================

// NewGoldLoot drops gold in [min, max].
func NewGoldLoot(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoGold, min, max)
}

// NewEnergyLoot drops energy in [min, max].
func NewEnergyLoot(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoEnergy, min, max)
}

// NewExperienceLoot drops flat experience in [min, max].
func NewExperienceLoot(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoExpFlat, min, max)
}

// NewArenaCoinsLoot drops arena coins in [min, max].
func NewArenaCoinsLoot(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoArenaCoins, min, max)
}

// NewStarsLoot drops stars in [min, max].
func NewStarsLoot(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoStars, min, max)
}

// NewGoldPenalty drops a gold deduction of magnitude [min, max]. The range
// keeps the ordinary min<=max orientation; the inversion of meaning lives in
// the penalty pseudo-item, whose quantity the applying layer subtracts.
func NewGoldPenalty(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoGoldPenalty, min, max)
}

// NewEnergyPenalty drops an energy deduction of magnitude [min, max].
func NewEnergyPenalty(min, max int) (*UniformQuantity, error) {
	return NewUniformQuantity(domain.PseudoEnergyPenalty, min, max)
}
