// Package loot implements the composable loot algebra: a closed set of
// loot-generating nodes sharing a roll / drop-chance / serialize contract,
// plus the contribution-splitting distributor that partitions rolled bags
// across players.
package loot

import (
	"fmt"
	"math/rand"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// Tag identifies a concrete loot variant in the serialized form.
type Tag string

const (
	TagEmpty           Tag = "empty"
	TagFixed           Tag = "fixed"
	TagFixedItem       Tag = "fixed_item"
	TagFixedQuantity   Tag = "fixed_quantity"
	TagRandomLoot      Tag = "random_loot"
	TagPossible        Tag = "possible"
	TagRepeated        Tag = "repeated"
	TagComposite       Tag = "composite"
	TagChoice          Tag = "choice"
	TagUniformQuantity Tag = "uniform_quantity"
)

// Loot is a node in the loot algebra. Nodes are immutable once constructed;
// Composite and Choice grow via Append which returns a new node, so trees can
// be shared across many beast and chest definitions safely.
//
// The unexported rollOnce keeps the variant set closed: adding a variant
// means adding a tag and a match arm in the serializer, nothing else can
// satisfy the interface from outside the package.
type Loot interface {
	// Roll accumulates `times` independent single rolls into one bag.
	// times must be >= 0.
	Roll(rng *rand.Rand, times int) (domain.Bag, error)

	// DropChance returns the probability in [0,1] that a single roll ever
	// emits the item. Analytic, consistent with rollOnce's distribution.
	DropChance(itemID string) float64

	// CanDrop reports whether the node can ever emit the item.
	CanDrop(itemID string) bool

	// Tag returns the serialization tag of the concrete variant.
	Tag() Tag

	rollOnce(rng *rand.Rand) domain.Bag
}

// roll is the shared Roll implementation: validate times, then merge
// independent single rolls.
func roll(node Loot, rng *rand.Rand, times int) (domain.Bag, error) {
	if times < 0 {
		return nil, fmt.Errorf("%w: roll times must be non-negative, got %d", domain.ErrInvalidArgument, times)
	}
	bag := make(domain.Bag)
	for i := 0; i < times; i++ {
		bag.Merge(node.rollOnce(rng))
	}
	return bag, nil
}
