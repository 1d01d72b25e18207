package loot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

func TestMarshalRoundTripPreservesDropChances(t *testing.T) {
	sampleItems := []string{
		"sword", "shield", "a", "b", "gem", "x",
		domain.PseudoGold, domain.PseudoExpFlat,
	}

	for _, node := range allVariants(t) {
		data, err := Marshal(node)
		require.NoError(t, err, "variant %s", node.Tag())

		restored, err := Unmarshal(data)
		require.NoError(t, err, "variant %s", node.Tag())
		require.Equal(t, node.Tag(), restored.Tag())

		for _, itemID := range sampleItems {
			assert.InDelta(t, node.DropChance(itemID), restored.DropChance(itemID), 1e-9,
				"variant %s item %s", node.Tag(), itemID)
		}
	}
}

func TestUnmarshalNestedTree(t *testing.T) {
	gold, err := NewGoldLoot(10, 50)
	require.NoError(t, err)
	rare := mustPossible(t, mustFixed(t, "relic", 1), 5)
	tree := NewComposite(gold, rare)

	data, err := Marshal(tree)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, restored.DropChance("relic"), 1e-9)
	assert.InDelta(t, 1.0, restored.DropChance(domain.PseudoGold), 1e-9)
}

func TestUnmarshalUnknownTag(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"mystery","data":{}}`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestUnmarshalInvalidPayloadFailsConstruction(t *testing.T) {
	// A well-formed envelope whose payload violates construction rules must
	// surface the construction error, not silently produce a node.
	_, err := Unmarshal([]byte(`{"type":"fixed","data":{"item_id":"x","quantity":0}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Unmarshal([]byte(`{"type":"choice","data":{"children":[],"weights":[]}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestUnmarshalNonIntegerQuantityKey(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"fixed_item","data":{"item_id":"x","quantities":{"lots":1}}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
