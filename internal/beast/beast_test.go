package beast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
)

func TestTierTransforms(t *testing.T) {
	assert.Equal(t, 30, TierHealth(10, TierElite))
	assert.Equal(t, 400, TierHealth(10, TierRaid))
	assert.Equal(t, 10, TierHealth(10, TierNormal))
	assert.Equal(t, 150, TierExperience(10, TierBoss))
	// Unknown tiers pass stats through unchanged.
	assert.Equal(t, 10, TierHealth(10, Tier("mystery")))
}

func TestResolveInheritsFromBase(t *testing.T) {
	tree, err := loot.NewFixed("fang", 1)
	require.NoError(t, err)

	base := Definition{Key: "wolf", Name: "Wolf", Health: 20, Initiative: 5, Experience: 8, Loot: tree}
	derived := Definition{Key: "dire_wolf", Tier: TierElite, Health: 35, Base: &base}

	resolved := Resolve(derived)
	assert.Equal(t, "Wolf", resolved.Name)
	assert.Equal(t, 35, resolved.Health)
	assert.Equal(t, 5, resolved.Initiative)
	assert.Equal(t, 8, resolved.Experience)
	assert.NotNil(t, resolved.Loot)
	assert.Nil(t, resolved.Base)
}

func TestSnapshotAppliesTierScaling(t *testing.T) {
	tree, err := loot.NewFixed("fang", 1)
	require.NoError(t, err)

	def := Definition{Key: "wolf", Name: "Wolf", Tier: TierBoss, Health: 10, Initiative: 3, Experience: 4, Loot: tree}
	snapshot, scaled, err := Snapshot(def)
	require.NoError(t, err)

	assert.Equal(t, 100, snapshot.Health)
	assert.Equal(t, 60, snapshot.Experience)
	assert.Equal(t, "boss", snapshot.Tier)

	// Boss loot rolls the base tree 4 times.
	rng := rand.New(rand.NewSource(1))
	bag, err := scaled.Roll(rng, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, bag["fang"])
}

func TestSnapshotRejectsHealthlessBeast(t *testing.T) {
	_, _, err := Snapshot(Definition{Key: "ghost", Tier: TierNormal})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
