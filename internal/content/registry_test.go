package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halbrec/RuinfangBot_Go/internal/beast"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/quest"
)

func fixedJSON(t *testing.T, itemID string, quantity int) json.RawMessage {
	t.Helper()
	node, err := loot.NewFixed(itemID, quantity)
	require.NoError(t, err)
	data, err := loot.Marshal(node)
	require.NoError(t, err)
	return data
}

func sampleFile(t *testing.T) File {
	t.Helper()
	return File{
		Version: "1",
		Beasts: []BeastConfig{
			{Key: "skeleton", Name: "Skeleton", Tier: "normal", Health: 40, Initiative: 5, Experience: 100, Loot: fixedJSON(t, "bone", 2)},
			{Key: "skeleton_king", Name: "Skeleton King", Tier: "boss", Base: "skeleton", Experience: 400},
		},
		Chests: []ChestConfig{
			{Key: "wooden", Name: "Wooden Chest", Loot: fixedJSON(t, "coin_pouch", 1)},
		},
		Ruins: []RuinsConfig{
			{
				Key: "sunken_crypt", Name: "Sunken Crypt",
				EnergyRate: 2, MinDepth: 3, MaxDepth: 6,
				GuardChance: 40, Guardians: map[string]int{"skeleton": 1},
				GuardianRounds: 5,
				RoomLoot:       fixedJSON(t, "relic", 1),
				FinalLoot:      fixedJSON(t, "crown", 1),
			},
		},
		Quests: []QuestConfig{
			{Key: "bone_collector", Name: "Bone Collector", Kind: "slay", Goal: 500, Reward: fixedJSON(t, "gem", 10)},
		},
	}
}

func TestLoadShippedContentFile(t *testing.T) {
	r, err := Load("../../configs/content.json")
	require.NoError(t, err)

	def, err := r.Beast("bone_colossus")
	require.NoError(t, err)
	assert.Equal(t, beast.TierBoss, def.Tier)
	assert.True(t, def.Loot.CanDrop("bone"), "inherits skeleton loot")

	tc, err := r.RuinsType("sky_temple")
	require.NoError(t, err)
	assert.Equal(t, 2, tc.EnergyRate)

	assert.Len(t, r.QuestTemplates(), 2)
}

func TestBuildResolvesAllSections(t *testing.T) {
	r, err := Build(sampleFile(t))
	require.NoError(t, err)

	def, err := r.Beast("skeleton")
	require.NoError(t, err)
	assert.Equal(t, 40, def.Health)
	assert.True(t, def.Loot.CanDrop("bone"))

	chest, err := r.Chest("wooden")
	require.NoError(t, err)
	assert.True(t, chest.CanDrop("coin_pouch"))
	assert.Equal(t, []string{"wooden"}, r.ChestKeys())

	tc, err := r.RuinsType("sunken_crypt")
	require.NoError(t, err)
	assert.Equal(t, 3, tc.MinDepth)
	assert.True(t, tc.FinalLoot.CanDrop("crown"))

	template, err := r.QuestTemplate("bone_collector")
	require.NoError(t, err)
	assert.Equal(t, quest.KindSlay, template.Kind)
	assert.Len(t, r.QuestTemplates(), 1)
}

func TestDerivedBeastInheritsBaseStats(t *testing.T) {
	r, err := Build(sampleFile(t))
	require.NoError(t, err)

	def, err := r.Beast("skeleton_king")
	require.NoError(t, err)
	assert.Equal(t, beast.TierBoss, def.Tier)
	assert.Equal(t, 40, def.Health, "inherited from base")
	assert.Equal(t, 400, def.Experience, "own value wins over base")
	assert.True(t, def.Loot.CanDrop("bone"), "loot tree inherited")
	assert.Nil(t, def.Base, "stored definitions are flattened")
}

func TestMissingKeysAreNotFound(t *testing.T) {
	r, err := Build(sampleFile(t))
	require.NoError(t, err)

	_, err = r.Beast("dragon")
	assert.ErrorIs(t, err, domain.ErrBeastNotFound)
	_, err = r.Chest("golden")
	assert.ErrorIs(t, err, domain.ErrChestNotFound)
	_, err = r.RuinsType("sky_temple")
	assert.ErrorIs(t, err, domain.ErrRuinsNotFound)
	_, err = r.QuestTemplate("dragon_slayer")
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)
}

func TestBaseCycleFailsFast(t *testing.T) {
	file := File{
		Beasts: []BeastConfig{
			{Key: "a", Base: "b", Health: 1},
			{Key: "b", Base: "a", Health: 1},
		},
	}
	_, err := Build(file)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestUnknownGuardianFailsFast(t *testing.T) {
	file := sampleFile(t)
	file.Ruins[0].Guardians = map[string]int{"ghost": 1}
	_, err := Build(file)
	assert.ErrorIs(t, err, domain.ErrBeastNotFound)
}

func TestValidationRejectsBadQuestKind(t *testing.T) {
	file := sampleFile(t)
	file.Quests[0].Kind = "fishing"
	_, err := Build(file)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
