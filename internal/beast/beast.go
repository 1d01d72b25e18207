// Package beast holds beast definitions and the tier variant transforms
// applied on top of a base definition.
package beast

import (
	"fmt"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
)

// Tier is a beast variant tag. Each tier alters health, experience and loot
// through the pure transform functions below rather than subtype behavior.
type Tier string

const (
	TierNormal Tier = "normal"
	TierElite  Tier = "elite"
	TierBoss   Tier = "boss"
	TierRaid   Tier = "raid"
)

// Definition is an immutable beast blueprint from game content. A definition
// may derive from a base definition; Resolve applies the derivation before
// the tier transforms.
type Definition struct {
	Key        string
	Name       string
	Tier       Tier
	Health     int
	Initiative int
	Experience int
	Loot       loot.Loot

	// Base is the definition this one derives from, if any. Zero-valued
	// stats are inherited from it.
	Base *Definition
}

// tierScale holds the per-tier stat multipliers.
type tierScale struct {
	health     int
	experience int
	lootRolls  int
}

var tierScales = map[Tier]tierScale{
	TierNormal: {health: 1, experience: 1, lootRolls: 1},
	TierElite:  {health: 3, experience: 4, lootRolls: 2},
	TierBoss:   {health: 10, experience: 15, lootRolls: 4},
	TierRaid:   {health: 40, experience: 60, lootRolls: 10},
}

// TierHealth returns the base health scaled for the tier.
func TierHealth(base int, tier Tier) int {
	if scale, ok := tierScales[tier]; ok {
		return base * scale.health
	}
	return base
}

// TierExperience returns the base experience scaled for the tier.
func TierExperience(base int, tier Tier) int {
	if scale, ok := tierScales[tier]; ok {
		return base * scale.experience
	}
	return base
}

// TierLoot wraps the base loot tree so higher tiers roll it more times.
// Normal tier returns the tree unchanged; the wrap never mutates the shared
// base tree.
func TierLoot(base loot.Loot, tier Tier) (loot.Loot, error) {
	scale, ok := tierScales[tier]
	if !ok || scale.lootRolls <= 1 {
		return base, nil
	}
	return loot.NewRepeated(base, scale.lootRolls)
}

// Resolve flattens a definition against its base: zero-valued stats and a
// nil loot tree are inherited. The result carries no Base handle.
func Resolve(def Definition) Definition {
	if def.Base == nil {
		return def
	}
	base := Resolve(*def.Base)
	if def.Name == "" {
		def.Name = base.Name
	}
	if def.Health == 0 {
		def.Health = base.Health
	}
	if def.Initiative == 0 {
		def.Initiative = base.Initiative
	}
	if def.Experience == 0 {
		def.Experience = base.Experience
	}
	if def.Loot == nil {
		def.Loot = base.Loot
	}
	def.Base = nil
	return def
}

// Snapshot produces the immutable battle-time copy of a definition with the
// tier transforms applied.
func Snapshot(def Definition) (domain.BeastSnapshot, loot.Loot, error) {
	resolved := Resolve(def)
	if resolved.Health <= 0 {
		return domain.BeastSnapshot{}, nil, fmt.Errorf("%w: beast %q has no health", domain.ErrInvalidConfiguration, resolved.Key)
	}
	tree := resolved.Loot
	if tree == nil {
		tree = loot.NewEmpty()
	}
	tree, err := TierLoot(tree, resolved.Tier)
	if err != nil {
		return domain.BeastSnapshot{}, nil, err
	}

	exp := TierExperience(resolved.Experience, resolved.Tier)
	snapshot := domain.BeastSnapshot{
		Key:        resolved.Key,
		Name:       resolved.Name,
		Tier:       string(resolved.Tier),
		Health:     TierHealth(resolved.Health, resolved.Tier),
		Initiative: resolved.Initiative,
		Experience: exp,
	}
	return snapshot, tree, nil
}
