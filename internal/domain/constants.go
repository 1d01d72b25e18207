package domain

// Pseudo-item identifiers - reserved Bag keys for non-inventory rewards.
// The underscore wrapping keeps them out of the real item namespace, which is
// plain snake_case (e.g. "weapon_rusty_sword").
const (
	PseudoGold       = "_gold_"
	PseudoEnergy     = "_energy_"
	PseudoExpFlat    = "_exp_flat_"
	PseudoArenaCoins = "_arena_coins_"
	PseudoStars      = "_stars_"

	// Penalty counterparts carry positive magnitudes; the applying layer
	// subtracts them. Keeping them as separate keys preserves the invariant
	// that Bag quantities are never negative.
	PseudoGoldPenalty   = "_gold_penalty_"
	PseudoEnergyPenalty = "_energy_penalty_"
)

// IsPseudoItem reports whether an identifier is a reserved pseudo-item key.
func IsPseudoItem(itemID string) bool {
	switch itemID {
	case PseudoGold, PseudoEnergy, PseudoExpFlat, PseudoArenaCoins, PseudoStars,
		PseudoGoldPenalty, PseudoEnergyPenalty:
		return true
	}
	return false
}

// IsExperience reports whether an identifier is an experience pseudo-item.
// Experience shares round up during distribution so nonzero contribution
// never nets zero experience.
func IsExperience(itemID string) bool {
	return itemID == PseudoExpFlat
}

// IDUncreated is the sentinel identity of a session that has not been
// persisted yet. The store assigns the real surrogate id on first create.
const IDUncreated int64 = -1
