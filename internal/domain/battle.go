package domain

import (
	"sort"
	"time"
)

// BeastSnapshot is the immutable copy of a beast's stats taken when a battle
// is created. Content reloads or tier rebalances never affect a live battle.
type BeastSnapshot struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Tier       string `json:"tier"`
	Health     int    `json:"health"`
	Initiative int    `json:"initiative"`
	Experience int    `json:"experience"`
}

// Attack is a single player strike inside a battle round.
type Attack struct {
	PlayerID   int64     `json:"player_id"`
	SourceName string    `json:"source_name"`
	Damage     int       `json:"damage"`
	Initiative int       `json:"initiative"`
	CreatedAt  time.Time `json:"created_at"`
}

// BattleRound is one completed attack-turn, owned exclusively by its battle.
type BattleRound struct {
	Number  int       `json:"number"`
	Attacks []Attack  `json:"attacks"`
	Created time.Time `json:"created"`
}

// SortAttacks orders the round's attacks by initiative descending, then
// creation time descending, then source name descending. The order is for
// deterministic replay and serialization, not gameplay.
func (r *BattleRound) SortAttacks() {
	sort.SliceStable(r.Attacks, func(i, j int) bool {
		a, b := r.Attacks[i], r.Attacks[j]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.SourceName > b.SourceName
	})
}

// Damage returns the total damage dealt in the round.
func (r *BattleRound) Damage() int {
	total := 0
	for _, a := range r.Attacks {
		total += a.Damage
	}
	return total
}

// BattleState is the persisted form of a battle session: the opaque blob
// handed to the session store. Loot and Distribution stay nil until the
// battle finishes.
type BattleState struct {
	Beast            BeastSnapshot  `json:"beast"`
	MaxRounds        int            `json:"max_rounds"` // 0 = unbounded
	UnlimitedHealth  bool           `json:"unlimited_health"`
	AllowedAttackers []int64        `json:"allowed_attackers,omitempty"`
	Finished         bool           `json:"finished"`
	Rounds           []BattleRound  `json:"rounds"`
	Loot             Bag            `json:"loot,omitempty"`
	Distribution     map[int64]Bag  `json:"distribution,omitempty"`
}
