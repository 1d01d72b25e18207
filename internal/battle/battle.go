// Package battle implements the beast battle session: a turn-accumulating
// combat state machine with bounded or unbounded rounds and lazy exactly-once
// loot finalization.
package battle

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
)

// Battle is the aggregate root of one combat session. All state mutation goes
// through methods that hold mu around the read-check-mutate sequence only;
// persistence and reward I/O happen outside the lock (see Service).
type Battle struct {
	mu sync.Mutex

	id        int64
	beast     domain.BeastSnapshot
	lootTree  loot.Loot
	maxRounds int // 0 = unbounded
	unlimited bool
	allowed   map[int64]bool // nil = anyone may attack

	finished     bool
	rounds       []domain.BattleRound
	lootBag      domain.Bag
	distribution map[int64]domain.Bag

	createdAt time.Time
	updatedAt time.Time
}

// Options configures a new battle.
type Options struct {
	MaxRounds        int // 0 = unbounded
	UnlimitedHealth  bool
	AllowedAttackers []int64 // nil/empty = open to everyone
}

// New creates an in-memory battle around a beast snapshot. The battle carries
// the IDUncreated sentinel until the store assigns an id.
func New(snapshot domain.BeastSnapshot, lootTree loot.Loot, opts Options, now time.Time) *Battle {
	var allowed map[int64]bool
	if len(opts.AllowedAttackers) > 0 {
		allowed = make(map[int64]bool, len(opts.AllowedAttackers))
		for _, playerID := range opts.AllowedAttackers {
			allowed[playerID] = true
		}
	}
	if lootTree == nil {
		lootTree = loot.NewEmpty()
	}
	return &Battle{
		id:        domain.IDUncreated,
		beast:     snapshot,
		lootTree:  lootTree,
		maxRounds: opts.MaxRounds,
		unlimited: opts.UnlimitedHealth,
		allowed:   allowed,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the persisted identity, or domain.IDUncreated before the first
// persist.
func (b *Battle) ID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// SetID records the store-assigned identity after the first persist.
func (b *Battle) SetID(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.id = id
}

// Beast returns the immutable beast snapshot.
func (b *Battle) Beast() domain.BeastSnapshot { return b.beast }

// Finished reports whether the battle reached its terminal state.
func (b *Battle) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// UpdatedAt returns the time of the last state transition.
func (b *Battle) UpdatedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updatedAt
}

// TotalDamage sums all damage across all rounds.
func (b *Battle) TotalDamage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalDamageLocked()
}

func (b *Battle) totalDamageLocked() int {
	total := 0
	for i := range b.rounds {
		total += b.rounds[i].Damage()
	}
	return total
}

// Killed reports whether cumulative damage reached the beast's health. A
// punching-bag battle is never "killed".
func (b *Battle) Killed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.killedLocked()
}

func (b *Battle) killedLocked() bool {
	return !b.unlimited && b.totalDamageLocked() >= b.beast.Health
}

// contributionsLocked sums per-player damage across all rounds; this is the
// contribution score for loot distribution.
func (b *Battle) contributionsLocked() map[int64]int {
	contributions := make(map[int64]int)
	for i := range b.rounds {
		for _, attack := range b.rounds[i].Attacks {
			contributions[attack.PlayerID] += attack.Damage
		}
	}
	return contributions
}

// Contributions returns the per-player damage totals across all rounds.
func (b *Battle) Contributions() map[int64]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contributionsLocked()
}

// roundOutcome describes what a processed round did to the battle.
type roundOutcome struct {
	Round       domain.BattleRound
	FinishedNow bool
	Killed      bool
}

// processRound appends one round for the attack and evaluates the transition
// conditions: kill, round cap. Only the in-memory mutation happens under the
// lock.
func (b *Battle) processRound(attack domain.Attack, now time.Time) (roundOutcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return roundOutcome{}, fmt.Errorf("%w: battle %d", domain.ErrBattleFinished, b.id)
	}
	if b.allowed != nil && !b.allowed[attack.PlayerID] {
		return roundOutcome{}, fmt.Errorf("%w: player %d may not attack battle %d", domain.ErrPrerequisiteNotMet, attack.PlayerID, b.id)
	}

	round := domain.BattleRound{
		Number:  len(b.rounds) + 1,
		Attacks: []domain.Attack{attack},
		Created: now,
	}
	round.SortAttacks()
	b.rounds = append(b.rounds, round)
	b.updatedAt = now

	killed := b.killedLocked()
	capped := b.maxRounds > 0 && len(b.rounds) >= b.maxRounds
	if killed || capped {
		b.finished = true
	}

	return roundOutcome{Round: round, FinishedNow: b.finished, Killed: killed}, nil
}

// finish transitions the battle to its terminal state. Returns false if it
// was already finished, so concurrent or repeated calls are no-ops.
func (b *Battle) finish(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return false
	}
	b.finished = true
	b.updatedAt = now
	return true
}

// finalizeLoot rolls the loot tree and computes the distribution, at most
// once, gated on the distribution still being nil. Losing battles (round cap
// without a kill, not a punching bag) yield an empty bag.
//
// The roll and split are pure in-memory computation, so holding the lock here
// is cheap; the slow persistence and reward I/O stay with the caller.
func (b *Battle) finalizeLoot(rng *rand.Rand, distributor loot.Distributor) (domain.Bag, map[int64]domain.Bag, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.distribution != nil {
		return b.lootBag, b.distribution, false
	}

	bag := make(domain.Bag)
	if b.killedLocked() || b.unlimited {
		rolled, err := b.lootTree.Roll(rng, 1)
		if err == nil {
			bag = rolled
		}
	}
	if b.beast.Experience > 0 && (b.killedLocked() || b.unlimited) {
		bag.Add(domain.PseudoExpFlat, b.beast.Experience)
	}

	b.lootBag = bag
	b.distribution = distributor.Distribute(rng, bag, b.contributionsLocked())
	return b.lootBag, b.distribution, true
}

// Loot returns the rolled loot bag, or nil before finalization.
func (b *Battle) Loot() domain.Bag {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lootBag
}

// Distribution returns the per-player allocation, or nil before finalization.
func (b *Battle) Distribution() map[int64]domain.Bag {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.distribution
}

// Rounds returns a copy of the completed rounds.
func (b *Battle) Rounds() []domain.BattleRound {
	b.mu.Lock()
	defer b.mu.Unlock()
	rounds := make([]domain.BattleRound, len(b.rounds))
	copy(rounds, b.rounds)
	return rounds
}

// state snapshots the persistable form under the lock.
func (b *Battle) state() domain.BattleState {
	b.mu.Lock()
	defer b.mu.Unlock()

	var allowed []int64
	for playerID := range b.allowed {
		allowed = append(allowed, playerID)
	}
	rounds := make([]domain.BattleRound, len(b.rounds))
	copy(rounds, b.rounds)

	return domain.BattleState{
		Beast:            b.beast,
		MaxRounds:        b.maxRounds,
		UnlimitedHealth:  b.unlimited,
		AllowedAttackers: allowed,
		Finished:         b.finished,
		Rounds:           rounds,
		Loot:             b.lootBag,
		Distribution:     b.distribution,
	}
}

// Serialize returns the opaque blob handed to the session store.
func (b *Battle) Serialize() ([]byte, error) {
	return json.Marshal(b.state())
}
