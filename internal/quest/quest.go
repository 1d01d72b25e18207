// Package quest implements shared quest sessions: contribution-accumulating
// objectives whose reward loot is rolled once on completion and split across
// contributors by their share of the goal.
package quest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
)

// Kind selects which gameplay signal advances a quest.
type Kind string

const (
	KindSlay    Kind = "slay"    // battle damage
	KindExplore Kind = "explore" // ruins depth and searched rooms
	KindGeneric Kind = "generic" // explicit contributions from the command layer
)

// Template is the immutable definition of one quest, supplied by the content
// source.
type Template struct {
	Key    string
	Name   string
	Kind   Kind
	Goal   int
	Reward loot.Loot
}

func (t Template) validate() error {
	if t.Key == "" {
		return fmt.Errorf("%w: quest without key", domain.ErrInvalidConfiguration)
	}
	if t.Goal <= 0 {
		return fmt.Errorf("%w: quest %q goal %d", domain.ErrInvalidConfiguration, t.Key, t.Goal)
	}
	return nil
}

// Quest is one live shared session over a template.
type Quest struct {
	mu sync.Mutex

	id            int64
	template      Template
	contributions map[int64]int
	completed     bool
	reward        domain.Bag
	distribution  map[int64]domain.Bag

	createdAt time.Time
	updatedAt time.Time
}

// New creates a live quest from a template.
func New(template Template, now time.Time) (*Quest, error) {
	if err := template.validate(); err != nil {
		return nil, err
	}
	return &Quest{
		id:            domain.IDUncreated,
		template:      template,
		contributions: make(map[int64]int),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ID returns the persisted identity, or domain.IDUncreated before the first
// persist.
func (q *Quest) ID() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.id
}

// SetID records the store-assigned identity after the first persist.
func (q *Quest) SetID(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.id = id
}

// Template returns the quest definition.
func (q *Quest) Template() Template {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.template
}

// Completed reports whether the goal was reached.
func (q *Quest) Completed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// UpdatedAt returns the time of the last contribution.
func (q *Quest) UpdatedAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.updatedAt
}

// Progress returns accumulated and required contribution totals.
func (q *Quest) Progress() (current, goal int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalLocked(), q.template.Goal
}

func (q *Quest) totalLocked() int {
	total := 0
	for _, amount := range q.contributions {
		total += amount
	}
	return total
}

// Contribute credits a player and reports whether this contribution completed
// the quest.
func (q *Quest) Contribute(playerID int64, amount int, now time.Time) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: contribution %d", domain.ErrInvalidArgument, amount)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.completed {
		return false, fmt.Errorf("%w: quest %q already completed", domain.ErrPrerequisiteNotMet, q.template.Key)
	}
	q.contributions[playerID] += amount
	q.updatedAt = now
	if q.totalLocked() >= q.template.Goal {
		q.completed = true
		return true, nil
	}
	return false, nil
}

// finalizeReward rolls the reward tree and computes the distribution, at most
// once, gated on the distribution still being nil.
func (q *Quest) finalizeReward(rng *rand.Rand, distributor loot.Distributor) (domain.Bag, map[int64]domain.Bag, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.distribution != nil {
		return q.reward, q.distribution, false
	}

	bag := make(domain.Bag)
	if q.template.Reward != nil {
		if rolled, err := q.template.Reward.Roll(rng, 1); err == nil {
			bag = rolled
		}
	}
	q.reward = bag
	q.distribution = distributor.Distribute(rng, bag, q.contributions)
	return q.reward, q.distribution, true
}

// Contributions returns a copy of the per-player scores.
func (q *Quest) Contributions() map[int64]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	contributions := make(map[int64]int, len(q.contributions))
	for playerID, amount := range q.contributions {
		contributions[playerID] = amount
	}
	return contributions
}

// State snapshots the persistable form.
func (q *Quest) State() domain.QuestState {
	q.mu.Lock()
	defer q.mu.Unlock()

	contributions := make(map[int64]int, len(q.contributions))
	for playerID, amount := range q.contributions {
		contributions[playerID] = amount
	}
	return domain.QuestState{
		Key:           q.template.Key,
		Name:          q.template.Name,
		Goal:          q.template.Goal,
		Contributions: contributions,
		Completed:     q.completed,
		Reward:        q.reward,
		Distribution:  q.distribution,
	}
}

// Serialize returns the opaque blob handed to the session store.
func (q *Quest) Serialize() ([]byte, error) {
	return json.Marshal(q.State())
}
