package quest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/concurrency"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/metrics"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
)

// RewardSink applies distributed quest rewards to player records.
type RewardSink interface {
	AddExperience(ctx context.Context, playerID int64, amount int) error
	AcquireLoot(ctx context.Context, playerID int64, bag domain.Bag) error
}

// ContributeResult is what the command layer renders after a contribution.
type ContributeResult struct {
	Completed    bool
	Current      int
	Goal         int
	Reward       domain.Bag
	Distribution map[int64]domain.Bag
}

// Service orchestrates shared quests.
type Service interface {
	Open(ctx context.Context, template Template) (*Quest, error)
	Contribute(ctx context.Context, questKey string, playerID int64, amount int) (*ContributeResult, error)
	ContributeKind(ctx context.Context, kind Kind, playerID int64, amount int)
	Active(ctx context.Context) []*Quest
}

type service struct {
	store       repository.SessionStore
	sink        RewardSink
	bus         event.Bus
	distributor loot.Distributor
	locks       *concurrency.LockManager

	mu    sync.RWMutex
	byKey map[string]*Quest

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// NewService creates a quest service.
func NewService(store repository.SessionStore, sink RewardSink, bus event.Bus, distributor loot.Distributor, seed int64) Service {
	//nolint:gosec // G404: gameplay randomness, not security critical
	return &service{
		store:       store,
		sink:        sink,
		bus:         bus,
		distributor: distributor,
		locks:       concurrency.NewLockManager(),
		byKey:       make(map[string]*Quest),
		rng:         rand.New(rand.NewSource(seed)),
		now:         time.Now,
	}
}

// Open creates and persists a live quest. One live quest per template key.
func (s *service) Open(ctx context.Context, template Template) (*Quest, error) {
	s.mu.Lock()
	if _, ok := s.byKey[template.Key]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: quest %q", domain.ErrSessionExists, template.Key)
	}
	s.mu.Unlock()

	now := s.now()
	q, err := New(template, now)
	if err != nil {
		return nil, err
	}

	data, err := q.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize quest: %w", err)
	}
	id, err := s.store.Create(ctx, data, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to persist quest: %w", err)
	}
	q.SetID(id)

	s.mu.Lock()
	s.byKey[template.Key] = q
	s.mu.Unlock()
	return q, nil
}

// Contribute credits a player toward a quest. Completion rolls and
// distributes the reward exactly once; the finalize-persist-reward sequence
// is serialized per quest through the lock manager so a racing contribution
// cannot interleave with it.
func (s *service) Contribute(ctx context.Context, questKey string, playerID int64, amount int) (*ContributeResult, error) {
	s.mu.RLock()
	q, ok := s.byKey[questKey]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrQuestNotFound, questKey)
	}

	lock := s.locks.GetLock("quest:" + questKey)
	lock.Lock()
	defer lock.Unlock()

	completed, err := q.Contribute(playerID, amount, s.now())
	if err != nil {
		return nil, err
	}

	result := &ContributeResult{Completed: completed}
	result.Current, result.Goal = q.Progress()

	if completed {
		s.rngMu.Lock()
		reward, distribution, first := q.finalizeReward(s.rng, s.distributor)
		s.rngMu.Unlock()
		result.Reward = reward
		result.Distribution = distribution
		if first {
			metrics.LootRolls.WithLabelValues("quest").Inc()
			s.applyRewards(ctx, distribution)
			if err := s.bus.Publish(ctx, event.NewQuestCompletedEvent(q.ID(), questKey, len(distribution))); err != nil {
				logger.FromContext(ctx).Warn("quest completed event failed", "quest", questKey, "error", err)
			}
		}
		s.mu.Lock()
		delete(s.byKey, questKey)
		s.mu.Unlock()
	}

	if err := s.persist(ctx, q); err != nil {
		return nil, err
	}
	return result, nil
}

// ContributeKind credits a player on every live quest of the given kind.
// Used by the event handler; failures are logged, never propagated into the
// publishing flow.
func (s *service) ContributeKind(ctx context.Context, kind Kind, playerID int64, amount int) {
	if amount <= 0 {
		return
	}
	for _, q := range s.Active(ctx) {
		if q.Template().Kind != kind {
			continue
		}
		if _, err := s.Contribute(ctx, q.Template().Key, playerID, amount); err != nil {
			logger.FromContext(ctx).Warn("quest auto-contribution failed",
				"quest", q.Template().Key, "player_id", playerID, "error", err)
		}
	}
}

// Active returns all live quests in a stable key order.
func (s *service) Active(_ context.Context) []*Quest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quests := make([]*Quest, 0, len(s.byKey))
	for _, q := range s.byKey {
		quests = append(quests, q)
	}
	sort.Slice(quests, func(i, j int) bool {
		return quests[i].Template().Key < quests[j].Template().Key
	})
	return quests
}

func (s *service) applyRewards(ctx context.Context, distribution map[int64]domain.Bag) {
	log := logger.FromContext(ctx)
	for playerID, allocation := range distribution {
		remainder := allocation.Clone()
		if exp := remainder[domain.PseudoExpFlat]; exp > 0 {
			if err := s.sink.AddExperience(ctx, playerID, exp); err != nil {
				log.Error("failed to grant experience", "player_id", playerID, "amount", exp, "error", err)
			}
			remainder.Add(domain.PseudoExpFlat, -exp)
		}
		if remainder.IsEmpty() {
			continue
		}
		if err := s.sink.AcquireLoot(ctx, playerID, remainder); err != nil {
			log.Error("failed to grant loot", "player_id", playerID, "error", err)
		}
	}
}

func (s *service) persist(ctx context.Context, q *Quest) error {
	data, err := q.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize quest %d: %w", q.ID(), err)
	}
	if err := s.store.Update(ctx, q.ID(), data, q.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to persist quest %d: %w", q.ID(), err)
	}
	return nil
}
