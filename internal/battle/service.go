package battle

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/beast"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/metrics"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
)

// PowerSource supplies a player's combat power. The damage formula itself is
// an external collaborator concern.
type PowerSource interface {
	CombatPower(ctx context.Context, playerID int64) (int, error)
}

// RewardSink applies distributed rewards to player records. The sink does not
// guarantee idempotency; the service calls it at most once per finalized
// battle.
type RewardSink interface {
	AddExperience(ctx context.Context, playerID int64, amount int) error
	AcquireLoot(ctx context.Context, playerID int64, bag domain.Bag) error
}

// RoundResult is what the command layer renders after an attack.
type RoundResult struct {
	Round        domain.BattleRound
	Finished     bool
	Killed       bool
	TotalDamage  int
	Loot         domain.Bag
	Distribution map[int64]domain.Bag
}

// Service orchestrates battle sessions: collaborator I/O happens outside the
// per-battle lock, in-memory transitions inside it.
type Service interface {
	Start(ctx context.Context, def beast.Definition, opts Options) (*Battle, error)
	ProcessRound(ctx context.Context, battleID, playerID int64, playerName string) (*RoundResult, error)
	Finish(ctx context.Context, battleID int64) (bool, error)
	Get(ctx context.Context, battleID int64) (*Battle, error)
}

type service struct {
	store       repository.SessionStore
	manager     *Manager
	power       PowerSource
	sink        RewardSink
	bus         event.Bus
	distributor loot.Distributor

	// math/rand.Rand is not safe for concurrent use; every roll goes
	// through rngMu.
	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// NewService creates a battle service.
func NewService(store repository.SessionStore, manager *Manager, power PowerSource, sink RewardSink, bus event.Bus, distributor loot.Distributor, seed int64) Service {
	//nolint:gosec // G404: gameplay randomness, not security critical
	return &service{
		store:       store,
		manager:     manager,
		power:       power,
		sink:        sink,
		bus:         bus,
		distributor: distributor,
		rng:         rand.New(rand.NewSource(seed)),
		now:         time.Now,
	}
}

// Start snapshots the beast, persists the new battle and registers it.
func (s *service) Start(ctx context.Context, def beast.Definition, opts Options) (*Battle, error) {
	snapshot, tree, err := beast.Snapshot(def)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot beast %q: %w", def.Key, err)
	}

	now := s.now()
	b := New(snapshot, tree, opts, now)

	data, err := b.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize battle: %w", err)
	}
	id, err := s.store.Create(ctx, data, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to persist battle: %w", err)
	}
	b.SetID(id)
	s.manager.Register(b)

	metrics.BattlesStarted.WithLabelValues(snapshot.Tier).Inc()
	if err := s.bus.Publish(ctx, event.NewBattleStartedEvent(id, snapshot.Key, snapshot.Name, snapshot.Tier)); err != nil {
		logger.FromContext(ctx).Warn("battle started event failed", "battle_id", id, "error", err)
	}
	return b, nil
}

// ProcessRound resolves one attack turn for the player. The combat power
// lookup is collaborator I/O and happens before the battle lock is taken; the
// persistence and reward application happen after it is released.
func (s *service) ProcessRound(ctx context.Context, battleID, playerID int64, playerName string) (*RoundResult, error) {
	b, err := s.manager.Get(battleID)
	if err != nil {
		return nil, err
	}

	power, err := s.power.CombatPower(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get combat power for player %d: %w", playerID, err)
	}

	now := s.now()
	attack := domain.Attack{
		PlayerID:   playerID,
		SourceName: playerName,
		Damage:     power,
		Initiative: power,
		CreatedAt:  now,
	}

	outcome, err := b.processRound(attack, now)
	if err != nil {
		return nil, err
	}
	metrics.RoundsProcessed.Inc()

	result := &RoundResult{
		Round:       outcome.Round,
		Finished:    outcome.FinishedNow,
		Killed:      outcome.Killed,
		TotalDamage: b.TotalDamage(),
	}

	if outcome.FinishedNow {
		lootBag, distribution, err := s.finalize(ctx, b, outcome.Killed)
		if err != nil {
			return nil, err
		}
		result.Loot = lootBag
		result.Distribution = distribution
		return result, nil
	}

	if err := s.persist(ctx, b); err != nil {
		return nil, err
	}
	return result, nil
}

// Finish explicitly terminates a battle. Returns false without side effects
// when the battle already finished; loot is rolled and distributed exactly
// once either way.
func (s *service) Finish(ctx context.Context, battleID int64) (bool, error) {
	b, err := s.manager.Get(battleID)
	if err != nil {
		return false, err
	}
	if !b.finish(s.now()) {
		return false, nil
	}
	if _, _, err := s.finalize(ctx, b, b.Killed()); err != nil {
		return true, err
	}
	return true, nil
}

// Get returns the live battle for the id.
func (s *service) Get(_ context.Context, battleID int64) (*Battle, error) {
	return s.manager.Get(battleID)
}

// finalize rolls loot and distribution (exactly once), persists the terminal
// state and applies rewards.
func (s *service) finalize(ctx context.Context, b *Battle, killed bool) (domain.Bag, map[int64]domain.Bag, error) {
	s.rngMu.Lock()
	lootBag, distribution, first := b.finalizeLoot(s.rng, s.distributor)
	s.rngMu.Unlock()

	if err := s.persist(ctx, b); err != nil {
		return lootBag, distribution, err
	}
	if !first {
		return lootBag, distribution, nil
	}

	metrics.BattlesFinished.WithLabelValues(outcomeLabel(killed)).Inc()
	s.applyRewards(ctx, distribution)

	if err := s.bus.Publish(ctx, event.NewBattleFinishedEvent(b.ID(), b.Beast().Name, killed, len(b.Rounds()), b.TotalDamage(), b.Contributions())); err != nil {
		logger.FromContext(ctx).Warn("battle finished event failed", "battle_id", b.ID(), "error", err)
	}
	if len(distribution) > 0 {
		if err := s.bus.Publish(ctx, event.NewLootDistributedEvent("battle", b.ID(), len(distribution), lootBag.Total())); err != nil {
			logger.FromContext(ctx).Warn("loot distributed event failed", "battle_id", b.ID(), "error", err)
		}
	}
	return lootBag, distribution, nil
}

// applyRewards pushes each player's allocation into the sink. Experience is
// split out for the dedicated call; everything else travels as one bag.
// Failures are logged per player so one broken inventory does not starve the
// rest.
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

func (s *service) persist(ctx context.Context, b *Battle) error {
	data, err := b.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize battle %d: %w", b.ID(), err)
	}
	if err := s.store.Update(ctx, b.ID(), data, b.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to persist battle %d: %w", b.ID(), err)
	}
	return nil
}

func outcomeLabel(killed bool) string {
	if killed {
		return "killed"
	}
	return "survived"
}
