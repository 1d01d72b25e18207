// Package chest opens configured chest tiers: one energy debit, one roll of
// the tier's loot tree, rewards applied to the opening player.
package chest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/metrics"
)

// costOpen is the flat energy debit per chest opened, regardless of tier.
const costOpen = 2

// ContentSource resolves a chest tier key to its loot tree.
type ContentSource interface {
	Chest(key string) (loot.Loot, error)
}

// EnergySource is the atomic check-and-debit energy collaborator. Consume
// fails closed: false means the balance was insufficient and nothing was
// debited.
type EnergySource interface {
	Consume(ctx context.Context, playerID int64, amount int) (bool, error)
}

// RewardSink applies the rolled chest contents to the opening player.
type RewardSink interface {
	AddExperience(ctx context.Context, playerID int64, amount int) error
	AcquireLoot(ctx context.Context, playerID int64, bag domain.Bag) error
}

// OpenResult is what the command layer renders after an open.
type OpenResult struct {
	ChestKey string
	Loot     domain.Bag
}

// Service opens chests. The energy debit happens before the roll, so an
// unknown tier costs nothing but an empty roll still costs energy.
type Service interface {
	Open(ctx context.Context, playerID int64, chestKey string) (*OpenResult, error)
}

type service struct {
	content ContentSource
	energy  EnergySource
	sink    RewardSink
	bus     event.Bus

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a chest service.
func NewService(content ContentSource, energy EnergySource, sink RewardSink, bus event.Bus, seed int64) Service {
	//nolint:gosec // G404: gameplay randomness, not security critical
	return &service{
		content: content,
		energy:  energy,
		sink:    sink,
		bus:     bus,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Open rolls one instance of the tier's tree and grants it.
func (s *service) Open(ctx context.Context, playerID int64, chestKey string) (*OpenResult, error) {
	tree, err := s.content.Chest(chestKey)
	if err != nil {
		return nil, err
	}

	ok, err := s.energy.Consume(ctx, playerID, costOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to debit energy for player %d: %w", playerID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: player %d needs %d energy", domain.ErrInsufficientEnergy, playerID, costOpen)
	}

	s.rngMu.Lock()
	bag, rollErr := tree.Roll(s.rng, 1)
	s.rngMu.Unlock()
	if rollErr != nil {
		return nil, fmt.Errorf("failed to roll chest loot: %w", rollErr)
	}
	metrics.LootRolls.WithLabelValues("chest").Inc()

	s.grant(ctx, playerID, bag)

	if err := s.bus.Publish(ctx, event.NewChestOpenedEvent(playerID, chestKey)); err != nil {
		logger.FromContext(ctx).Warn("chest opened event failed", "player_id", playerID, "chest_key", chestKey, "error", err)
	}

	return &OpenResult{ChestKey: chestKey, Loot: bag}, nil
}

// grant applies a rolled bag to the player. Failures are logged, not
// propagated: the energy is already spent and the open must not replay.
func (s *service) grant(ctx context.Context, playerID int64, bag domain.Bag) {
	log := logger.FromContext(ctx)
	remainder := bag.Clone()
	if exp := remainder[domain.PseudoExpFlat]; exp > 0 {
		if err := s.sink.AddExperience(ctx, playerID, exp); err != nil {
			log.Error("failed to grant experience", "player_id", playerID, "amount", exp, "error", err)
		}
		remainder.Add(domain.PseudoExpFlat, -exp)
	}
	if remainder.IsEmpty() {
		return
	}
	if err := s.sink.AcquireLoot(ctx, playerID, remainder); err != nil {
		log.Error("failed to grant loot", "player_id", playerID, "error", err)
	}
}
