package ruins

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/beast"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
	"github.com/halbrec/RuinfangBot_Go/internal/metrics"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
	"github.com/halbrec/RuinfangBot_Go/internal/utils"
)

// Sneak success scaling. The rank bonus approaches sneakRankBonus as the
// player's rank grows past sneakRankScale.
const (
	sneakBaseChance = 0.25
	sneakRankBonus  = 0.65
	sneakRankScale  = 25.0
)

// EnergySource is the atomic check-and-debit energy collaborator. Consume
// fails closed: false means the balance was insufficient and nothing was
// debited.
type EnergySource interface {
	Consume(ctx context.Context, playerID int64, amount int) (bool, error)
}

// RankSource supplies the player rank that scales sneak success.
type RankSource interface {
	Rank(ctx context.Context, playerID int64) (int, error)
}

// RewardSink applies searched-room loot to the owning player.
type RewardSink interface {
	AddExperience(ctx context.Context, playerID int64, amount int) error
	AcquireLoot(ctx context.Context, playerID int64, bag domain.Bag) error
}

// ContentSource resolves ruins type tables and guardian beast definitions.
type ContentSource interface {
	RuinsType(key string) (TypeConfig, error)
	Beast(key string) (beast.Definition, error)
}

// SearchResult is what the command layer renders after a search.
type SearchResult struct {
	Loot      domain.Bag
	FinalRoom bool
	RunEnded  bool
}

// FightResult wraps the embedded battle round with run-level outcomes.
type FightResult struct {
	Round          *battle.RoundResult
	GuardianKilled bool
	RunEnded       bool // guardian fight lost, player forced out
}

// Service orchestrates ruins runs: energy debits and persistence are
// collaborator I/O and happen outside the session lock.
type Service interface {
	Enter(ctx context.Context, playerID int64, playerName, typeKey string) (*Session, error)
	Explore(ctx context.Context, playerID int64) (domain.Room, error)
	Search(ctx context.Context, playerID int64) (*SearchResult, error)
	Sneak(ctx context.Context, playerID int64) (bool, error)
	Fight(ctx context.Context, playerID int64) (*FightResult, error)
	Leave(ctx context.Context, playerID int64) error
	Current(ctx context.Context, playerID int64) (*Session, error)
}

type service struct {
	store   repository.SessionStore
	manager *Manager
	content ContentSource
	energy  EnergySource
	ranks   RankSource
	sink    RewardSink
	battles battle.Service
	bus     event.Bus

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// NewService creates a ruins service.
func NewService(store repository.SessionStore, manager *Manager, content ContentSource, energy EnergySource, ranks RankSource, sink RewardSink, battles battle.Service, bus event.Bus, seed int64) Service {
	//nolint:gosec // G404: gameplay randomness, not security critical
	return &service{
		store:   store,
		manager: manager,
		content: content,
		energy:  energy,
		ranks:   ranks,
		sink:    sink,
		battles: battles,
		bus:     bus,
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
	}
}

// Enter opens a run for the player. One live run per player.
func (s *service) Enter(ctx context.Context, playerID int64, playerName, typeKey string) (*Session, error) {
	if _, err := s.manager.Get(playerID); err == nil {
		return nil, fmt.Errorf("%w: player %d", domain.ErrSessionExists, playerID)
	}

	cfg, err := s.content.RuinsType(typeKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.rngMu.Lock()
	sess, err := NewSession(playerID, playerName, cfg, s.rng, now)
	s.rngMu.Unlock()
	if err != nil {
		return nil, err
	}

	data, err := sess.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ruins run: %w", err)
	}
	id, err := s.store.Create(ctx, data, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to persist ruins run: %w", err)
	}
	sess.SetID(id)
	if err := s.manager.Register(sess); err != nil {
		return nil, err
	}

	metrics.RuinsEntered.WithLabelValues(cfg.Key).Inc()
	if err := s.bus.Publish(ctx, event.NewRuinsEnteredEvent(playerID, cfg.Key)); err != nil {
		logger.FromContext(ctx).Warn("ruins entered event failed", "player_id", playerID, "error", err)
	}
	return sess, nil
}

// Explore reveals the next room. Costs energy; an insufficient balance aborts
// before any room mutation.
func (s *service) Explore(ctx context.Context, playerID int64) (domain.Room, error) {
	sess, err := s.manager.Get(playerID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.consume(ctx, sess, playerID, costExplore); err != nil {
		return domain.Room{}, err
	}

	s.rngMu.Lock()
	room, err := sess.Reveal(s.rng, s.now())
	s.rngMu.Unlock()
	if err != nil {
		return domain.Room{}, err
	}
	metrics.RuinsRoomsCleared.Inc()

	return room, s.persist(ctx, sess)
}

// Search loots the current room. Searching the final room ends the run.
func (s *service) Search(ctx context.Context, playerID int64) (*SearchResult, error) {
	sess, err := s.manager.Get(playerID)
	if err != nil {
		return nil, err
	}
	if err := s.consume(ctx, sess, playerID, costSearch); err != nil {
		return nil, err
	}

	tree, finalRoom, err := sess.Search(s.now())
	if err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	bag, rollErr := tree.Roll(s.rng, 1)
	s.rngMu.Unlock()
	if rollErr != nil {
		return nil, fmt.Errorf("failed to roll room loot: %w", rollErr)
	}
	metrics.LootRolls.WithLabelValues("ruins").Inc()

	s.grant(ctx, playerID, bag)
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}

	result := &SearchResult{Loot: bag, FinalRoom: finalRoom}
	if finalRoom {
		result.RunEnded = true
		s.close(ctx, sess)
	}
	return result, nil
}

// Sneak attempts to bypass the current room's guardian. Failure forces the
// fight path: the guardian battle starts immediately.
func (s *service) Sneak(ctx context.Context, playerID int64) (bool, error) {
	sess, err := s.manager.Get(playerID)
	if err != nil {
		return false, err
	}
	if err := s.consume(ctx, sess, playerID, costSneak); err != nil {
		return false, err
	}

	rank, err := s.ranks.Rank(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to get rank for player %d: %w", playerID, err)
	}
	chance := sneakBaseChance + sneakRankBonus*utils.DiminishingReturns(float64(rank), sneakRankScale)

	s.rngMu.Lock()
	success, err := sess.Sneak(s.rng, chance, s.now())
	s.rngMu.Unlock()
	if err != nil {
		return false, err
	}

	if !success {
		if err := s.startGuardianFight(ctx, sess, playerID); err != nil {
			return false, err
		}
	}
	return success, s.persist(ctx, sess)
}

// Fight processes one round against the current room's guardian, starting
// the embedded battle on the first call. Losing the fight ends the run.
func (s *service) Fight(ctx context.Context, playerID int64) (*FightResult, error) {
	sess, err := s.manager.Get(playerID)
	if err != nil {
		return nil, err
	}

	room := sess.CurrentRoom()
	if room.Kind != domain.RoomGuarded || room.Guardian == domain.GuardianFinished {
		return nil, fmt.Errorf("%w: no guardian to fight", domain.ErrPrerequisiteNotMet)
	}
	if err := s.consume(ctx, sess, playerID, costFight); err != nil {
		return nil, err
	}

	battleID := sess.GuardianBattleID()
	if battleID == domain.IDUncreated {
		if err := s.startGuardianFight(ctx, sess, playerID); err != nil {
			return nil, err
		}
		battleID = sess.GuardianBattleID()
	}

	state := sess.State()
	round, err := s.battles.ProcessRound(ctx, battleID, playerID, state.PlayerName)
	if err != nil {
		return nil, err
	}

	result := &FightResult{Round: round, GuardianKilled: round.Killed}
	now := s.now()
	switch {
	case round.Killed:
		sess.FinishGuardian(now)
	case round.Finished:
		// Out of rounds with the guardian alive: thrown out of the ruins.
		sess.End(now)
		result.RunEnded = true
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	if result.RunEnded {
		s.close(ctx, sess)
	}
	return result, nil
}

// Leave ends the run explicitly, finalizing any in-progress guardian battle.
func (s *service) Leave(ctx context.Context, playerID int64) error {
	sess, err := s.manager.Get(playerID)
	if err != nil {
		return err
	}

	if battleID := sess.GuardianBattleID(); battleID != domain.IDUncreated {
		if _, err := s.battles.Finish(ctx, battleID); err != nil {
			logger.FromContext(ctx).Warn("failed to finalize guardian battle on leave", "battle_id", battleID, "error", err)
		}
	}
	sess.End(s.now())
	if err := s.persist(ctx, sess); err != nil {
		return err
	}
	s.close(ctx, sess)
	return nil
}

// Current returns the player's live session.
func (s *service) Current(_ context.Context, playerID int64) (*Session, error) {
	return s.manager.Get(playerID)
}

// startGuardianFight opens the embedded battle for the current room. The
// attacker allowlist pins the fight to the run's owner.
func (s *service) startGuardianFight(ctx context.Context, sess *Session, playerID int64) error {
	room := sess.CurrentRoom()
	def, err := s.content.Beast(room.BeastKey)
	if err != nil {
		return err
	}
	cfg := sess.Config()
	b, err := s.battles.Start(ctx, def, battle.Options{
		MaxRounds:        cfg.GuardianRounds,
		AllowedAttackers: []int64{playerID},
	})
	if err != nil {
		return fmt.Errorf("failed to start guardian battle: %w", err)
	}
	return sess.BeginGuardianFight(b.ID(), s.now())
}

// consume debits the energy cost of one action, failing closed before any
// session mutation.
func (s *service) consume(ctx context.Context, sess *Session, playerID int64, baseCost int) error {
	cost := sess.Config().EnergyCost(baseCost)
	ok, err := s.energy.Consume(ctx, playerID, cost)
	if err != nil {
		return fmt.Errorf("failed to debit energy for player %d: %w", playerID, err)
	}
	if !ok {
		return fmt.Errorf("%w: player %d needs %d energy", domain.ErrInsufficientEnergy, playerID, cost)
	}
	return nil
}

// grant applies a searched-room bag to the owner. Failures are logged, not
// propagated: the room is already searched and the action must not replay.
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

// close unregisters an ended run and publishes the terminal event.
func (s *service) close(ctx context.Context, sess *Session) {
	state := sess.State()
	s.manager.Remove(state.PlayerID)
	if err := s.bus.Publish(ctx, event.NewRuinsLeftEvent(state.PlayerID, state.TypeKey, sess.Depth(), sess.RoomsSearched())); err != nil {
		logger.FromContext(ctx).Warn("ruins left event failed", "player_id", state.PlayerID, "error", err)
	}
}

func (s *service) persist(ctx context.Context, sess *Session) error {
	data, err := sess.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize ruins run %d: %w", sess.ID(), err)
	}
	if err := s.store.Update(ctx, sess.ID(), data, sess.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to persist ruins run %d: %w", sess.ID(), err)
	}
	return nil
}
