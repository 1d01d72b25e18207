// Package ruins implements the per-player exploration session: a procedurally
// revealed room sequence with guarded rooms, embedded guardian battles, sneak
// attempts and energy-gated actions.
package ruins

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
)

// TypeConfig is the immutable parameter table of one ruins type, supplied by
// the content source.
type TypeConfig struct {
	Key            string
	Name           string
	EnergyRate     int            // multiplier applied to every action's base cost
	MinDepth       int            // earliest depth the final room may appear at
	MaxDepth       int            // depth at which the final room is forced
	GuardChance    float64        // percent chance a revealed room is guarded
	GuardianKeys   map[string]int // weighted guardian beast pool
	GuardianRounds int            // round cap of an embedded guardian fight
	RoomLoot       loot.Loot      // searched regular room
	FinalLoot      loot.Loot      // searched final room
}

// Base energy costs per action, before the type's EnergyRate multiplier.
const (
	costExplore = 2
	costSearch  = 1
	costSneak   = 1
	costFight   = 2
)

// EnergyCost returns the energy debit for one action of the given base cost.
func (c TypeConfig) EnergyCost(base int) int {
	rate := c.EnergyRate
	if rate < 1 {
		rate = 1
	}
	return base * rate
}

func (c TypeConfig) validate() error {
	if c.Key == "" {
		return fmt.Errorf("%w: ruins type without key", domain.ErrInvalidConfiguration)
	}
	if c.MinDepth < 1 || c.MaxDepth < c.MinDepth {
		return fmt.Errorf("%w: ruins type %q depth range [%d,%d]", domain.ErrInvalidConfiguration, c.Key, c.MinDepth, c.MaxDepth)
	}
	if c.GuardChance < 0 || c.GuardChance > 100 {
		return fmt.Errorf("%w: ruins type %q guard chance %v", domain.ErrInvalidConfiguration, c.Key, c.GuardChance)
	}
	if c.GuardChance > 0 && len(c.GuardianKeys) == 0 {
		return fmt.Errorf("%w: ruins type %q guards rooms but has no guardian pool", domain.ErrInvalidConfiguration, c.Key)
	}
	return nil
}

// Session is one player's exploration run. Although the command layer
// serializes interactions per user, the session carries its own lock so a
// double-dispatched action cannot corrupt room state.
type Session struct {
	mu sync.Mutex

	id         int64
	cfg        TypeConfig
	state      domain.RuinsState
	finalDepth int

	createdAt time.Time
	updatedAt time.Time
}

// NewSession opens a run at the entrance room. The final room depth is drawn
// up front so the whole run's shape is fixed at entry.
func NewSession(playerID int64, playerName string, cfg TypeConfig, rng *rand.Rand, now time.Time) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	finalDepth := cfg.MinDepth
	if cfg.MaxDepth > cfg.MinDepth {
		finalDepth += rng.Intn(cfg.MaxDepth - cfg.MinDepth + 1)
	}
	return &Session{
		id:  domain.IDUncreated,
		cfg: cfg,
		state: domain.RuinsState{
			PlayerID:   playerID,
			PlayerName: playerName,
			TypeKey:    cfg.Key,
			Rooms: []domain.Room{{
				Depth: 0,
				Kind:  domain.RoomUnguarded,
			}},
		},
		finalDepth: finalDepth,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ID returns the persisted identity, or domain.IDUncreated before the first
// persist.
func (s *Session) ID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// SetID records the store-assigned identity after the first persist.
func (s *Session) SetID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// PlayerID returns the owning player.
func (s *Session) PlayerID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PlayerID
}

// Config returns the ruins type parameters of this run.
func (s *Session) Config() TypeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Ended reports whether the run reached a terminal state.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ended
}

// UpdatedAt returns the time of the last transition.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// CurrentRoom returns a copy of the deepest revealed room.
func (s *Session) CurrentRoom() domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.CurrentRoom()
}

// passableLocked reports whether the current room lets the player act beyond
// it: unguarded, or its guardian dealt with.
func (s *Session) passableLocked() bool {
	room := s.state.CurrentRoom()
	return room.Kind == domain.RoomUnguarded || room.Guardian == domain.GuardianFinished
}

// Reveal advances to the next room, generating it. The current room must be
// passable and not the final one.
func (s *Session) Reveal(rng *rand.Rand, now time.Time) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ended {
		return domain.Room{}, fmt.Errorf("%w: run already ended", domain.ErrPrerequisiteNotMet)
	}
	current := s.state.CurrentRoom()
	if current.FinalRoom {
		return domain.Room{}, fmt.Errorf("%w: the final room has no exit to explore", domain.ErrPrerequisiteNotMet)
	}
	if !s.passableLocked() {
		return domain.Room{}, fmt.Errorf("%w: a guardian blocks the way", domain.ErrPrerequisiteNotMet)
	}

	room := domain.Room{
		Depth:     current.Depth + 1,
		Kind:      domain.RoomUnguarded,
		FinalRoom: current.Depth+1 >= s.finalDepth,
	}
	if rng.Float64()*100 < s.cfg.GuardChance {
		pool := loot.NewWeightedChoice[string]()
		for key, weight := range s.cfg.GuardianKeys {
			pool.Set(key, weight)
		}
		if key, ok := pool.Choose(rng); ok {
			room.Kind = domain.RoomGuarded
			room.Guardian = domain.GuardianNotStarted
			room.BeastKey = key
		}
	}

	s.state.Rooms = append(s.state.Rooms, room)
	s.updatedAt = now
	return room, nil
}

// Search marks the current room searched and reports which loot table applies.
// Searching the final room ends the run.
func (s *Session) Search(now time.Time) (tree loot.Loot, finalRoom bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ended {
		return nil, false, fmt.Errorf("%w: run already ended", domain.ErrPrerequisiteNotMet)
	}
	room := s.state.CurrentRoom()
	if !s.passableLocked() {
		return nil, false, fmt.Errorf("%w: a guardian blocks the way", domain.ErrPrerequisiteNotMet)
	}
	if room.Searched {
		return nil, false, fmt.Errorf("%w: depth %d", domain.ErrRoomSearched, room.Depth)
	}

	room.Searched = true
	s.updatedAt = now
	tree = s.cfg.RoomLoot
	if room.FinalRoom {
		tree = s.cfg.FinalLoot
		s.state.Ended = true
	}
	if tree == nil {
		tree = loot.NewEmpty()
	}
	return tree, room.FinalRoom, nil
}

// Sneak attempts to slip past the current room's guardian. On success the
// guardian is bypassed; on failure the fight path is forced. The chance comes
// from the caller since rank scaling is a collaborator concern.
func (s *Session) Sneak(rng *rand.Rand, chance float64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ended {
		return false, fmt.Errorf("%w: run already ended", domain.ErrPrerequisiteNotMet)
	}
	room := s.state.CurrentRoom()
	if room.Kind != domain.RoomGuarded || room.Guardian != domain.GuardianNotStarted {
		return false, fmt.Errorf("%w: nothing to sneak past", domain.ErrPrerequisiteNotMet)
	}

	s.updatedAt = now
	if rng.Float64() < chance {
		room.Guardian = domain.GuardianFinished
		return true, nil
	}
	room.Guardian = domain.GuardianStarted
	return false, nil
}

// BeginGuardianFight transitions the guardian to started and records the
// embedded battle id. A failed sneak has already started the fight; in that
// case only the battle id is attached.
func (s *Session) BeginGuardianFight(battleID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ended {
		return fmt.Errorf("%w: run already ended", domain.ErrPrerequisiteNotMet)
	}
	room := s.state.CurrentRoom()
	if room.Kind != domain.RoomGuarded || room.Guardian == domain.GuardianFinished {
		return fmt.Errorf("%w: no guardian to fight", domain.ErrPrerequisiteNotMet)
	}
	room.Guardian = domain.GuardianStarted
	room.BattleID = battleID
	s.updatedAt = now
	return nil
}

// GuardianBattleID returns the embedded battle id of the current room, or
// domain.IDUncreated when no fight has started.
func (s *Session) GuardianBattleID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.state.CurrentRoom()
	if room.Kind != domain.RoomGuarded || room.Guardian != domain.GuardianStarted {
		return domain.IDUncreated
	}
	return room.BattleID
}

// FinishGuardian marks the current room's guardian defeated.
func (s *Session) FinishGuardian(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.state.CurrentRoom()
	if room.Kind == domain.RoomGuarded {
		room.Guardian = domain.GuardianFinished
	}
	s.updatedAt = now
}

// End transitions the run to its terminal state. Returns false if it already
// ended.
func (s *Session) End(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Ended {
		return false
	}
	s.state.Ended = true
	s.updatedAt = now
	return true
}

// Depth returns the depth of the deepest revealed room.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentRoom().Depth
}

// RoomsSearched counts searched rooms across the run.
func (s *Session) RoomsSearched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	searched := 0
	for _, room := range s.state.Rooms {
		if room.Searched {
			searched++
		}
	}
	return searched
}

// State snapshots the persistable form.
func (s *Session) State() domain.RuinsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Rooms = make([]domain.Room, len(s.state.Rooms))
	copy(state.Rooms, s.state.Rooms)
	return state
}

// Serialize returns the opaque blob handed to the session store.
func (s *Session) Serialize() ([]byte, error) {
	return json.Marshal(s.State())
}
