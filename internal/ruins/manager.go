package ruins

import (
	"fmt"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// Manager is the process-scoped registry of live exploration runs, keyed by
// the owning player. One player explores at most one ruins at a time.
type Manager struct {
	mu       sync.RWMutex
	byPlayer map[int64]*Session
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{byPlayer: make(map[int64]*Session)}
}

// Register indexes a session by its owning player. Fails when the player
// already has a live run.
func (m *Manager) Register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	playerID := s.PlayerID()
	if _, ok := m.byPlayer[playerID]; ok {
		return fmt.Errorf("%w: player %d", domain.ErrSessionExists, playerID)
	}
	m.byPlayer[playerID] = s
	return nil
}

// Get returns the live session of a player.
func (m *Manager) Get(playerID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byPlayer[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %d has no ruins run", domain.ErrSessionNotFound, playerID)
	}
	return s, nil
}

// Remove drops a player's session from the registry.
func (m *Manager) Remove(playerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byPlayer, playerID)
}

// Active returns all live sessions.
func (m *Manager) Active() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]*Session, 0, len(m.byPlayer))
	for _, s := range m.byPlayer {
		sessions = append(sessions, s)
	}
	return sessions
}

// PurgeOlderThan removes sessions whose last transition is older than the
// cutoff, returning their ids so the caller can delete the persisted rows.
func (m *Manager) PurgeOlderThan(cutoff time.Time) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged []int64
	for playerID, s := range m.byPlayer {
		if s.UpdatedAt().Before(cutoff) {
			purged = append(purged, s.ID())
			delete(m.byPlayer, playerID)
		}
	}
	return purged
}
