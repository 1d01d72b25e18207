package battle

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// FinishedSummary is the lightweight record kept after a battle is purged,
// so result lookups keep working for a while without the full session.
type FinishedSummary struct {
	ID           int64
	BeastName    string
	Killed       bool
	TotalDamage  int
	Loot         domain.Bag
	Distribution map[int64]domain.Bag
	FinishedAt   time.Time
}

// Manager is the process-scoped registry of live battles. Exactly one
// in-memory instance exists per id; mutation always goes through that
// instance, never through a second load from storage.
type Manager struct {
	mu     sync.RWMutex
	byID   map[int64]*Battle
	recent *lru.Cache[int64, FinishedSummary]
}

// NewManager creates a registry. recentSize bounds the purged-battle summary
// cache.
func NewManager(recentSize int) (*Manager, error) {
	recent, err := lru.New[int64, FinishedSummary](recentSize)
	if err != nil {
		return nil, fmt.Errorf("battle summary cache: %w", err)
	}
	return &Manager{
		byID:   make(map[int64]*Battle),
		recent: recent,
	}, nil
}

// Register indexes a persisted battle by id.
func (m *Manager) Register(b *Battle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[b.ID()] = b
}

// Get returns the live battle for the id.
func (m *Manager) Get(id int64) (*Battle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrBattleNotFound, id)
	}
	return b, nil
}

// Remove drops a battle from the registry, caching a summary if it finished.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id int64) {
	b, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	if b.Finished() {
		m.recent.Add(id, FinishedSummary{
			ID:           id,
			BeastName:    b.Beast().Name,
			Killed:       b.Killed(),
			TotalDamage:  b.TotalDamage(),
			Loot:         b.Loot(),
			Distribution: b.Distribution(),
			FinishedAt:   b.UpdatedAt(),
		})
	}
}

// RecentSummary looks up the summary of a purged finished battle.
func (m *Manager) RecentSummary(id int64) (FinishedSummary, bool) {
	return m.recent.Get(id)
}

// Active returns all live battles.
func (m *Manager) Active() []*Battle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	battles := make([]*Battle, 0, len(m.byID))
	for _, b := range m.byID {
		battles = append(battles, b)
	}
	return battles
}

// PurgeOlderThan removes battles whose last transition is older than the
// cutoff, returning their ids so the caller can delete the persisted rows.
func (m *Manager) PurgeOlderThan(cutoff time.Time) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged []int64
	for id, b := range m.byID {
		if b.UpdatedAt().Before(cutoff) {
			purged = append(purged, id)
		}
	}
	for _, id := range purged {
		m.removeLocked(id)
	}
	return purged
}
