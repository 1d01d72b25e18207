package quest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
)

type memStore struct {
	mu     sync.Mutex
	nextID int64
	blobs  map[int64][]byte
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, blobs: make(map[int64][]byte)}
}

func (m *memStore) Create(_ context.Context, data []byte, _, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.blobs[id] = data
	return id, nil
}

func (m *memStore) Update(_ context.Context, id int64, data []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

func (m *memStore) List(_ context.Context) ([]repository.SessionRecord, error) {
	return nil, nil
}

type recordingSink struct {
	mu         sync.Mutex
	experience map[int64]int
	loot       map[int64]domain.Bag
	lootCalls  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{experience: make(map[int64]int), loot: make(map[int64]domain.Bag)}
}

func (s *recordingSink) AddExperience(_ context.Context, playerID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experience[playerID] += amount
	return nil
}

func (s *recordingSink) AcquireLoot(_ context.Context, playerID int64, bag domain.Bag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loot[playerID] == nil {
		s.loot[playerID] = make(domain.Bag)
	}
	s.loot[playerID].Merge(bag)
	s.lootCalls++
	return nil
}

func gemTemplate(t *testing.T, kind Kind, goal int) Template {
	t.Helper()
	reward, err := loot.NewFixed("gem", 10)
	require.NoError(t, err)
	return Template{Key: "gem_hoard", Name: "The Gem Hoard", Kind: kind, Goal: goal, Reward: reward}
}

func newQuestFixture(t *testing.T) (Service, *recordingSink, *event.MemoryBus) {
	t.Helper()
	sink := newRecordingSink()
	bus := event.NewMemoryBus()
	svc := NewService(newMemStore(), sink, bus, loot.NewDistributor(), 3)
	return svc, sink, bus
}

func TestOpenRejectsDuplicatesAndBadTemplates(t *testing.T) {
	svc, _, _ := newQuestFixture(t)
	ctx := context.Background()

	q, err := svc.Open(ctx, gemTemplate(t, KindGeneric, 100))
	require.NoError(t, err)
	assert.NotEqual(t, domain.IDUncreated, q.ID())

	_, err = svc.Open(ctx, gemTemplate(t, KindGeneric, 100))
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	_, err = svc.Open(ctx, Template{Key: "zero_goal", Goal: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestContributeTracksProgress(t *testing.T) {
	svc, _, _ := newQuestFixture(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, gemTemplate(t, KindGeneric, 100))
	require.NoError(t, err)

	res, err := svc.Contribute(ctx, "gem_hoard", 1, 60)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, 60, res.Current)
	assert.Equal(t, 100, res.Goal)

	_, err = svc.Contribute(ctx, "gem_hoard", 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCompletionSplitsRewardByContribution(t *testing.T) {
	svc, sink, _ := newQuestFixture(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, gemTemplate(t, KindGeneric, 100))
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, "gem_hoard", 1, 60)
	require.NoError(t, err)
	res, err := svc.Contribute(ctx, "gem_hoard", 2, 40)
	require.NoError(t, err)

	require.True(t, res.Completed)
	assert.Equal(t, 10, res.Reward["gem"])
	assert.Equal(t, 6, res.Distribution[1]["gem"])
	assert.Equal(t, 4, res.Distribution[2]["gem"])
	assert.Equal(t, 6, sink.loot[1]["gem"])
	assert.Equal(t, 4, sink.loot[2]["gem"])

	assert.Empty(t, svc.Active(ctx), "completed quest leaves the live set")
	_, err = svc.Contribute(ctx, "gem_hoard", 3, 1)
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)
}

func TestCompletedEventPublishedOnce(t *testing.T) {
	svc, sink, bus := newQuestFixture(t)
	ctx := context.Background()

	completions := 0
	bus.Subscribe(event.QuestCompleted, func(_ context.Context, _ event.Event) error {
		completions++
		return nil
	})

	_, err := svc.Open(ctx, gemTemplate(t, KindGeneric, 10))
	require.NoError(t, err)
	_, err = svc.Contribute(ctx, "gem_hoard", 1, 25)
	require.NoError(t, err)

	assert.Equal(t, 1, completions)
	assert.Equal(t, 1, sink.lootCalls)
}

func TestConcurrentContributionsConserveReward(t *testing.T) {
	svc, sink, _ := newQuestFixture(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, gemTemplate(t, KindGeneric, 100))
	require.NoError(t, err)

	const contributors = 20
	var wg sync.WaitGroup
	for i := int64(1); i <= contributors; i++ {
		wg.Add(1)
		go func(playerID int64) {
			defer wg.Done()
			// Late arrivals race the completion and may be told the quest
			// is gone; that is the contract, not a failure.
			_, _ = svc.Contribute(ctx, "gem_hoard", playerID, 5)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, bag := range sink.loot {
		total += bag["gem"]
	}
	assert.Equal(t, 10, total, "reward rolled and distributed exactly once")
	assert.Empty(t, svc.Active(ctx))
}

func TestEventHandlerAdvancesSlayQuests(t *testing.T) {
	svc, _, bus := newQuestFixture(t)
	ctx := context.Background()
	NewEventHandler(svc).Register(bus)

	q, err := svc.Open(ctx, gemTemplate(t, KindSlay, 1000))
	require.NoError(t, err)

	err = bus.Publish(ctx, event.NewBattleFinishedEvent(1, "Skeleton", true, 2, 40, map[int64]int{1: 30, 2: 10}))
	require.NoError(t, err)

	current, _ := q.Progress()
	assert.Equal(t, 40, current)
	assert.Equal(t, map[int64]int{1: 30, 2: 10}, q.Contributions())

	// A battle that was not a kill advances nothing.
	err = bus.Publish(ctx, event.NewBattleFinishedEvent(2, "Skeleton", false, 3, 25, map[int64]int{3: 25}))
	require.NoError(t, err)
	current, _ = q.Progress()
	assert.Equal(t, 40, current)
}

func TestEventHandlerAdvancesExploreQuests(t *testing.T) {
	svc, _, bus := newQuestFixture(t)
	ctx := context.Background()
	NewEventHandler(svc).Register(bus)

	q, err := svc.Open(ctx, gemTemplate(t, KindExplore, 1000))
	require.NoError(t, err)

	err = bus.Publish(ctx, event.NewRuinsLeftEvent(7, "sunken_crypt", 4, 2))
	require.NoError(t, err)

	current, _ := q.Progress()
	assert.Equal(t, 6, current)
}
