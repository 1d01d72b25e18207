package battle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halbrec/RuinfangBot_Go/internal/beast"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
)

// mockSessionStore keeps blobs in memory and counts writes.
type mockSessionStore struct {
	mu      sync.Mutex
	nextID  int64
	blobs   map[int64][]byte
	updates int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{nextID: 1, blobs: make(map[int64][]byte)}
}

func (m *mockSessionStore) Create(_ context.Context, data []byte, _, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.blobs[id] = data
	return id, nil
}

func (m *mockSessionStore) Update(_ context.Context, id int64, data []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return domain.ErrSessionNotFound
	}
	m.blobs[id] = data
	m.updates++
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

func (m *mockSessionStore) List(_ context.Context) ([]repository.SessionRecord, error) {
	return nil, nil
}

// mockPowerSource returns a fixed power per player.
type mockPowerSource struct {
	powers map[int64]int
	err    error
}

func (m *mockPowerSource) CombatPower(_ context.Context, playerID int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.powers[playerID], nil
}

// mockRewardSink records what each player received.
type mockRewardSink struct {
	mu         sync.Mutex
	experience map[int64]int
	loot       map[int64]domain.Bag
	expCalls   int
}

func newMockRewardSink() *mockRewardSink {
	return &mockRewardSink{experience: make(map[int64]int), loot: make(map[int64]domain.Bag)}
}

func (m *mockRewardSink) AddExperience(_ context.Context, playerID int64, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experience[playerID] += amount
	m.expCalls++
	return nil
}

func (m *mockRewardSink) AcquireLoot(_ context.Context, playerID int64, bag domain.Bag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loot[playerID] == nil {
		m.loot[playerID] = make(domain.Bag)
	}
	m.loot[playerID].Merge(bag)
	return nil
}

func boneDef(health int) beast.Definition {
	tree, _ := loot.NewFixed("bone", 4)
	return beast.Definition{
		Key:        "skeleton",
		Name:       "Skeleton",
		Tier:       beast.TierNormal,
		Health:     health,
		Initiative: 5,
		Experience: 100,
		Loot:       tree,
	}
}

type fixture struct {
	svc   Service
	store *mockSessionStore
	power *mockPowerSource
	sink  *mockRewardSink
	bus   *event.MemoryBus
}

func newFixture(t *testing.T, powers map[int64]int) *fixture {
	t.Helper()
	store := newMockSessionStore()
	power := &mockPowerSource{powers: powers}
	sink := newMockRewardSink()
	bus := event.NewMemoryBus()
	manager, err := NewManager(8)
	require.NoError(t, err)
	svc := NewService(store, manager, power, sink, bus, loot.NewDistributor(), 42)
	return &fixture{svc: svc, store: store, power: power, sink: sink, bus: bus}
}

func TestStartPersistsAndRegistersBattle(t *testing.T) {
	f := newFixture(t, nil)

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{})
	require.NoError(t, err)

	assert.NotEqual(t, domain.IDUncreated, b.ID())
	got, err := f.svc.Get(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestKillDistributesLootByDamage(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 30, 2: 10})

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{})
	require.NoError(t, err)

	res, err := f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)
	assert.False(t, res.Finished)

	res, err = f.svc.ProcessRound(context.Background(), b.ID(), 2, "berg")
	require.NoError(t, err)
	require.True(t, res.Finished)
	assert.True(t, res.Killed)
	assert.Equal(t, 40, res.TotalDamage)

	// Four bones over a 30/10 damage split: exact proportional shares.
	assert.Equal(t, 3, res.Distribution[1]["bone"])
	assert.Equal(t, 1, res.Distribution[2]["bone"])

	// Experience uses ceiling shares.
	assert.Equal(t, 75, f.sink.experience[1])
	assert.Equal(t, 25, f.sink.experience[2])
	assert.Equal(t, 3, f.sink.loot[1]["bone"])
	assert.Equal(t, 1, f.sink.loot[2]["bone"])
}

func TestRoundCapWithoutKillGrantsNothing(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 1})

	b, err := f.svc.Start(context.Background(), boneDef(1000), Options{MaxRounds: 2})
	require.NoError(t, err)

	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)
	res, err := f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)

	require.True(t, res.Finished)
	assert.False(t, res.Killed)
	assert.Empty(t, res.Loot)
	assert.Empty(t, res.Distribution)
	assert.Empty(t, f.sink.experience)
	assert.Empty(t, f.sink.loot)
}

func TestUnlimitedHealthGrantsLootOnExplicitFinish(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 50})

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{UnlimitedHealth: true})
	require.NoError(t, err)

	res, err := f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)
	assert.False(t, res.Finished, "punching bag never self-terminates")

	finished, err := f.svc.Finish(context.Background(), b.ID())
	require.NoError(t, err)
	assert.True(t, finished)

	assert.Equal(t, 4, f.sink.loot[1]["bone"])
	assert.Equal(t, 100, f.sink.experience[1])
}

func TestFinishTwiceAppliesRewardsOnce(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 100})

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{UnlimitedHealth: true})
	require.NoError(t, err)
	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)

	finished, err := f.svc.Finish(context.Background(), b.ID())
	require.NoError(t, err)
	assert.True(t, finished)

	finished, err = f.svc.Finish(context.Background(), b.ID())
	require.NoError(t, err)
	assert.False(t, finished)

	assert.Equal(t, 1, f.sink.expCalls)
}

func TestAttackAfterFinishFails(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 50})

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{})
	require.NoError(t, err)
	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)

	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	assert.ErrorIs(t, err, domain.ErrBattleFinished)
}

func TestAllowlistRejectsOutsider(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 10, 2: 10})

	b, err := f.svc.Start(context.Background(), boneDef(1000), Options{AllowedAttackers: []int64{1}})
	require.NoError(t, err)

	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 2, "berg")
	assert.ErrorIs(t, err, domain.ErrPrerequisiteNotMet)

	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	assert.NoError(t, err)
}

func TestPowerSourceFailurePropagates(t *testing.T) {
	f := newFixture(t, nil)
	f.power.err = errors.New("profile service down")

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{})
	require.NoError(t, err)

	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.Error(t, err)
	assert.Empty(t, b.Rounds(), "round must not be recorded when power lookup fails")
}

func TestProcessRoundUnknownBattle(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.ProcessRound(context.Background(), 999, 1, "alva")
	assert.ErrorIs(t, err, domain.ErrBattleNotFound)
}

func TestFinishedEventPublished(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 50})

	var published []event.Type
	var mu sync.Mutex
	record := func(_ context.Context, evt event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, evt.Type)
		return nil
	}
	f.bus.Subscribe(event.BattleStarted, record)
	f.bus.Subscribe(event.BattleFinished, record)
	f.bus.Subscribe(event.LootDistributed, record)

	b, err := f.svc.Start(context.Background(), boneDef(40), Options{})
	require.NoError(t, err)
	_, err = f.svc.ProcessRound(context.Background(), b.ID(), 1, "alva")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []event.Type{event.BattleStarted, event.BattleFinished, event.LootDistributed}, published)
}

func TestConcurrentAttacksFinishExactlyOnce(t *testing.T) {
	const attackers = 20
	powers := make(map[int64]int, attackers)
	for i := int64(1); i <= attackers; i++ {
		powers[i] = 10
	}
	f := newFixture(t, powers)

	b, err := f.svc.Start(context.Background(), boneDef(100), Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	finishes := 0
	rejected := 0
	for i := int64(1); i <= attackers; i++ {
		wg.Add(1)
		go func(playerID int64) {
			defer wg.Done()
			res, err := f.svc.ProcessRound(context.Background(), b.ID(), playerID, "raider")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && res.Finished:
				finishes++
			case errors.Is(err, domain.ErrBattleFinished):
				rejected++
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, finishes, "exactly one attack may observe the terminal transition")
	assert.Equal(t, 10, len(b.Rounds()), "100 health at 10 damage per round")
	assert.Equal(t, attackers-10, rejected)
	assert.True(t, b.Finished())
}
