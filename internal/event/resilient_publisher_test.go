package event

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBus counts publishes and fails the attempts its predicate selects.
type flakyBus struct {
	mu           sync.Mutex
	calls        []Event
	failAttempt  func(attempt int) bool
	publishDelay time.Duration
}

func (b *flakyBus) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	b.calls = append(b.calls, event)
	attempt := len(b.calls)
	b.mu.Unlock()

	if b.publishDelay > 0 {
		time.Sleep(b.publishDelay)
	}
	if b.failAttempt != nil && b.failAttempt(attempt) {
		return errors.New("bus unavailable")
	}
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func deadLetterPath(t *testing.T) string {
	t.Helper()
	return t.TempDir() + "/dead_letter_events.jsonl"
}

func TestPublishWithRetryFirstAttemptSucceeds(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{}

	rp, err := NewResilientPublisher(bus, 3, 100*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	rp.PublishWithRetry(context.Background(), NewBattleStartedEvent(1, "skeleton", "Skeleton", "common"))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, bus.callCount())

	content, _ := os.ReadFile(path)
	assert.Empty(t, content, "nothing should be dead-lettered")
}

func TestPublishWithRetryRecoversAfterFailure(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{failAttempt: func(attempt int) bool { return attempt == 1 }}

	rp, err := NewResilientPublisher(bus, 3, 100*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	rp.PublishWithRetry(context.Background(), NewQuestCompletedEvent(1, "bone_collector", 3))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 2, bus.callCount(), "initial attempt plus one retry")

	content, _ := os.ReadFile(path)
	assert.Empty(t, content, "a recovered event must not be dead-lettered")
}

func TestPublishWithRetryExhaustionDeadLetters(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{failAttempt: func(int) bool { return true }}

	rp, err := NewResilientPublisher(bus, 3, 50*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	rp.PublishWithRetry(context.Background(), NewChestOpenedEvent(7, "wooden"))

	// 50ms + 100ms + 200ms of backoff plus processing slack.
	time.Sleep(500 * time.Millisecond)

	assert.GreaterOrEqual(t, bus.callCount(), 4, "initial attempt plus every retry")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	var entry struct {
		Timestamp string `json:"timestamp"`
		Event     struct {
			Type string `json:"type"`
		} `json:"event"`
		Attempts  int    `json:"attempts"`
		LastError string `json:"last_error"`
	}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, string(ChestOpened), entry.Event.Type)
	assert.NotEmpty(t, entry.LastError)
	assert.GreaterOrEqual(t, entry.Attempts, 1)
}

func TestPublishWithRetryQueueOverflowDeadLetters(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{
		failAttempt:  func(int) bool { return true },
		publishDelay: 50 * time.Millisecond, // keeps the worker busy so the queue fills
	}

	rp := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, 5),
		maxRetries: 3,
		retryDelay: 50 * time.Millisecond,
		shutdown:   make(chan struct{}),
	}
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	rp.deadLetter = dl

	rp.wg.Add(1)
	go rp.retryWorker()
	defer rp.Shutdown(context.Background())

	for i := 0; i < 10; i++ {
		rp.PublishWithRetry(context.Background(), NewRuinsEnteredEvent(int64(i), "sunken_crypt"))
	}
	time.Sleep(200 * time.Millisecond)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, content, "overflow must dead-letter instead of blocking")
}

func TestShutdownDrainsPendingRetries(t *testing.T) {
	path := deadLetterPath(t)

	var calls int32
	bus := &flakyBus{failAttempt: func(int) bool {
		return atomic.AddInt32(&calls, 1) <= 2
	}}

	rp, err := NewResilientPublisher(bus, 5, 50*time.Millisecond, path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rp.PublishWithRetry(context.Background(), NewRuinsLeftEvent(int64(i), "sunken_crypt", 2, 1))
	}
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	assert.GreaterOrEqual(t, bus.callCount(), 3, "queued events get a final attempt during drain")
}

func TestRetryDelayDoublesPerAttempt(t *testing.T) {
	path := deadLetterPath(t)

	var mu sync.Mutex
	var attempts []time.Time
	bus := &flakyBus{failAttempt: func(attempt int) bool {
		mu.Lock()
		attempts = append(attempts, time.Now())
		mu.Unlock()
		return attempt < 4
	}}

	baseDelay := 100 * time.Millisecond
	rp, err := NewResilientPublisher(bus, 5, baseDelay, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	rp.PublishWithRetry(context.Background(), NewBattleFinishedEvent(1, "Skeleton", true, 3, 40, nil))
	time.Sleep(1 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(attempts), 3)

	// Tolerances absorb scheduler jitter.
	assert.InDelta(t, baseDelay.Milliseconds(), attempts[1].Sub(attempts[0]).Milliseconds(), 50)
	assert.InDelta(t, (2 * baseDelay).Milliseconds(), attempts[2].Sub(attempts[1]).Milliseconds(), 50)
}

func TestPublishWithRetryConcurrent(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{}

	rp, err := NewResilientPublisher(bus, 3, 50*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	const goroutines = 10
	const eventsEach = 5

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < eventsEach; n++ {
				rp.PublishWithRetry(context.Background(), NewChestOpenedEvent(int64(g), "wooden"))
			}
		}(g)
	}
	wg.Wait()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, goroutines*eventsEach, bus.callCount())
}
