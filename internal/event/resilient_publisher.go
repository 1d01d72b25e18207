package event

import (
	"context"
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/logger"
)

// retryEntry tracks an event moving through the retry queue.
type retryEntry struct {
	event   Event
	attempt int
}

// ResilientPublisher wraps a Bus with retrying publishes. Failed events move
// to a bounded retry queue serviced by a background worker with exponential
// backoff; events that exhaust their retries, or that arrive while the queue
// is full, are appended to a dead-letter file for later replay.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	wg         sync.WaitGroup
}

// NewResilientPublisher creates a publisher over the given bus and starts its
// retry worker. retryDelay is the base backoff; attempt n waits
// retryDelay * 2^(n-1).
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	deadLetter, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: deadLetter,
		shutdown:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.retryWorker()

	return p, nil
}

// PublishWithRetry publishes the event, queueing it for background retry on
// failure. The caller is decoupled from the retry outcome.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	logger.Warn(LogMsgEventPublishFailed,
		"event_type", event.Type,
		"error", err)

	select {
	case p.retryQueue <- retryEntry{event: event, attempt: 1}:
	default:
		logger.Warn(LogMsgRetryQueueFull, "event_type", event.Type)
		p.writeDeadLetter(event, 0, err)
	}
}

// Publish satisfies Bus. Failures are absorbed by the retry machinery, so
// the returned error is always nil.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	p.PublishWithRetry(ctx, event)
	return nil
}

// Subscribe delegates to the inner bus.
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

// Shutdown stops the retry worker after it drains the queue. Drained events
// get one final publish attempt; failures go to the dead-letter file.
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	close(p.shutdown)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		err = ctx.Err()
	}

	if closeErr := p.deadLetter.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	for {
		select {
		case entry := <-p.retryQueue:
			p.processRetry(entry)
		case <-p.shutdown:
			p.drainQueue()
			return
		}
	}
}

func (p *ResilientPublisher) processRetry(entry retryEntry) {
	// The request context may be long gone; retries run detached.
	ctx := context.Background()

	select {
	case <-time.After(CalculateRetryDelay(p.retryDelay, entry.attempt)):
	case <-p.shutdown:
	}

	err := p.bus.Publish(ctx, entry.event)
	if err == nil {
		logger.Info(LogMsgEventRetrySucceeded,
			"event_type", entry.event.Type,
			"attempt", entry.attempt)
		return
	}

	if entry.attempt >= p.maxRetries {
		logger.Warn(LogMsgEventRetryExhausted,
			"event_type", entry.event.Type,
			"attempts", entry.attempt,
			"error", err)
		p.writeDeadLetter(entry.event, entry.attempt, err)
		return
	}

	logger.Warn(LogMsgEventRetryFailed,
		"event_type", entry.event.Type,
		"attempt", entry.attempt,
		"error", err)

	entry.attempt++
	select {
	case p.retryQueue <- entry:
	default:
		logger.Warn(LogMsgRetryQueueFull, "event_type", entry.event.Type)
		p.writeDeadLetter(entry.event, entry.attempt, err)
	}
}

// drainQueue gives every queued event one last attempt without backoff.
func (p *ResilientPublisher) drainQueue() {
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			drained++
			if err := p.bus.Publish(context.Background(), entry.event); err != nil {
				logger.Warn(LogMsgEventDroppedShutdown,
					"event_type", entry.event.Type,
					"error", err)
				p.writeDeadLetter(entry.event, entry.attempt, err)
			}
		default:
			if drained > 0 {
				logger.Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

func (p *ResilientPublisher) writeDeadLetter(event Event, attempts int, lastErr error) {
	if err := p.deadLetter.Write(event, attempts, lastErr); err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed,
			"event_type", event.Type,
			"error", err)
	}
}
