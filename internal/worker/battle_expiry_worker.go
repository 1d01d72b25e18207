package worker

import (
	"context"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
)

// BattleExpiryWorker force-finishes battles that are still open after the
// idle timeout. Battles without a health ceiling never finish on their own,
// so the timer is the only thing that settles their loot.
type BattleExpiryWorker struct {
	BaseWorker
	battles battle.Service
	timeout time.Duration
}

// NewBattleExpiryWorker creates a new BattleExpiryWorker
func NewBattleExpiryWorker(battles battle.Service, timeout time.Duration) *BattleExpiryWorker {
	w := &BattleExpiryWorker{
		battles: battles,
		timeout: timeout,
	}
	w.init()
	return w
}

// Register subscribes the worker to battle lifecycle events.
func (w *BattleExpiryWorker) Register(bus event.Bus) {
	bus.Subscribe(event.BattleStarted, w.HandleBattleStarted)
	bus.Subscribe(event.BattleFinished, w.HandleBattleFinished)
}

// HandleBattleStarted schedules an expiry timer for the new battle.
func (w *BattleExpiryWorker) HandleBattleStarted(ctx context.Context, e event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[event.BattleStartedPayloadV1](e.Payload)
	if err != nil {
		log.Error(LogMsgFailedToDecodePayload, "eventType", e.Type, "error", err)
		return err
	}

	battleID := payload.BattleID
	log.Debug(LogMsgSchedulingBattleExpiry, "battleID", battleID, "timeout", w.timeout)

	timer := time.AfterFunc(w.timeout, func() {
		w.expire(battleID)
	})
	w.registerTimer(battleID, timer)
	return nil
}

// HandleBattleFinished cancels the pending timer for a settled battle.
func (w *BattleExpiryWorker) HandleBattleFinished(ctx context.Context, e event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[event.BattleFinishedPayloadV1](e.Payload)
	if err != nil {
		log.Error(LogMsgFailedToDecodePayload, "eventType", e.Type, "error", err)
		return err
	}

	w.stopTimer(payload.BattleID)
	log.Debug(LogMsgBattleExpiryCancelled, "battleID", payload.BattleID)
	return nil
}

func (w *BattleExpiryWorker) expire(battleID int64) {
	select {
	case <-w.shutdown:
		return
	default:
	}

	w.wg.Add(1)
	defer w.wg.Done()
	defer w.removeTimer(battleID)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info(LogMsgExecutingScheduledExpiry, "battleID", battleID)

	if _, err := w.battles.Finish(ctx, battleID); err != nil {
		log.Error(LogMsgFailedToExpireBattle, "battleID", battleID, "error", err)
	}
}

// Shutdown cancels pending timers and waits for in-flight expiries.
func (w *BattleExpiryWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, "BattleExpiryWorker")
}
