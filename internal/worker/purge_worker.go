package worker

import (
	"context"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
	"github.com/halbrec/RuinfangBot_Go/internal/ruins"
)

// SessionPurgeJob evicts battles and ruins runs that saw no transition for
// longer than MaxAge, then deletes their persisted rows. Finished sessions
// stay readable until the purge removes them.
type SessionPurgeJob struct {
	battles     *battle.Manager
	ruins       *ruins.Manager
	battleStore repository.SessionStore
	ruinsStore  repository.SessionStore
	maxAge      time.Duration
	now         func() time.Time
}

// NewSessionPurgeJob creates a purge job over both session managers.
func NewSessionPurgeJob(battles *battle.Manager, ruinsManager *ruins.Manager, battleStore, ruinsStore repository.SessionStore, maxAge time.Duration) *SessionPurgeJob {
	return &SessionPurgeJob{
		battles:     battles,
		ruins:       ruinsManager,
		battleStore: battleStore,
		ruinsStore:  ruinsStore,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Process runs one purge sweep.
func (j *SessionPurgeJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cutoff := j.now().Add(-j.maxAge)
	log.Debug(LogMsgSessionPurgeStarting, "cutoff", cutoff)

	battleIDs := j.battles.PurgeOlderThan(cutoff)
	for _, id := range battleIDs {
		if err := j.battleStore.Delete(ctx, id); err != nil {
			log.Warn(LogMsgFailedToDeleteSession, "kind", "battle", "sessionID", id, "error", err)
		}
	}

	ruinsIDs := j.ruins.PurgeOlderThan(cutoff)
	for _, id := range ruinsIDs {
		if err := j.ruinsStore.Delete(ctx, id); err != nil {
			log.Warn(LogMsgFailedToDeleteSession, "kind", "ruins", "sessionID", id, "error", err)
		}
	}

	log.Info(LogMsgSessionPurgeCompleted,
		"battlesPurged", len(battleIDs),
		"ruinsPurged", len(ruinsIDs))
	return nil
}
