package worker

import (
	"context"

	"github.com/halbrec/RuinfangBot_Go/internal/logger"
)

// EnergyRestorer credits energy across all player rows.
type EnergyRestorer interface {
	RestoreEnergy(ctx context.Context, amount int) (int64, error)
}

// EnergyRegenJob periodically refills player energy so ruins runs stay
// affordable. The store clamps balances at the cap.
type EnergyRegenJob struct {
	players EnergyRestorer
	amount  int
}

func NewEnergyRegenJob(players EnergyRestorer, amount int) *EnergyRegenJob {
	return &EnergyRegenJob{players: players, amount: amount}
}

// Process runs one regeneration sweep.
func (j *EnergyRegenJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	updated, err := j.players.RestoreEnergy(ctx, j.amount)
	if err != nil {
		log.Error(LogMsgEnergyRegenFailed, "error", err)
		return err
	}

	log.Info(LogMsgEnergyRegenCompleted, "playersUpdated", updated, "amount", j.amount)
	return nil
}
