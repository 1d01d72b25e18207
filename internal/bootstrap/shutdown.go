package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halbrec/RuinfangBot_Go/internal/discord"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/scheduler"
	"github.com/halbrec/RuinfangBot_Go/internal/server"
	"github.com/halbrec/RuinfangBot_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Bot          *discord.Bot
	Server       *server.Server
	ExpiryWorker *worker.BattleExpiryWorker
	Scheduler    *scheduler.Scheduler
	WorkerPool   *worker.Pool
	Publisher    *event.ResilientPublisher
	DBPool       *pgxpool.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// Order matters: the command surfaces stop first so no new sessions start,
// then the background workers drain, then the database pool closes.
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDown)

	if components.Bot != nil {
		components.Bot.Stop()
	}

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	// Workers next, so pending expiry timers are cancelled before the
	// stores they write to go away.
	if components.ExpiryWorker != nil {
		if err := components.ExpiryWorker.Shutdown(ctx); err != nil {
			slog.Error("Battle expiry worker shutdown failed", "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	// The publisher drains last among the workers so events emitted during
	// their shutdown still get a publish attempt.
	if components.Publisher != nil {
		if err := components.Publisher.Shutdown(ctx); err != nil {
			slog.Error("Event publisher shutdown failed", "error", err)
		}
	}

	if components.DBPool != nil {
		components.DBPool.Close()
	}

	slog.Info(LogMsgShutdownComplete)
}
