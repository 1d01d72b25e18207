package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/bootstrap"
	"github.com/halbrec/RuinfangBot_Go/internal/chest"
	"github.com/halbrec/RuinfangBot_Go/internal/config"
	"github.com/halbrec/RuinfangBot_Go/internal/content"
	"github.com/halbrec/RuinfangBot_Go/internal/database"
	"github.com/halbrec/RuinfangBot_Go/internal/database/postgres"
	"github.com/halbrec/RuinfangBot_Go/internal/discord"
	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/metrics"
	"github.com/halbrec/RuinfangBot_Go/internal/quest"
	"github.com/halbrec/RuinfangBot_Go/internal/ruins"
	"github.com/halbrec/RuinfangBot_Go/internal/scheduler"
	"github.com/halbrec/RuinfangBot_Go/internal/server"
	"github.com/halbrec/RuinfangBot_Go/internal/worker"
)

const (
	// recentBattleSummaries bounds the LRU of purged battle outcomes kept
	// for the ops surface.
	recentBattleSummaries = 128

	sessionMaxAge        = 6 * time.Hour
	sessionPurgeInterval = 15 * time.Minute

	energyRegenAmount   = 5
	energyRegenInterval = 5 * time.Minute

	battleIdleTimeout = 30 * time.Minute

	workerCount     = 4
	workerQueueSize = 64

	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer logFile.Close()

	ctx := context.Background()

	// Database
	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		slog.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	}

	// Game content
	registry, err := content.Load(cfg.ContentPath)
	if err != nil {
		slog.Error("Failed to load game content", "error", err, "path", cfg.ContentPath)
		os.Exit(1)
	}

	// Repositories
	players := postgres.NewPlayerRepository(dbPool)
	battleStore := postgres.NewSessionRepository(dbPool, postgres.SessionKindBattle)
	ruinsStore := postgres.NewSessionRepository(dbPool, postgres.SessionKindRuins)
	questStore := postgres.NewSessionRepository(dbPool, postgres.SessionKindQuest)

	// Event bus and engines. The resilient wrapper retries failed publishes
	// and spills exhausted events to a dead-letter file.
	bus, err := event.NewResilientPublisher(event.NewMemoryBus(),
		event.RetryMaxAttempts,
		event.RetryInitialDelaySeconds*time.Second,
		filepath.Join(cfg.LogDir, "dead_letter_events.jsonl"))
	if err != nil {
		slog.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	distributor := loot.NewDistributor()
	seed := time.Now().UnixNano()

	battleManager, err := battle.NewManager(recentBattleSummaries)
	if err != nil {
		slog.Error("Failed to create battle manager", "error", err)
		os.Exit(1)
	}
	ruinsManager := ruins.NewManager()

	battleService := battle.NewService(battleStore, battleManager, players, players, bus, distributor, seed)
	ruinsService := ruins.NewService(ruinsStore, ruinsManager, registry, players, players, players, battleService, bus, seed)
	questService := quest.NewService(questStore, players, bus, distributor, seed)
	chestService := chest.NewService(registry, players, players, bus, seed)

	// Open the shared quests defined by the content file.
	for _, template := range registry.QuestTemplates() {
		if _, err := questService.Open(ctx, template); err != nil {
			slog.Error("Failed to open quest", "error", err, "quest", template.Key)
			os.Exit(1)
		}
	}

	// Event handlers
	questEvents := quest.NewEventHandler(questService)
	questEvents.Register(bus)

	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		slog.Error("Failed to register metrics collector", "error", err)
		os.Exit(1)
	}

	expiryWorker := worker.NewBattleExpiryWorker(battleService, battleIdleTimeout)
	expiryWorker.Register(bus)

	// Background jobs
	workerPool := worker.NewPool(workerCount, workerQueueSize)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(sessionPurgeInterval,
		worker.NewSessionPurgeJob(battleManager, ruinsManager, battleStore, ruinsStore, sessionMaxAge))
	sched.Schedule(energyRegenInterval,
		worker.NewEnergyRegenJob(players, energyRegenAmount))
	sched.Start()

	// HTTP ops surface
	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, dbPool, battleManager, battleService, ruinsManager, questService)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("Server started", "port", cfg.Port)

	// Discord bot, when configured. The bot shares the in-memory managers
	// with the HTTP surface, so it must run in this process.
	bot := startBot(registry, battleService, ruinsService, questService, chestService, players)

	// Wait for termination
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Bot:          bot,
		Server:       srv,
		ExpiryWorker: expiryWorker,
		Scheduler:    sched,
		WorkerPool:   workerPool,
		Publisher:    bus,
		DBPool:       dbPool,
	})
}

// startBot wires and starts the Discord bot. Returns nil when no token is
// configured; the engines stay reachable through the HTTP surface either way.
func startBot(registry *content.Registry, battles battle.Service, ruinsService ruins.Service, quests quest.Service, chests chest.Service, players *postgres.PlayerRepository) *discord.Bot {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		slog.Info("DISCORD_TOKEN not set, bot disabled")
		return nil
	}

	if err := config.ValidateEnv(); err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	deps := &discord.Services{
		Battles: battles,
		Ruins:   ruinsService,
		Quests:  quests,
		Chests:  chests,
		Content: registry,
		Players: players,
	}

	bot, err := discord.New(discord.Config{
		Token: token,
		AppID: os.Getenv("DISCORD_APP_ID"),
	}, deps)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	discord.RegisterGameCommands(bot.Registry, deps)

	forceUpdate := os.Getenv("DISCORD_FORCE_COMMAND_UPDATE") == "true"
	if err := bot.RegisterCommands(bot.Registry, forceUpdate); err != nil {
		// The bot can still serve interactions if commands are already
		// registered from a previous run.
		slog.Error("Failed to register commands", "error", err)
	}

	if err := bot.Start(); err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	return bot
}
