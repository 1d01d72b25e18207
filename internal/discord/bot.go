package discord

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/chest"
	"github.com/halbrec/RuinfangBot_Go/internal/content"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/quest"
	"github.com/halbrec/RuinfangBot_Go/internal/ruins"
)

// PlayerStore is the slice of the player repository the display commands
// read.
type PlayerStore interface {
	Profile(ctx context.Context, playerID int64) (domain.PlayerProfile, error)
	Items(ctx context.Context, playerID int64) (domain.Bag, error)
}

// Services are the in-process game engines the command handlers call. The
// bot runs in the same process as the engines, so handlers invoke them
// directly instead of going through the HTTP surface.
type Services struct {
	Battles battle.Service
	Ruins   ruins.Service
	Quests  quest.Service
	Chests  chest.Service
	Content *content.Registry
	Players PlayerStore
}

// Bot represents the Discord bot
type Bot struct {
	Session  *discordgo.Session
	Deps     *Services
	AppID    string
	Registry *CommandRegistry
}

// Config holds the bot configuration
type Config struct {
	Token string
	AppID string
}

// New creates a new Discord bot
func New(cfg Config, deps *Services) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	return &Bot{
		Session:  s,
		Deps:     deps,
		AppID:    cfg.AppID,
		Registry: NewCommandRegistry(),
	}, nil
}

// Start starts the bot
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	slog.Info("Discord bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() {
	b.Session.Close()
}

// Run runs the bot until a signal is received
func (b *Bot) Run() error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	return nil
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is ready", "user", s.State.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.Registry != nil {
		b.Registry.Handle(s, i, b.Deps)
	}
}
