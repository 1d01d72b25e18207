package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// RuinsCommand returns the ruins command definition and handler. Every
// expedition action is a subcommand so the whole run lives under one slash
// command.
func RuinsCommand(ruinsKeys []string) (*discordgo.ApplicationCommand, CommandHandler) {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(ruinsKeys))
	for _, key := range ruinsKeys {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  key,
			Value: key,
		})
	}

	cmd := &discordgo.ApplicationCommand{
		Name:        "ruins",
		Description: "Explore ancient ruins for loot",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "enter",
				Description: "Start an expedition into a ruin",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "type",
						Description: "The ruin to enter",
						Required:    true,
						Choices:     choices,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "explore",
				Description: "Press deeper and reveal the next room",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "search",
				Description: "Search the current room for loot",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sneak",
				Description: "Try to slip past the room's guardian",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "fight",
				Description: "Fight the room's guardian",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leave",
				Description: "End the expedition and collect depth experience",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show your current expedition",
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services) {
		if !deferResponse(s, i) {
			return
		}

		ctx := context.Background()
		user := getInteractionUser(i)
		playerID, err := parsePlayerID(user)
		if err != nil {
			respondError(s, i, MsgGenericError)
			return
		}

		options := getOptions(i)
		if len(options) == 0 {
			respondError(s, i, MsgGenericError)
			return
		}
		sub := options[0]

		switch sub.Name {
		case "enter":
			handleRuinsEnter(ctx, s, i, deps, playerID, user.Username, sub)
		case "explore":
			handleRuinsExplore(ctx, s, i, deps, playerID)
		case "search":
			handleRuinsSearch(ctx, s, i, deps, playerID)
		case "sneak":
			handleRuinsSneak(ctx, s, i, deps, playerID)
		case "fight":
			handleRuinsFight(ctx, s, i, deps, playerID)
		case "leave":
			handleRuinsLeave(ctx, s, i, deps, playerID)
		case "status":
			handleRuinsStatus(ctx, s, i, deps, playerID)
		default:
			respondError(s, i, MsgGenericError)
		}
	}

	return cmd, handler
}

func handleRuinsEnter(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64, playerName string, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if len(sub.Options) == 0 {
		respondError(s, i, MsgGenericError)
		return
	}
	typeKey := sub.Options[0].StringValue()

	sess, err := deps.Ruins.Enter(ctx, playerID, playerName, typeKey)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	cfg := sess.Config()
	msg := fmt.Sprintf(
		"You step into the **%s**.\nEvery action here costs ×%d energy. The final chamber lies somewhere between depth %d and %d.\nMove deeper with `/ruins explore`.",
		cfg.Name, cfg.EnergyRate, cfg.MinDepth, cfg.MaxDepth,
	)
	sendEmbed(s, i, createEmbed("🏛️ Expedition Started", msg, 0x9b59b6, ""))
}

func handleRuinsExplore(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	room, err := deps.Ruins.Explore(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	color := 0x3498db
	if room.Kind == domain.RoomGuarded {
		color = 0xe74c3c
	}
	sendEmbed(s, i, createEmbed("🕯️ Deeper In", formatRoom(room), color, ""))
}

func handleRuinsSearch(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	result, err := deps.Ruins.Search(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	title := "🔍 Room Searched"
	msg := fmt.Sprintf("You found:\n%s", formatBag(result.Loot))
	if result.FinalRoom {
		title = "🏺 Final Chamber Plundered"
	}
	if result.RunEnded {
		msg += "\n\nWith the final chamber emptied, the expedition is over. Well done!"
	}
	sendEmbed(s, i, createEmbed(title, msg, 0x2ecc71, ""))
}

func handleRuinsSneak(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	slipped, err := deps.Ruins.Sneak(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	if slipped {
		sendEmbed(s, i, createEmbed("🤫 Sneak",
			"You slip past the guardian unnoticed. The room is yours.", 0x2ecc71, ""))
		return
	}
	sendEmbed(s, i, createEmbed("🤫 Sneak",
		"The guardian spots you! You scramble back. Fight it or try again.", 0xe74c3c, ""))
}

func handleRuinsFight(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	result, err := deps.Ruins.Fight(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	damage := 0
	if result.Round != nil {
		for _, attack := range result.Round.Round.Attacks {
			damage += attack.Damage
		}
	}

	switch {
	case result.GuardianKilled:
		msg := fmt.Sprintf("You strike for **%d** damage and the guardian falls!", damage)
		if result.Round != nil && !result.Round.Loot.IsEmpty() {
			msg += fmt.Sprintf("\nIt dropped:\n%s", formatBag(result.Round.Distribution[playerID]))
		}
		msg += "\nThe room is yours to search."
		sendEmbed(s, i, createEmbed("⚔️ Guardian Slain", msg, 0x2ecc71, ""))
	case result.RunEnded:
		sendEmbed(s, i, createEmbed("☠️ Driven Out",
			"The guardian proves too strong. Battered and bruised, you flee the ruins empty-handed.", 0xe74c3c, ""))
	default:
		msg := fmt.Sprintf("You strike for **%d** damage but the guardian still stands. Keep fighting!", damage)
		sendEmbed(s, i, createEmbed("⚔️ Guardian Fight", msg, 0xf39c12, ""))
	}
}

func handleRuinsLeave(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	sess, err := deps.Ruins.Current(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}
	depth := sess.Depth()
	searched := sess.RoomsSearched()

	if err := deps.Ruins.Leave(ctx, playerID); err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	msg := fmt.Sprintf("You climb back to the surface.\nDepth reached: **%d** | Rooms searched: **%d**\nExperience has been credited for the ground you covered.",
		depth, searched)
	sendEmbed(s, i, createEmbed("🌄 Back to the Surface", msg, 0x95a5a6, ""))
}

func handleRuinsStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services, playerID int64) {
	sess, err := deps.Ruins.Current(ctx, playerID)
	if err != nil {
		respondFriendlyError(s, i, err)
		return
	}

	cfg := sess.Config()
	msg := fmt.Sprintf("Exploring the **%s**.\nDepth: **%d** | Rooms searched: **%d**\n\n%s",
		cfg.Name, sess.Depth(), sess.RoomsSearched(), formatRoom(sess.CurrentRoom()))
	sendEmbed(s, i, createEmbed("🗺️ Expedition Status", msg, 0x3498db, ""))
}
