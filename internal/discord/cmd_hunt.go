package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// HuntCommand returns the hunt command definition and handler. The beast
// keys from the content registry become the slash command choices.
func HuntCommand(beastKeys []string) (*discordgo.ApplicationCommand, CommandHandler) {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(beastKeys))
	for _, key := range beastKeys {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  key,
			Value: key,
		})
	}

	cmd := &discordgo.ApplicationCommand{
		Name:        "hunt",
		Description: "Track down a beast and open a battle anyone can join",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "beast",
				Description: "The beast to hunt",
				Required:    true,
				Choices:     choices,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services) {
		handleEmbedResponse(s, i, func() (string, error) {
			ctx := context.Background()
			options := getOptions(i)
			if len(options) == 0 {
				return "", fmt.Errorf("%w: missing beast argument", domain.ErrInvalidArgument)
			}
			beastKey := options[0].StringValue()

			def, err := deps.Content.Beast(beastKey)
			if err != nil {
				return "", err
			}

			b, err := deps.Battles.Start(ctx, def, battle.Options{})
			if err != nil {
				return "", err
			}

			snapshot := b.Beast()
			return fmt.Sprintf(
				"A **%s** (%s) appears with %d health!\nBattle #%d is open to everyone. Strike with `/attack battle:%d`.",
				snapshot.Name, snapshot.Tier, snapshot.Health, b.ID(), b.ID(),
			), nil
		}, "🏹 Hunt Started", 0xc0392b)
	}

	return cmd, handler
}

// AttackCommand returns the attack command definition and handler
func AttackCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "attack",
		Description: "Strike a beast in an open battle",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "battle",
				Description: "The battle number to attack in",
				Required:    true,
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
		battleID := options[0].IntValue()

		result, err := deps.Battles.ProcessRound(ctx, battleID, playerID, user.Username)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		b, err := deps.Battles.Get(ctx, battleID)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}
		snapshot := b.Beast()

		damage := 0
		for _, attack := range result.Round.Attacks {
			damage += attack.Damage
		}

		msg := fmt.Sprintf("You hit the **%s** for **%d** damage (round %d).\nTotal damage so far: %d",
			snapshot.Name, damage, result.Round.Number, result.TotalDamage)

		title := "⚔️ Attack"
		color := 0xf39c12
		switch {
		case result.Killed:
			title = "💀 Beast Slain"
			color = 0x2ecc71
			msg += fmt.Sprintf("\n\nThe **%s** is dead! It dropped:\n%s\n\nYour share:\n%s",
				snapshot.Name, formatBag(result.Loot), formatBag(result.Distribution[playerID]))
		case result.Finished:
			title = "🏃 Beast Escaped"
			color = 0x95a5a6
			msg += fmt.Sprintf("\n\nThe **%s** got away before you could finish it. No loot this time.", snapshot.Name)
		default:
			remaining := snapshot.Health - result.TotalDamage
			if remaining < 0 {
				remaining = 0
			}
			msg += fmt.Sprintf("\nRemaining health: %d", remaining)
		}

		sendEmbed(s, i, createEmbed(title, msg, color, ""))
	}

	return cmd, handler
}
