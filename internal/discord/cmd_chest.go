package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ChestCommand returns the chest command definition and handler. The chest
// tier keys from the content registry become the slash command choices.
func ChestCommand(chestKeys []string) (*discordgo.ApplicationCommand, CommandHandler) {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(chestKeys))
	for _, key := range chestKeys {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  key,
			Value: key,
		})
	}

	cmd := &discordgo.ApplicationCommand{
		Name:        "chest",
		Description: "Spend energy to open a chest and claim its contents",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tier",
				Description: "The chest tier to open",
				Required:    true,
				Choices:     choices,
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
		chestKey := options[0].StringValue()

		result, err := deps.Chests.Open(ctx, playerID, chestKey)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		if result.Loot.IsEmpty() {
			msg := fmt.Sprintf("The **%s** chest was empty. Better luck with the next one.", result.ChestKey)
			sendEmbed(s, i, createEmbed("🪹 Empty Chest", msg, 0x95a5a6, ""))
			return
		}

		msg := fmt.Sprintf("You pry open the **%s** chest and find:\n%s", result.ChestKey, formatBag(result.Loot))
		sendEmbed(s, i, createEmbed("🧰 Chest Opened", msg, 0xf1c40f, ""))
	}

	return cmd, handler
}
