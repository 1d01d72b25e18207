package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ProfileCommand returns the profile command definition and handler
func ProfileCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "profile",
		Description: "Show your adventurer profile and satchel",
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

		profile, err := deps.Players.Profile(ctx, playerID)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		items, err := deps.Players.Items(ctx, playerID)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("🧭 %s", user.Username),
			Color: 0x3498db,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "⚡ Energy", Value: fmt.Sprintf("%d", profile.Energy), Inline: true},
				{Name: "🎖️ Rank", Value: fmt.Sprintf("%d", profile.Rank), Inline: true},
				{Name: "⚔️ Combat Power", Value: fmt.Sprintf("%d", profile.CombatPower), Inline: true},
				{Name: "⭐ Experience", Value: fmt.Sprintf("%d", profile.Experience), Inline: true},
				{Name: "🎒 Satchel", Value: formatBag(items), Inline: false},
			},
			Timestamp: time.Now().Format(time.RFC3339),
			Footer: &discordgo.MessageEmbedFooter{
				Text: FooterRuinfangBot,
			},
		}

		sendEmbed(s, i, embed)
	}

	return cmd, handler
}
