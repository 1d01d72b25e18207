package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// QuestsCommand returns the quests command definition and handler
func QuestsCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "quests",
		Description: "View the community quests and their progress",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Services) {
		if !deferResponse(s, i) {
			return
		}

		ctx := context.Background()
		quests := deps.Quests.Active(ctx)
		if len(quests) == 0 {
			respondError(s, i, "No quests are active right now.")
			return
		}

		embed := &discordgo.MessageEmbed{
			Title:       "📜 Community Quests",
			Description: "Everyone's battles and expeditions count. Chip in directly with /contribute.",
			Color:       0x3498db,
			Fields:      make([]*discordgo.MessageEmbedField, 0, len(quests)),
			Timestamp:   time.Now().Format(time.RFC3339),
		}

		for _, q := range quests {
			template := q.Template()
			current, goal := q.Progress()
			contributors := len(q.Contributions())

			fieldValue := fmt.Sprintf(
				"%s `%d/%d`\n👥 %d contributor(s) | kind: %s",
				buildProgressBar(current, goal, 10),
				current, goal,
				contributors, template.Kind,
			)

			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   fmt.Sprintf("**%s** (`%s`)", template.Name, template.Key),
				Value:  fieldValue,
				Inline: false,
			})
		}

		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "Rewards are split by contribution when a quest completes",
		}

		sendEmbed(s, i, embed)
	}

	return cmd, handler
}

// ContributeCommand returns the contribute command definition and handler
func ContributeCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	minAmount := float64(1)
	cmd := &discordgo.ApplicationCommand{
		Name:        "contribute",
		Description: "Put progress toward a community quest",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "quest",
				Description: "The quest key (see /quests)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "How much progress to add",
				Required:    true,
				MinValue:    &minAmount,
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
		if len(options) < 2 {
			respondError(s, i, MsgGenericError)
			return
		}
		questKey := options[0].StringValue()
		amount := int(options[1].IntValue())

		result, err := deps.Quests.Contribute(ctx, questKey, playerID, amount)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		if result.Completed {
			msg := fmt.Sprintf(
				"Your contribution pushed **%s** over the line! 🎉\n\nTotal reward:\n%s\n\nYour share:\n%s",
				questKey, formatBag(result.Reward), formatBag(result.Distribution[playerID]),
			)
			sendEmbed(s, i, createEmbed("🎉 Quest Complete", msg, 0x2ecc71, ""))
			return
		}

		msg := fmt.Sprintf("Progress on **%s**:\n%s `%d/%d`",
			questKey, buildProgressBar(result.Current, result.Goal, 10), result.Current, result.Goal)
		sendEmbed(s, i, createEmbed("🤝 Contribution Counted", msg, 0x3498db, ""))
	}

	return cmd, handler
}
