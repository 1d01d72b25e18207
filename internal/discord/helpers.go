package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// parsePlayerID turns a Discord snowflake into the int64 player id the
// engines key on.
func parsePlayerID(user *discordgo.User) (int64, error) {
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid discord user id %q: %w", user.ID, err)
	}
	return id, nil
}

// formatBag renders a loot bag as bullet lines, sorted by item id for
// stable output.
func formatBag(bag domain.Bag) string {
	if bag.IsEmpty() {
		return "nothing"
	}
	lines := make([]string, 0, len(bag))
	for _, itemID := range bag.SortedIDs() {
		lines = append(lines, fmt.Sprintf("• %s ×%d", itemID, bag[itemID]))
	}
	return strings.Join(lines, "\n")
}

// buildProgressBar renders current/required as a fixed-length bar of filled
// and empty segments.
func buildProgressBar(current, required, length int) string {
	if required <= 0 {
		required = 1
	}
	if current > required {
		current = required
	}
	filled := current * length / required
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// formatRoom describes a revealed room for the explore and status replies.
func formatRoom(room domain.Room) string {
	var sb strings.Builder
	if room.FinalRoom {
		sb.WriteString(fmt.Sprintf("🏺 **Final Chamber** (depth %d)", room.Depth))
	} else {
		sb.WriteString(fmt.Sprintf("🚪 **Room at depth %d**", room.Depth))
	}
	switch {
	case room.Kind == domain.RoomGuarded && room.Guardian != domain.GuardianFinished:
		sb.WriteString(fmt.Sprintf("\n⚔️ A **%s** guards this room. Fight it or sneak past.", room.BeastKey))
	case room.Searched:
		sb.WriteString("\nAlready searched.")
	default:
		sb.WriteString("\nThe room lies open. Search it or press on.")
	}
	return sb.String()
}
