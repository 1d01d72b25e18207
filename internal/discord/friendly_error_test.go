package discord

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected string
	}{
		{
			name:     "Insufficient Energy",
			input:    fmt.Errorf("%w: need 4", domain.ErrInsufficientEnergy),
			expected: MsgInsufficientEnergy,
		},
		{
			name:     "Battle Not Found",
			input:    fmt.Errorf("%w: 42", domain.ErrBattleNotFound),
			expected: MsgBattleNotFound,
		},
		{
			name:     "Battle Finished",
			input:    domain.ErrBattleFinished,
			expected: MsgBattleFinished,
		},
		{
			name:     "No Active Run",
			input:    fmt.Errorf("%w: player 7", domain.ErrSessionNotFound),
			expected: MsgNoActiveRun,
		},
		{
			name:     "Run Already Active",
			input:    domain.ErrSessionExists,
			expected: MsgRunActive,
		},
		{
			name:     "Room Searched",
			input:    domain.ErrRoomSearched,
			expected: MsgRoomSearched,
		},
		{
			name:     "Unknown Beast",
			input:    fmt.Errorf("%w: %q", domain.ErrBeastNotFound, "dragon"),
			expected: MsgBeastNotFound,
		},
		{
			name:     "Unknown Chest",
			input:    fmt.Errorf("%w: %q", domain.ErrChestNotFound, "obsidian"),
			expected: MsgChestNotFound,
		},
		{
			name:     "Prerequisite",
			input:    fmt.Errorf("%w: guardian blocks the way", domain.ErrPrerequisiteNotMet),
			expected: MsgPrerequisiteNotMet,
		},
		{
			name:     "Unmapped Error",
			input:    errors.New("connection reset"),
			expected: MsgGenericError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, friendlyError(tt.input))
		})
	}
}

func TestFriendlyErrorInvalidArgumentKeepsDetail(t *testing.T) {
	err := fmt.Errorf("%w: amount -3", domain.ErrInvalidArgument)
	msg := friendlyError(err)
	assert.Contains(t, msg, "amount -3")
}
