package quest

import (
	"context"
	"fmt"

	"github.com/halbrec/RuinfangBot_Go/internal/event"
)

// EventHandler advances quest progress off gameplay events, so slay and
// exploration quests need no explicit contribution calls from the command
// layer.
type EventHandler struct {
	service Service
}

// NewEventHandler creates a new quest event handler
func NewEventHandler(service Service) *EventHandler {
	return &EventHandler{
		service: service,
	}
}

// Register subscribes the handler to relevant events
func (h *EventHandler) Register(bus event.Bus) {
	bus.Subscribe(event.BattleFinished, h.HandleBattleFinished)
	bus.Subscribe(event.RuinsLeft, h.HandleRuinsLeft)
}

// HandleBattleFinished credits slay quests with each attacker's damage. Only
// kills count; a capped-out or abandoned battle advances nothing.
func (h *EventHandler) HandleBattleFinished(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.BattleFinishedPayloadV1](evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode battle finished payload: %w", err)
	}
	if !payload.Killed {
		return nil
	}

	for playerID, damage := range payload.Contributions {
		h.service.ContributeKind(ctx, KindSlay, playerID, damage)
	}
	return nil
}

// HandleRuinsLeft credits exploration quests with the run's depth plus
// searched rooms.
func (h *EventHandler) HandleRuinsLeft(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.RuinsPayloadV1](evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode ruins left payload: %w", err)
	}

	h.service.ContributeKind(ctx, KindExplore, payload.PlayerID, payload.Depth+payload.RoomsSearched)
	return nil
}
