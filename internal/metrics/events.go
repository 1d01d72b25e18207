package metrics

import (
	"context"

	"github.com/halbrec/RuinfangBot_Go/internal/event"
	"github.com/halbrec/RuinfangBot_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.BattleStarted,
		event.BattleFinished,
		event.LootDistributed,
		event.RuinsEntered,
		event.RuinsLeft,
		event.ChestOpened,
		event.QuestCompleted,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.LootDistributed:
		if payload, err := event.DecodePayload[event.LootDistributedPayloadV1](evt.Payload); err == nil {
			LootDistributed.Add(float64(payload.TotalItems))
		}

	case event.ChestOpened:
		if payload, err := event.DecodePayload[event.ChestOpenedPayloadV1](evt.Payload); err == nil {
			ChestsOpened.WithLabelValues(payload.ChestKey).Inc()
		}

	case event.QuestCompleted:
		QuestsCompleted.Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
