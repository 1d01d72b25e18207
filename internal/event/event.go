package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}

	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}

	return nil
}

// Common event types
const (
	BattleStarted   Type = "battle.started"
	BattleFinished  Type = "battle.finished"
	LootDistributed Type = "loot.distributed"
	RuinsEntered    Type = "ruins.entered"
	RuinsLeft       Type = "ruins.left"
	ChestOpened     Type = "chest.opened"
	QuestCompleted  Type = "quest.completed"
)

// Typed event payloads for type safety

// BattleStartedPayloadV1 is the typed payload for battle started events
type BattleStartedPayloadV1 struct {
	BattleID  int64  `json:"battle_id"`
	BeastKey  string `json:"beast_key"`
	BeastName string `json:"beast_name"`
	Tier      string `json:"tier"`
	Timestamp int64  `json:"timestamp"`
}

// BattleFinishedPayloadV1 is the typed payload for battle finished events
type BattleFinishedPayloadV1 struct {
	BattleID      int64         `json:"battle_id"`
	BeastName     string        `json:"beast_name"`
	Killed        bool          `json:"killed"`
	Rounds        int           `json:"rounds"`
	TotalDamage   int           `json:"total_damage"`
	Contributions map[int64]int `json:"contributions,omitempty"` // per-player damage
	Timestamp     int64         `json:"timestamp"`
}

// LootDistributedPayloadV1 is the typed payload for loot distribution events
type LootDistributedPayloadV1 struct {
	SessionKind string `json:"session_kind"` // "battle", "ruins", "quest", "chest"
	SessionID   int64  `json:"session_id"`
	Recipients  int    `json:"recipients"`
	TotalItems  int    `json:"total_items"`
	Timestamp   int64  `json:"timestamp"`
}

// RuinsPayloadV1 is the typed payload for ruins entered/left events
type RuinsPayloadV1 struct {
	PlayerID      int64  `json:"player_id"`
	RuinsType     string `json:"ruins_type"`
	Depth         int    `json:"depth"`
	RoomsSearched int    `json:"rooms_searched"`
	Timestamp     int64  `json:"timestamp"`
}

// ChestOpenedPayloadV1 is the typed payload for chest opened events
type ChestOpenedPayloadV1 struct {
	PlayerID  int64  `json:"player_id"`
	ChestKey  string `json:"chest_key"`
	Timestamp int64  `json:"timestamp"`
}

// QuestCompletedPayloadV1 is the typed payload for quest completion events
type QuestCompletedPayloadV1 struct {
	QuestID      int64  `json:"quest_id"`
	QuestKey     string `json:"quest_key"`
	Contributors int    `json:"contributors"`
	Timestamp    int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewBattleStartedEvent creates a new battle started event
func NewBattleStartedEvent(battleID int64, beastKey, beastName, tier string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleStarted,
		Payload: BattleStartedPayloadV1{
			BattleID:  battleID,
			BeastKey:  beastKey,
			BeastName: beastName,
			Tier:      tier,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewBattleFinishedEvent creates a new battle finished event
func NewBattleFinishedEvent(battleID int64, beastName string, killed bool, rounds, totalDamage int, contributions map[int64]int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleFinished,
		Payload: BattleFinishedPayloadV1{
			BattleID:      battleID,
			BeastName:     beastName,
			Killed:        killed,
			Rounds:        rounds,
			TotalDamage:   totalDamage,
			Contributions: contributions,
			Timestamp:     time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewLootDistributedEvent creates a new loot distributed event
func NewLootDistributedEvent(sessionKind string, sessionID int64, recipients, totalItems int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootDistributed,
		Payload: LootDistributedPayloadV1{
			SessionKind: sessionKind,
			SessionID:   sessionID,
			Recipients:  recipients,
			TotalItems:  totalItems,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewRuinsEnteredEvent creates a new ruins entered event
func NewRuinsEnteredEvent(playerID int64, ruinsType string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RuinsEntered,
		Payload: RuinsPayloadV1{
			PlayerID:  playerID,
			RuinsType: ruinsType,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewRuinsLeftEvent creates a new ruins left event
func NewRuinsLeftEvent(playerID int64, ruinsType string, depth, roomsSearched int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RuinsLeft,
		Payload: RuinsPayloadV1{
			PlayerID:      playerID,
			RuinsType:     ruinsType,
			Depth:         depth,
			RoomsSearched: roomsSearched,
			Timestamp:     time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewChestOpenedEvent creates a new chest opened event
func NewChestOpenedEvent(playerID int64, chestKey string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ChestOpened,
		Payload: ChestOpenedPayloadV1{
			PlayerID:  playerID,
			ChestKey:  chestKey,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewQuestCompletedEvent creates a new quest completed event
func NewQuestCompletedEvent(questID int64, questKey string, contributors int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestCompleted,
		Payload: QuestCompletedPayloadV1{
			QuestID:      questID,
			QuestKey:     questKey,
			Contributors: contributors,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously in subscription order.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
