// Package content loads the static game-content tables (beasts, chests,
// ruins types, quest templates) from JSON and turns them into immutable
// definitions and loot trees. The registry is read-only after Load.
package content

import (
	"encoding/json"
)

// BeastConfig is the file form of one beast definition. Loot is a serialized
// loot envelope; Base references another beast whose zero-valued stats fill
// in the gaps.
type BeastConfig struct {
	Key        string          `json:"key" validate:"required"`
	Name       string          `json:"name"`
	Tier       string          `json:"tier" validate:"omitempty,oneof=normal elite boss raid"`
	Base       string          `json:"base,omitempty"`
	Health     int             `json:"health" validate:"min=0"`
	Initiative int             `json:"initiative" validate:"min=0"`
	Experience int             `json:"experience" validate:"min=0"`
	Loot       json.RawMessage `json:"loot,omitempty"`
}

// ChestConfig is the file form of one openable chest tier.
type ChestConfig struct {
	Key  string          `json:"key" validate:"required"`
	Name string          `json:"name"`
	Loot json.RawMessage `json:"loot" validate:"required"`
}

// RuinsConfig is the file form of one ruins type parameter table.
type RuinsConfig struct {
	Key            string          `json:"key" validate:"required"`
	Name           string          `json:"name"`
	EnergyRate     int             `json:"energy_rate" validate:"min=1"`
	MinDepth       int             `json:"min_depth" validate:"min=1"`
	MaxDepth       int             `json:"max_depth" validate:"gtefield=MinDepth"`
	GuardChance    float64         `json:"guard_chance" validate:"min=0,max=100"`
	Guardians      map[string]int  `json:"guardians,omitempty"`
	GuardianRounds int             `json:"guardian_rounds" validate:"min=1"`
	RoomLoot       json.RawMessage `json:"room_loot,omitempty"`
	FinalLoot      json.RawMessage `json:"final_loot,omitempty"`
}

// QuestConfig is the file form of one shared quest template.
type QuestConfig struct {
	Key    string          `json:"key" validate:"required"`
	Name   string          `json:"name"`
	Kind   string          `json:"kind" validate:"oneof=slay explore generic"`
	Goal   int             `json:"goal" validate:"min=1"`
	Reward json.RawMessage `json:"reward,omitempty"`
}

// File is the on-disk layout of a game-content file.
type File struct {
	Version string        `json:"version"`
	Beasts  []BeastConfig `json:"beasts" validate:"dive"`
	Chests  []ChestConfig `json:"chests" validate:"dive"`
	Ruins   []RuinsConfig `json:"ruins" validate:"dive"`
	Quests  []QuestConfig `json:"quests" validate:"dive"`
}
