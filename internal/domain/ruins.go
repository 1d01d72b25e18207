package domain

// RoomKind distinguishes how a freshly revealed room behaves.
type RoomKind string

const (
	RoomUnguarded RoomKind = "unguarded"
	RoomGuarded   RoomKind = "guarded"
)

// GuardianState tracks the embedded guardian fight of a guarded room.
type GuardianState string

const (
	GuardianNotStarted GuardianState = "not_started"
	GuardianStarted    GuardianState = "started"
	GuardianFinished   GuardianState = "finished"
)

// Room is one revealed location in a ruins exploration session.
type Room struct {
	Depth     int           `json:"depth"`
	Kind      RoomKind      `json:"kind"`
	FinalRoom bool          `json:"final_room"`
	Searched  bool          `json:"searched"`
	Guardian  GuardianState `json:"guardian"`
	BeastKey  string        `json:"beast_key,omitempty"` // guardian definition, guarded rooms only
	BattleID  int64         `json:"battle_id,omitempty"` // embedded battle once the fight starts
}

// RuinsState is the persisted form of an exploration session.
type RuinsState struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	TypeKey    string `json:"type_key"`
	Rooms      []Room `json:"rooms"`
	Ended      bool   `json:"ended"`
}

// CurrentRoom returns the deepest revealed room, or nil before entry.
func (s *RuinsState) CurrentRoom() *Room {
	if len(s.Rooms) == 0 {
		return nil
	}
	return &s.Rooms[len(s.Rooms)-1]
}
