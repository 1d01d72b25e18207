package domain

// PlayerProfile is the aggregate player record the command layer renders.
type PlayerProfile struct {
	PlayerID    int64 `json:"player_id"`
	Energy      int   `json:"energy"`
	Rank        int   `json:"rank"`
	CombatPower int   `json:"combat_power"`
	Experience  int64 `json:"experience"`
}
