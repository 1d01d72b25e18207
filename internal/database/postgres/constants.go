package postgres

// Session kinds partition the game_sessions table. Each engine gets its own
// store instance pinned to one kind.
const (
	SessionKindBattle = "battle"
	SessionKindRuins  = "ruins"
	SessionKindQuest  = "quest"
)

// Player row defaults, applied when a player is first touched.
const (
	DefaultEnergy      = 100
	EnergyCap          = 100
	DefaultCombatPower = 10
)

// Error Messages - Session Operations
const (
	ErrMsgFailedToInsertSession = "failed to insert session"
	ErrMsgFailedToUpdateSession = "failed to update session"
	ErrMsgFailedToDeleteSession = "failed to delete session"
	ErrMsgFailedToListSessions  = "failed to list sessions"
)

// Error Messages - Player Operations
const (
	ErrMsgFailedToEnsurePlayer   = "failed to ensure player row"
	ErrMsgFailedToGetCombatPower = "failed to get combat power"
	ErrMsgFailedToGetRank        = "failed to get rank"
	ErrMsgFailedToGetProfile     = "failed to get profile"
	ErrMsgFailedToConsumeEnergy  = "failed to consume energy"
	ErrMsgFailedToRestoreEnergy  = "failed to restore energy"
	ErrMsgFailedToAddExperience  = "failed to add experience"
	ErrMsgFailedToAcquireLoot    = "failed to acquire loot"
	ErrMsgFailedToGetItems       = "failed to get items"
	ErrMsgFailedToBeginLootTx    = "failed to begin loot transaction"
	ErrMsgFailedToCommitLootTx   = "failed to commit loot transaction"
	ErrMsgFailedToRollbackLootTx = "failed to rollback loot transaction"
)
