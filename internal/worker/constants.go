package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Session Purge Worker
// ============================================================================

// Log messages for session purge operations
const (
	LogMsgSessionPurgeStarting  = "Session purge starting"
	LogMsgSessionPurgeCompleted = "Session purge completed"
	LogMsgFailedToDeleteSession = "Failed to delete purged session row"
)

// ============================================================================
// Log Messages - Energy Regen Worker
// ============================================================================

// Log messages for energy regeneration operations
const (
	LogMsgEnergyRegenCompleted = "Energy regeneration completed"
	LogMsgEnergyRegenFailed    = "Energy regeneration failed"
)

// ============================================================================
// Log Messages - Battle Expiry Worker
// ============================================================================

// Log messages for battle expiry operations
const (
	LogMsgSchedulingBattleExpiry   = "Scheduling battle expiry"
	LogMsgExecutingScheduledExpiry = "Executing scheduled battle expiry"
	LogMsgFailedToExpireBattle     = "Failed to expire battle"
	LogMsgBattleExpiryCancelled    = "Battle finished before expiry, timer cancelled"
	LogMsgFailedToDecodePayload    = "Failed to decode event payload"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
