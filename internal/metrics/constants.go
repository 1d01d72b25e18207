package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameBattlesStarted    = "battles_started_total"
	MetricNameBattlesFinished   = "battles_finished_total"
	MetricNameRoundsProcessed   = "battle_rounds_processed_total"
	MetricNameLootRolls         = "loot_rolls_total"
	MetricNameLootDistributed   = "loot_distributed_total"
	MetricNameRuinsEntered      = "ruins_entered_total"
	MetricNameRuinsRoomsCleared = "ruins_rooms_cleared_total"
	MetricNameChestsOpened      = "chests_opened_total"
	MetricNameQuestsCompleted   = "quests_completed_total"
	MetricNameCommandsProcessed = "bot_commands_processed_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextBattlesStarted    = "Total number of battles started"
	HelpTextBattlesFinished   = "Total number of battles finished"
	HelpTextRoundsProcessed   = "Total number of battle rounds processed"
	HelpTextLootRolls         = "Total number of loot tree rolls"
	HelpTextLootDistributed   = "Total quantity of loot distributed to players"
	HelpTextRuinsEntered      = "Total number of ruins runs started"
	HelpTextRuinsRoomsCleared = "Total number of ruins rooms cleared"
	HelpTextChestsOpened      = "Total number of chests opened"
	HelpTextQuestsCompleted   = "Total number of quests completed"
	HelpTextCommandsProcessed = "Total number of bot commands processed"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelTier    = "tier"
	LabelOutcome = "outcome"
	LabelKind    = "kind"
	LabelCommand = "command"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
)
