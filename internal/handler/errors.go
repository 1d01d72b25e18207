package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed = "Method not allowed"
	ErrMsgInvalidRequest   = "Invalid request body"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidIDParam    = "Invalid id parameter"

	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	// Battle messages
	ErrMsgBattleNotFoundError = "Battle not found"
	ErrMsgBattleFinishedError = "That battle is already over"
	ErrMsgPrerequisiteError   = "You cannot do that right now"

	// Session messages
	ErrMsgSessionNotFoundError = "No active session found"
	ErrMsgSessionExistsError   = "You already have an active session"
	ErrMsgRoomSearchedError    = "This room was already searched"

	// Ruins messages
	ErrMsgRuinsNotFoundError      = "Unknown ruins"
	ErrMsgInsufficientEnergyError = "Not enough energy"

	// Content messages
	ErrMsgBeastNotFoundError = "Unknown beast"
	ErrMsgQuestNotFoundError = "Quest not found"
)
