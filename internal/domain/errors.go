package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	// Loot construction/configuration errors
	ErrMsgInvalidConfiguration = "invalid configuration"
	ErrMsgInvalidArgument      = "invalid argument"

	// Recoverable domain-rule violations
	ErrMsgPrerequisiteNotMet = "prerequisite not met"
	ErrMsgInsufficientEnergy = "insufficient energy"

	// Programming errors
	ErrMsgUnsupportedOperation = "unsupported operation"

	// Session errors
	ErrMsgBattleNotFound  = "battle not found"
	ErrMsgBattleFinished  = "battle already finished"
	ErrMsgSessionNotFound = "session not found"
	ErrMsgSessionExists   = "session already active"
	ErrMsgRoomSearched    = "room already searched"

	// Content errors
	ErrMsgBeastNotFound = "beast not found"
	ErrMsgChestNotFound = "chest tier not found"
	ErrMsgRuinsNotFound = "ruins type not found"
	ErrMsgQuestNotFound = "quest not found"
)

// Common domain errors.
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for
// additional context.
var (
	// ErrInvalidConfiguration indicates a loot node or distribution config
	// with no viable positive-weight option. Content-authoring bug; fail fast.
	ErrInvalidConfiguration = errors.New(ErrMsgInvalidConfiguration)

	// ErrInvalidArgument indicates a negative times/quantity/probability
	// passed to a loot operation. Rejected before any randomness is consumed.
	ErrInvalidArgument = errors.New(ErrMsgInvalidArgument)

	// ErrPrerequisiteNotMet indicates a domain-legal but currently-disallowed
	// action (wrong player, insufficient energy, searched room, dead beast).
	// Recoverable; the command layer renders it as user feedback.
	ErrPrerequisiteNotMet = errors.New(ErrMsgPrerequisiteNotMet)

	// ErrUnsupportedOperation indicates a programming error such as
	// deserializing an unknown loot tag. Fails loudly in development.
	ErrUnsupportedOperation = errors.New(ErrMsgUnsupportedOperation)

	// ErrInsufficientEnergy is a specialization of ErrPrerequisiteNotMet for
	// energy-gated ruins actions, kept separate so the command layer can
	// render the energy balance.
	ErrInsufficientEnergy = errors.New(ErrMsgInsufficientEnergy)

	// Session errors
	ErrBattleNotFound  = errors.New(ErrMsgBattleNotFound)
	ErrBattleFinished  = errors.New(ErrMsgBattleFinished)
	ErrSessionNotFound = errors.New(ErrMsgSessionNotFound)
	ErrSessionExists   = errors.New(ErrMsgSessionExists)
	ErrRoomSearched    = errors.New(ErrMsgRoomSearched)

	// Content errors
	ErrBeastNotFound = errors.New(ErrMsgBeastNotFound)
	ErrChestNotFound = errors.New(ErrMsgChestNotFound)
	ErrRuinsNotFound = errors.New(ErrMsgRuinsNotFound)
	ErrQuestNotFound = errors.New(ErrMsgQuestNotFound)
)
