package services

import "errors"

// Shared error taxonomy, mapped to HTTP status codes by the handlers layer.
// Nothing here is ever swallowed: an operation either fully applies or
// returns one of these.
var (
	// Resource lookups.
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")

	// Lifecycle.
	// ErrInvalidTransition: the requested edge does not exist in the status
	// graph. ErrPreconditionFailed: the edge exists but a guard rejected it.
	// ErrStaleState: another transition won the compare-and-swap; callers
	// should re-read the current status before retrying.
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrPreconditionFailed = errors.New("transition precondition failed")
	ErrStaleState         = errors.New("tournament status changed concurrently")

	// Group-stage finalization.
	ErrGroupStageIncomplete = errors.New("group stage not complete")
	ErrNotGroupKnockout     = errors.New("tournament format has no group stage")

	// Reward settlement.
	ErrRewardConfiguration    = errors.New("reward configuration missing or malformed")
	ErrRankingsMissing        = errors.New("no rankings recorded for tournament")
	ErrTournamentNotCompleted = errors.New("tournament is not completed")

	// Validation / auth.
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrEnrollmentNotOpen  = errors.New("tournament enrollment is not open")
	ErrEnrollmentConflict = errors.New("user is already enrolled in this tournament")
)
