package passes

import "errors"

var (
	// Validation failures on pass creation.
	ErrEmptyReason    = errors.New("reason must not be empty")
	ErrReasonTooLong  = errors.New("reason exceeds maximum length")
	ErrInvalidWindow  = errors.New("pass window start must be before end")
	ErrWindowTooFar   = errors.New("pass window must begin today or tomorrow")
	ErrOverlappingPass = errors.New("owner already has a pass for an overlapping window")

	// Lifecycle violations.
	ErrInvalidTransition = errors.New("pass has already been decided")
	ErrTerminalState     = errors.New("pass is in a terminal state")
	ErrNotApproved       = errors.New("pass is not approved")
	ErrAlreadyCheckedOut = errors.New("pass has already been used to exit")
	ErrAlreadyCheckedIn  = errors.New("pass has already been used to enter")
	ErrNotCheckedOutYet  = errors.New("entry recorded before exit")
	ErrUnknownMovement   = errors.New("unknown movement mode")

	// Authorization.
	ErrNotPermitted = errors.New("identity is not permitted to perform this operation")

	// Storage collaborator outcomes.
	ErrPassNotFound    = errors.New("pass not found")
	ErrVersionConflict = errors.New("pass was modified concurrently")
)
