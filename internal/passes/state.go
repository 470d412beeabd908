package passes

import "time"

// validateDecision checks that the pass can still be decided. Only pending
// passes accept a decision; deciding twice is an invalid transition.
func validateDecision(p *Pass, decision Status) error {
	if decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidTransition
	}
	if p.Status.Terminal() {
		return ErrTerminalState
	}
	if p.Status != StatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// movementUpdate computes the guarded mutation for a physical movement
// against p. Movement timestamps are set at most once and only while the
// pass is approved. Recording entry also closes the pass: once the holder is
// back inside the pass has served its purpose.
func movementUpdate(p *Pass, mode Movement, at time.Time) (Update, error) {
	// Repeat movements are reported as such even after closure, so the gate
	// can tell "already returned" apart from a generic terminal pass.
	switch mode {
	case MovementExit:
		if p.ActualStart != nil {
			return Update{}, ErrAlreadyCheckedOut
		}
	case MovementEntry:
		if p.ActualEnd != nil {
			return Update{}, ErrAlreadyCheckedIn
		}
	default:
		return Update{}, ErrUnknownMovement
	}

	if p.Status.Terminal() {
		return Update{}, ErrTerminalState
	}
	if p.Status != StatusApproved {
		return Update{}, ErrNotApproved
	}

	if mode == MovementExit {
		return Update{ActualStart: &at}, nil
	}

	if p.ActualStart == nil {
		return Update{}, ErrNotCheckedOutYet
	}
	closed := StatusClosed
	return Update{ActualEnd: &at, Status: &closed}, nil
}
