package passes

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusClosed   Status = "closed"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusClosed
}

type Movement string

const (
	MovementExit  Movement = "exit"
	MovementEntry Movement = "entry"
)

// Pass is an authorization record permitting a bounded-time physical exit.
// The requested window is half-open: [StartTime, EndTime).
type Pass struct {
	ID            string
	OwnerID       string
	Reason        string
	Status        Status
	StartTime     time.Time
	EndTime       time.Time
	BindingSecret string
	ActualStart   *time.Time
	ActualEnd     *time.Time
	CreatedAt     time.Time
	Version       int64
}

// Overlaps reports whether the pass window intersects [start, end).
func (p *Pass) Overlaps(start, end time.Time) bool {
	return p.StartTime.Before(end) && start.Before(p.EndTime)
}
