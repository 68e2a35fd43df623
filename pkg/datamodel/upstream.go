package datamodel

import "time"

// Employee is the HR system's view of one employee, reduced to the attributes
// the bridge needs: the shared reference used for identity matching and the
// supervisor attribute used for approver resolution.
type Employee struct {
	ID        string
	Email     string
	ManagerID string
}

// Decision states as reported by the HR system on a leave request. The
// upstream vocabulary is not fully documented; "declined" and "rejected" are
// both observed in the wild.
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionDeclined = "declined"
)

// LeaveRequest is one entry of the HR system's pending/decided request
// collection.
type LeaveRequest struct {
	ID           int64
	StartDate    string // ISO date
	EndDate      string
	Decision     string // one of the Decision* constants
	HalfDayStart bool
	HalfDayEnd   bool
	ReasonID     string // upstream leave-reason id
	Comment      string
	// Free-form fields the rejection reason may hide in. The upstream schema
	// does not name these consistently across tenants.
	StatusComment   string
	ApprovalComment string
	Note            string
	UpdatedAt       time.Time
}

// Decided reports whether the HR side has ruled on the request.
func (r LeaveRequest) Decided() bool {
	return r.Decision != DecisionPending && r.Decision != ""
}

// Rejected reports whether the request was turned down, under either
// upstream spelling.
func (r LeaveRequest) Rejected() bool {
	return r.Decision == DecisionRejected || r.Decision == DecisionDeclined
}

// Absence is one entry of the HR system's approved-absence collection.
type Absence struct {
	ID           int64
	StartDate    string
	EndDate      string
	Cancelled    bool
	HalfDayStart bool
	HalfDayEnd   bool
	ReasonID     string
	Comment      string
	UpdatedAt    time.Time
}

// LeaveRequestDraft is the payload for creating a new leave request upstream.
type LeaveRequestDraft struct {
	StartDate    string
	EndDate      string
	HalfDayStart bool
	HalfDayEnd   bool
	ReasonID     string
	Comment      string
}
