package datamodel

// SessionState is the lifecycle state of one bulk-replace sync session.
type SessionState int

const (
	SessionStarted SessionState = iota
	SessionPushing
	SessionCompleted
	SessionCancelled
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionStarted:
		return "STARTED"
	case SessionPushing:
		return "PUSHING"
	case SessionCompleted:
		return "COMPLETED"
	case SessionCancelled:
		return "CANCELLED"
	case SessionFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transitions are allowed.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled || s == SessionFailed
}

// SyncSession tracks one bulk-replace run against the engagement system.
// Exactly one session may be open at a time.
type SyncSession struct {
	ID    string
	State SessionState
}
