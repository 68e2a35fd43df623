package datamodel

import (
	"errors"
	"time"
)

// ErrNotFound is returned by engagement-side lookups when no record exists
// for the given external identifier.
var ErrNotFound = errors.New("record not found")

// LeaveStatus is the canonical status of a leave event, unified across both
// upstream representations.
type LeaveStatus int

const (
	LeaveStatusPending LeaveStatus = iota
	LeaveStatusApproved
	LeaveStatusRejected
	LeaveStatusCancelled
)

func (s LeaveStatus) String() string {
	switch s {
	case LeaveStatusPending:
		return "PENDING"
	case LeaveStatusApproved:
		return "APPROVED"
	case LeaveStatusRejected:
		return "REJECTED"
	case LeaveStatusCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// IdentityKey correlates a leave request with its resulting absence. The HR
// system assigns different numeric IDs to the same logical leave event at
// different lifecycle stages, so the date range is the only stable identity.
type IdentityKey struct {
	Start string // ISO date, e.g. "2025-01-10"
	End   string
}

// CanonicalLeaveRecord is the unified view of one logical leave event per
// employee. Within one employee's record set the identity key is unique.
type CanonicalLeaveRecord struct {
	Key          IdentityKey
	ExternalID   string // identifier currently used on the engagement side
	AbsenceID    string // linked HR absence id, empty until the absence materializes
	Status       LeaveStatus
	HalfDayStart bool
	HalfDayEnd   bool
	Comment      string
	PolicyRef    string // upstream leave-reason id, resolved to a policy on projection
	LastUpdated  time.Time
}

// UserMapping binds an engagement-side identity to an HR-side identity via a
// shared reference attribute. Built by the mapping directory, read-only
// everywhere else.
type UserMapping struct {
	EngagementUserID string
	HREmployeeID     string
	SharedRef        string
}
