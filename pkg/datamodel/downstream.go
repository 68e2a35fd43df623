package datamodel

// Engagement-side status vocabulary.
const (
	EngagementStatusPending   = "PENDING"
	EngagementStatusApproved  = "APPROVED"
	EngagementStatusRejected  = "REJECTED"
	EngagementStatusCancelled = "CANCELLED"
)

// Half-day position vocabulary of the engagement system. A half day at the
// start of a leave means the leave begins in the second half of its first
// day; a half day at the end means it finishes after the first half of its
// last day.
const (
	HalfDaySecondOfFirst = "SECOND_HALF_OF_FIRST_DAY"
	HalfDayFirstOfLast   = "FIRST_HALF_OF_LAST_DAY"
)

// EngagementUser is the engagement system's view of one user, reduced to
// what identity matching needs.
type EngagementUser struct {
	ID    string
	Email string
}

// EngagementRequest is the engagement system's current state of one absence
// request, fetched by external id ahead of notification decisions.
type EngagementRequest struct {
	ID         string // engagement-side request id, used for patching
	ExternalID string
	Status     string // engagement status vocabulary
}

// Pending reports whether the downstream record still awaits a decision.
func (r EngagementRequest) Pending() bool {
	return r.Status == EngagementStatusPending
}

// Policy is one absence policy configured on the engagement side. The
// external reference links it to an upstream leave-reason id.
type Policy struct {
	ID                string
	Name              string
	ExternalReference string
}

// SyncItem is one element of a bulk-replace push: the engagement system's
// shape of a projected canonical record.
type SyncItem struct {
	ExternalID       string `json:"externalId"`
	Status           string `json:"status"`
	StartDateTime    string `json:"startDateTime"` // local datetime, e.g. "2025-01-10T00:00:00"
	EndDateTime      string `json:"endDateTime"`
	StartHalfDay     string `json:"startHalfDay,omitempty"`
	EndHalfDay       string `json:"endHalfDay,omitempty"`
	PolicyID         string `json:"policyId"`
	Comment          string `json:"comment,omitempty"`
	UpstreamModified string `json:"upstreamModified,omitempty"` // display only
}
