package leavesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

func TestUnify_RequestAndAbsenceCollapse(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 100, StartDate: "2025-01-10", EndDate: "2025-01-12", Decision: datamodel.DecisionApproved},
	}
	absences := []datamodel.Absence{
		{ID: 900, StartDate: "2025-01-10", EndDate: "2025-01-12", Cancelled: false},
	}

	records := u.Unify(requests, absences)
	require.Len(t, records, 1)
	assert.Equal(t, "100", records[0].ExternalID)
	assert.Equal(t, "900", records[0].AbsenceID)
	assert.Equal(t, datamodel.LeaveStatusApproved, records[0].Status)
}

func TestUnify_AbsenceWithoutRequest(t *testing.T) {
	u := NewUnifier(nil)

	absences := []datamodel.Absence{
		{ID: 901, StartDate: "2025-02-01", EndDate: "2025-02-05"},
	}

	records := u.Unify(nil, absences)
	require.Len(t, records, 1)
	assert.Equal(t, "901", records[0].ExternalID)
	assert.Equal(t, datamodel.LeaveStatusApproved, records[0].Status)
}

func TestUnify_PendingRequestSurvives(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 101, StartDate: "2025-03-01", EndDate: "2025-03-02", Decision: datamodel.DecisionPending},
	}

	records := u.Unify(requests, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "101", records[0].ExternalID)
	assert.Equal(t, datamodel.LeaveStatusPending, records[0].Status)
}

func TestUnify_RejectedRequestCarriesReason(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{
			ID:            102,
			StartDate:     "2025-03-10",
			EndDate:       "2025-03-11",
			Decision:      datamodel.DecisionDeclined,
			Comment:       "ski trip",
			StatusComment: "team offsite that week",
		},
	}

	records := u.Unify(requests, nil)
	require.Len(t, records, 1)
	assert.Equal(t, datamodel.LeaveStatusRejected, records[0].Status)
	assert.Equal(t, "ski trip (team offsite that week)", records[0].Comment)
}

func TestUnify_RejectedWithoutReasonKeepsComment(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 103, StartDate: "2025-04-01", EndDate: "2025-04-01", Decision: datamodel.DecisionRejected, Comment: "dentist"},
	}

	records := u.Unify(requests, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "dentist", records[0].Comment)
}

func TestUnify_ApprovedRequestWithoutAbsenceYet(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 104, StartDate: "2025-05-01", EndDate: "2025-05-02", Decision: datamodel.DecisionApproved},
	}

	records := u.Unify(requests, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "104", records[0].ExternalID)
	assert.Empty(t, records[0].AbsenceID)
	assert.Equal(t, datamodel.LeaveStatusApproved, records[0].Status)
}

func TestUnify_CancelledAbsence(t *testing.T) {
	u := NewUnifier(nil)

	absences := []datamodel.Absence{
		{ID: 902, StartDate: "2025-06-01", EndDate: "2025-06-03", Cancelled: true},
	}

	records := u.Unify(nil, absences)
	require.Len(t, records, 1)
	assert.Equal(t, "902", records[0].ExternalID)
	assert.Equal(t, datamodel.LeaveStatusCancelled, records[0].Status)
}

func TestUnify_IdentityKeyUniqueness(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 1, StartDate: "2025-01-01", EndDate: "2025-01-02", Decision: datamodel.DecisionPending},
		{ID: 2, StartDate: "2025-02-01", EndDate: "2025-02-02", Decision: datamodel.DecisionApproved},
		{ID: 3, StartDate: "2025-03-01", EndDate: "2025-03-02", Decision: datamodel.DecisionRejected},
	}
	absences := []datamodel.Absence{
		{ID: 10, StartDate: "2025-02-01", EndDate: "2025-02-02"},
		{ID: 11, StartDate: "2025-04-01", EndDate: "2025-04-02"},
	}

	records := u.Unify(requests, absences)
	require.Len(t, records, 4)

	seen := map[datamodel.IdentityKey]bool{}
	for _, r := range records {
		assert.Falsef(t, seen[r.Key], "duplicate identity key %v", r.Key)
		seen[r.Key] = true
	}
}

func TestUnify_DuplicateDateRangePrefersFirst(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 5, StartDate: "2025-07-01", EndDate: "2025-07-02", Decision: datamodel.DecisionPending},
		{ID: 6, StartDate: "2025-07-01", EndDate: "2025-07-02", Decision: datamodel.DecisionPending},
	}

	records := u.Unify(requests, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0].ExternalID)
}

func TestUnify_DuplicateRangeAbsenceMatchPrefersFirstRequest(t *testing.T) {
	u := NewUnifier(nil)

	requests := []datamodel.LeaveRequest{
		{ID: 7, StartDate: "2025-08-01", EndDate: "2025-08-02", Decision: datamodel.DecisionApproved},
		{ID: 8, StartDate: "2025-08-01", EndDate: "2025-08-02", Decision: datamodel.DecisionApproved},
	}
	absences := []datamodel.Absence{
		{ID: 20, StartDate: "2025-08-01", EndDate: "2025-08-02"},
	}

	records := u.Unify(requests, absences)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].ExternalID)
}

func TestUnify_CarriesAbsenceMetadata(t *testing.T) {
	u := NewUnifier(nil)

	updated := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	absences := []datamodel.Absence{
		{
			ID:           30,
			StartDate:    "2025-09-01",
			EndDate:      "2025-09-05",
			HalfDayStart: true,
			HalfDayEnd:   true,
			ReasonID:     "42",
			Comment:      "vacation",
			UpdatedAt:    updated,
		},
	}

	records := u.Unify(nil, absences)
	require.Len(t, records, 1)
	assert.True(t, records[0].HalfDayStart)
	assert.True(t, records[0].HalfDayEnd)
	assert.Equal(t, "42", records[0].PolicyRef)
	assert.Equal(t, "vacation", records[0].Comment)
	assert.Equal(t, updated, records[0].LastUpdated)
}
