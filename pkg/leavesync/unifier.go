package leavesync

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// Unifier merges the HR system's two parallel leave collections (pending or
// decided requests, and approved absences) into one canonical record set per
// employee. The two collections describe the same logical leave events under
// different numeric IDs; the date range is the join key.
type Unifier struct {
	extractors []ReasonExtractor
}

func NewUnifier(extractors []ReasonExtractor) *Unifier {
	if len(extractors) == 0 {
		extractors, _ = ExtractorsForFields(DefaultReasonFieldOrder())
	}
	return &Unifier{extractors: extractors}
}

// Unify produces the employee's canonical record set. Within the result the
// identity key (start, end) is unique: a request and the absence it turned
// into collapse into one record.
func (u *Unifier) Unify(requests []datamodel.LeaveRequest, absences []datamodel.Absence) []datamodel.CanonicalLeaveRecord {
	// Index requests by date range. Duplicate submissions can share a range;
	// the first in upstream iteration order wins.
	requestsByKey := make(map[datamodel.IdentityKey]int, len(requests))
	for i := range requests {
		key := datamodel.IdentityKey{Start: requests[i].StartDate, End: requests[i].EndDate}
		if _, exists := requestsByKey[key]; exists {
			zap.S().Warnf("Duplicate leave request for range %s to %s (id %d), keeping first", key.Start, key.End, requests[i].ID)
			continue
		}
		requestsByKey[key] = i
	}

	records := make([]datamodel.CanonicalLeaveRecord, 0, len(absences)+len(requests))
	emitted := make(map[datamodel.IdentityKey]bool)
	consumed := make(map[int]bool)

	for _, a := range absences {
		key := datamodel.IdentityKey{Start: a.StartDate, End: a.EndDate}
		if emitted[key] {
			continue
		}

		if a.Cancelled {
			// No request linkage needed; the absence's own id identifies the
			// record downstream.
			records = append(records, datamodel.CanonicalLeaveRecord{
				Key:          key,
				ExternalID:   strconv.FormatInt(a.ID, 10),
				AbsenceID:    strconv.FormatInt(a.ID, 10),
				Status:       datamodel.LeaveStatusCancelled,
				HalfDayStart: a.HalfDayStart,
				HalfDayEnd:   a.HalfDayEnd,
				Comment:      a.Comment,
				PolicyRef:    a.ReasonID,
				LastUpdated:  a.UpdatedAt,
			})
			emitted[key] = true
			continue
		}

		rec := datamodel.CanonicalLeaveRecord{
			Key:          key,
			AbsenceID:    strconv.FormatInt(a.ID, 10),
			Status:       datamodel.LeaveStatusApproved,
			HalfDayStart: a.HalfDayStart,
			HalfDayEnd:   a.HalfDayEnd,
			Comment:      a.Comment,
			PolicyRef:    a.ReasonID,
			LastUpdated:  a.UpdatedAt,
		}
		if i, ok := requestsByKey[key]; ok {
			// The downstream side already knows this leave event under the
			// request's id; keep that identity.
			rec.ExternalID = strconv.FormatInt(requests[i].ID, 10)
			consumed[i] = true
		} else {
			// Absence created outside the normal request flow.
			rec.ExternalID = strconv.FormatInt(a.ID, 10)
		}
		records = append(records, rec)
		emitted[key] = true
	}

	// Requests not consumed by an absence must survive the full-replace sync
	// explicitly: omission would delete them downstream.
	for i := range requests {
		if consumed[i] {
			continue
		}
		r := requests[i]
		key := datamodel.IdentityKey{Start: r.StartDate, End: r.EndDate}
		if emitted[key] {
			continue
		}

		rec := datamodel.CanonicalLeaveRecord{
			Key:          key,
			ExternalID:   strconv.FormatInt(r.ID, 10),
			Status:       datamodel.LeaveStatusPending,
			HalfDayStart: r.HalfDayStart,
			HalfDayEnd:   r.HalfDayEnd,
			Comment:      r.Comment,
			PolicyRef:    r.ReasonID,
			LastUpdated:  r.UpdatedAt,
		}
		switch {
		case r.Rejected():
			rec.Status = datamodel.LeaveStatusRejected
			if reason := ExtractReason(r, u.extractors); reason != "" {
				rec.Comment = annotateComment(r.Comment, reason)
			}
		case r.Decision == datamodel.DecisionApproved:
			// Approved upstream but the absence has not materialized yet.
			// Emit as approved under the request id; the reconciler rewrites
			// the identity once the absence appears.
			rec.Status = datamodel.LeaveStatusApproved
		}
		records = append(records, rec)
		emitted[key] = true
	}

	return records
}

func annotateComment(comment, reason string) string {
	if comment == "" {
		return reason
	}
	return fmt.Sprintf("%s (%s)", comment, reason)
}
