package leavesync

import (
	"fmt"
	"time"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

const isoDate = "2006-01-02"

// Projector maps a canonical record to the engagement system's sync-item
// shape. Pure: no I/O, no state mutation. The policy set is fixed at
// construction; the engine rebuilds the projector per run from the cached
// policy list.
type Projector struct {
	policiesByRef   map[string]datamodel.Policy
	defaultPolicyID string
}

func NewProjector(policies []datamodel.Policy, defaultPolicyID string) *Projector {
	byRef := make(map[string]datamodel.Policy, len(policies))
	for _, p := range policies {
		if p.ExternalReference != "" {
			byRef[p.ExternalReference] = p
		}
	}
	return &Projector{policiesByRef: byRef, defaultPolicyID: defaultPolicyID}
}

var statusVocabulary = map[datamodel.LeaveStatus]string{
	datamodel.LeaveStatusPending:   datamodel.EngagementStatusPending,
	datamodel.LeaveStatusApproved:  datamodel.EngagementStatusApproved,
	datamodel.LeaveStatusRejected:  datamodel.EngagementStatusRejected,
	datamodel.LeaveStatusCancelled: datamodel.EngagementStatusCancelled,
}

// Project builds the sync item for one record. A malformed date range is an
// error; the caller skips the record and keeps the run going.
func (p *Projector) Project(rec datamodel.CanonicalLeaveRecord) (datamodel.SyncItem, error) {
	if rec.Key.Start == "" || rec.Key.End == "" {
		return datamodel.SyncItem{}, fmt.Errorf("record %s has an incomplete date range (%q, %q)", rec.ExternalID, rec.Key.Start, rec.Key.End)
	}
	if _, err := time.Parse(isoDate, rec.Key.Start); err != nil {
		return datamodel.SyncItem{}, fmt.Errorf("record %s start date: %w", rec.ExternalID, err)
	}
	if _, err := time.Parse(isoDate, rec.Key.End); err != nil {
		return datamodel.SyncItem{}, fmt.Errorf("record %s end date: %w", rec.ExternalID, err)
	}

	item := datamodel.SyncItem{
		ExternalID: rec.ExternalID,
		Status:     statusVocabulary[rec.Status],
		// The engagement system expects local datetimes spanning the whole
		// first and last day.
		StartDateTime: rec.Key.Start + "T00:00:00",
		EndDateTime:   rec.Key.End + "T23:59:59",
		PolicyID:      p.resolvePolicy(rec.PolicyRef),
		Comment:       rec.Comment,
	}
	if rec.HalfDayStart {
		item.StartHalfDay = datamodel.HalfDaySecondOfFirst
	}
	if rec.HalfDayEnd {
		item.EndHalfDay = datamodel.HalfDayFirstOfLast
	}
	if !rec.LastUpdated.IsZero() {
		// Display only; never used for conflict resolution.
		item.UpstreamModified = rec.LastUpdated.Format(time.RFC3339)
	}
	return item, nil
}

func (p *Projector) resolvePolicy(reasonID string) string {
	if policy, ok := p.policiesByRef[reasonID]; ok {
		return policy.ID
	}
	return p.defaultPolicyID
}
