package leavesync

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// IdentityReconciler tracks the upstream identifier change a leave event
// goes through on approval: the pending request id is superseded by the
// approved-absence id. The downstream record must follow, or the next bulk
// sync would create a second entry for the same leave event.
type IdentityReconciler struct {
	hr         HRClient
	engagement EngagementClient
}

func NewIdentityReconciler(hr HRClient, engagement EngagementClient) *IdentityReconciler {
	return &IdentityReconciler{hr: hr, engagement: engagement}
}

// Reconcile rewrites the downstream record's external id to the absence id
// and updates the in-memory record so everything later in the run already
// uses the new identity. downstreamID is the engagement system's own id of
// the record being patched.
//
// When the HR system has not materialized the absence yet, reconciliation
// is deferred to the next scheduled run; that is not an error.
func (r *IdentityReconciler) Reconcile(ctx context.Context, mapping datamodel.UserMapping, rec *datamodel.CanonicalLeaveRecord, downstreamID string) error {
	absenceID := rec.AbsenceID
	if absenceID == "" {
		// The record came from an approved request with no linked absence in
		// this run's fetch. Look at the employee's current absence list; the
		// absence may have appeared since.
		id, err := r.findAbsence(ctx, mapping.HREmployeeID, rec.Key)
		if err != nil {
			return err
		}
		if id == "" {
			zap.S().Debugf("No absence for %s to %s yet (employee %s), deferring reconciliation", rec.Key.Start, rec.Key.End, mapping.HREmployeeID)
			return nil
		}
		absenceID = id
	}

	if absenceID == rec.ExternalID {
		return nil
	}

	if err := r.engagement.PatchExternalID(ctx, downstreamID, absenceID); err != nil {
		return fmt.Errorf("patching external id %s to %s: %w", rec.ExternalID, absenceID, err)
	}
	zap.S().Infof("Reconciled external id %s to absence id %s (employee %s)", rec.ExternalID, absenceID, mapping.HREmployeeID)
	rec.ExternalID = absenceID
	rec.AbsenceID = absenceID
	return nil
}

func (r *IdentityReconciler) findAbsence(ctx context.Context, employeeID string, key datamodel.IdentityKey) (string, error) {
	absences, err := r.hr.ListAbsences(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("refreshing absences for %s: %w", employeeID, err)
	}
	for _, a := range absences {
		if a.Cancelled {
			continue
		}
		if a.StartDate == key.Start && a.EndDate == key.End {
			return strconv.FormatInt(a.ID, 10), nil
		}
	}
	return "", nil
}
