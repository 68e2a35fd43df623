package leavesync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// NotifyOutcome describes what the trigger did for one candidate record.
type NotifyOutcome int

const (
	// NotifyNone: the record was not a notification candidate.
	NotifyNone NotifyOutcome = iota
	// NotifySkipped: no downstream record exists yet, or it was already
	// decided in a prior run.
	NotifySkipped
	// NotifyApproved: the approve operation was invoked.
	NotifyApproved
	// NotifyRejected: the reject operation was invoked.
	NotifyRejected
)

// NotificationTrigger runs before every bulk sync. The bulk-replace API is
// notification-silent: pushing a PENDING to decided flip through it would
// never alert the user. Only the per-item decision operations emit
// notifications, so those fire first; the bulk push that follows is then
// idempotent with respect to the flipped state.
type NotificationTrigger struct {
	engagement EngagementClient
	resolver   ApproverResolver
	reconciler *IdentityReconciler
}

func NewNotificationTrigger(engagement EngagementClient, resolver ApproverResolver, reconciler *IdentityReconciler) *NotificationTrigger {
	return &NotificationTrigger{
		engagement: engagement,
		resolver:   resolver,
		reconciler: reconciler,
	}
}

// Notify inspects the downstream state of one candidate and calls the
// decision operation when the record is still pending there. rec may be
// rewritten to the absence identity as a side effect of a confirmed
// approval (or of discovering an earlier reconciliation).
func (t *NotificationTrigger) Notify(ctx context.Context, mapping datamodel.UserMapping, rec *datamodel.CanonicalLeaveRecord) (NotifyOutcome, error) {
	if rec.Status != datamodel.LeaveStatusApproved && rec.Status != datamodel.LeaveStatusRejected {
		return NotifyNone, nil
	}

	req, err := t.engagement.GetRequestByExternalID(ctx, rec.ExternalID)
	if errors.Is(err, datamodel.ErrNotFound) {
		// A prior run may already have reconciled the downstream record to
		// the absence id; look there before giving up.
		if rec.AbsenceID != "" && rec.AbsenceID != rec.ExternalID {
			req, err = t.engagement.GetRequestByExternalID(ctx, rec.AbsenceID)
			if errors.Is(err, datamodel.ErrNotFound) {
				return NotifySkipped, nil
			}
			if err != nil {
				return NotifySkipped, fmt.Errorf("looking up %s downstream: %w", rec.AbsenceID, err)
			}
			// Keep projecting under the reconciled identity.
			rec.ExternalID = rec.AbsenceID
		} else {
			// Nothing downstream to notify.
			return NotifySkipped, nil
		}
	} else if err != nil {
		return NotifySkipped, fmt.Errorf("looking up %s downstream: %w", rec.ExternalID, err)
	}

	if !req.Pending() {
		// Already notified in a prior run. A deferred reconciliation may
		// still be outstanding.
		if rec.Status == datamodel.LeaveStatusApproved {
			if err := t.reconciler.Reconcile(ctx, mapping, rec, req.ID); err != nil {
				zap.S().Warnf("Deferred identity reconciliation failed for %s: %s", rec.ExternalID, err)
			}
		}
		return NotifySkipped, nil
	}

	approver, err := t.resolver.Resolve(ctx, mapping)
	if err != nil {
		return NotifySkipped, fmt.Errorf("resolving approver for %s: %w", mapping.HREmployeeID, err)
	}

	switch rec.Status {
	case datamodel.LeaveStatusApproved:
		if err := t.engagement.Approve(ctx, approver, req.ID); err != nil {
			return NotifySkipped, fmt.Errorf("approving %s: %w", rec.ExternalID, err)
		}
		zap.S().Infof("Approved %s downstream (approver %s)", rec.ExternalID, approver)
		// Non-fatal: a missing absence defers to the next run.
		if err := t.reconciler.Reconcile(ctx, mapping, rec, req.ID); err != nil {
			zap.S().Warnf("Identity reconciliation failed for %s: %s", rec.ExternalID, err)
		}
		return NotifyApproved, nil
	default:
		if err := t.engagement.Reject(ctx, approver, req.ID); err != nil {
			return NotifySkipped, fmt.Errorf("rejecting %s: %w", rec.ExternalID, err)
		}
		zap.S().Infof("Rejected %s downstream (approver %s)", rec.ExternalID, approver)
		return NotifyRejected, nil
	}
}
