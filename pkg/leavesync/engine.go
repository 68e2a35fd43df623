package leavesync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

const policiesCacheKey = "policies"

// EngineConfig carries the tunables of the reconciliation engine.
type EngineConfig struct {
	// BatchSize caps items per push call, default and maximum 100.
	BatchSize int
	// DefaultPolicyID is used when no policy matches a record's leave
	// reason.
	DefaultPolicyID string
	// PolicyCacheTTL bounds how long the engagement policy list is reused
	// across runs.
	PolicyCacheTTL time.Duration
	// ReasonFieldOrder overrides the rejection-reason extraction order,
	// empty means DefaultReasonFieldOrder.
	ReasonFieldOrder []string
}

// Engine drives the reconciliation pipeline: unify each employee's upstream
// leave state, fire notification calls for fresh decisions, then replace the
// downstream state through one bulk sync session. Runs are sequential over
// employees on purpose; the HR API has a request-rate ceiling and the engine
// must not fan out against it.
type Engine struct {
	hr              HRClient
	engagement      EngagementClient
	unifier         *Unifier
	trigger         *NotificationTrigger
	batchSize       int
	defaultPolicyID string
	policyCache     *internal.TTLCache[[]datamodel.Policy]
	runLog          *internal.RunLog
}

func NewEngine(cfg EngineConfig, hr HRClient, engagement EngagementClient, resolver ApproverResolver, runLog *internal.RunLog) (*Engine, error) {
	extractors, err := ExtractorsForFields(orDefault(cfg.ReasonFieldOrder))
	if err != nil {
		return nil, err
	}
	ttl := cfg.PolicyCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	reconciler := NewIdentityReconciler(hr, engagement)
	return &Engine{
		hr:              hr,
		engagement:      engagement,
		unifier:         NewUnifier(extractors),
		trigger:         NewNotificationTrigger(engagement, resolver, reconciler),
		batchSize:       cfg.BatchSize,
		defaultPolicyID: cfg.DefaultPolicyID,
		policyCache:     internal.NewTTLCache[[]datamodel.Policy](ttl),
		runLog:          runLog,
	}, nil
}

func orDefault(fields []string) []string {
	if len(fields) == 0 {
		return DefaultReasonFieldOrder()
	}
	return fields
}

// RunFullSync reconciles every mapped employee and replaces the downstream
// absence-request set through one bulk session. Idempotent: unchanged
// upstream state produces no additional notifications and the same final
// downstream state.
func (e *Engine) RunFullSync(ctx context.Context, mappings []datamodel.UserMapping) (datamodel.FullSyncReport, error) {
	report := datamodel.FullSyncReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Errors:    []string{},
	}
	zap.S().Infof("Starting full sync run %s for %d mapped employees", report.RunID, len(mappings))

	projector, err := e.buildProjector(ctx)
	if err != nil {
		return e.finishFullSync(report, fmt.Errorf("loading absence policies: %w", err))
	}

	var items []datamodel.SyncItem
	for _, mapping := range mappings {
		records, err := e.collect(ctx, mapping)
		if err != nil {
			// Per-employee isolation: one broken upstream fetch must not
			// starve everyone else of this run.
			report.Errors = append(report.Errors, err.Error())
			metricRunErrors.Inc()
			zap.S().Warnf("Run %s: skipping employee %s: %s", report.RunID, mapping.HREmployeeID, err)
			continue
		}

		for i := range records {
			rec := &records[i]

			outcome, err := e.trigger.Notify(ctx, mapping, rec)
			if err != nil {
				// The item still goes into the push in its best-known
				// status; data consistency survives a failed notification.
				report.Errors = append(report.Errors, err.Error())
				metricRunErrors.Inc()
				zap.S().Warnf("Run %s: notification for %s failed: %s", report.RunID, rec.ExternalID, err)
			}
			switch outcome {
			case NotifyApproved:
				report.ApprovedCount++
				metricNotifications.WithLabelValues("approve").Inc()
			case NotifyRejected:
				report.RejectedCount++
				metricNotifications.WithLabelValues("reject").Inc()
			}

			item, err := projector.Project(*rec)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				metricRunErrors.Inc()
				zap.S().Warnf("Run %s: skipping record: %s", report.RunID, err)
				continue
			}
			items = append(items, item)
		}
	}

	session := NewSessionManager(e.engagement, e.batchSize)
	if _, err := session.Start(ctx); err != nil {
		// Nothing to clean up, the session never opened.
		return e.finishFullSync(report, err)
	}
	if err := session.Push(ctx, items); err != nil {
		session.Cancel(ctx)
		return e.finishFullSync(report, err)
	}
	if err := session.Complete(ctx); err != nil {
		session.Cancel(ctx)
		return e.finishFullSync(report, err)
	}

	report.Synced = len(items)
	metricRecordsSynced.Add(float64(len(items)))
	return e.finishFullSync(report, nil)
}

// RunApprovalCheck runs only the notification step, usable on a much
// tighter polling interval than the full sync since it touches no session.
func (e *Engine) RunApprovalCheck(ctx context.Context, mappings []datamodel.UserMapping) (datamodel.ApprovalCheckReport, error) {
	report := datamodel.ApprovalCheckReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Errors:    []string{},
	}
	zap.S().Debugf("Starting approval check run %s for %d mapped employees", report.RunID, len(mappings))

	for _, mapping := range mappings {
		records, err := e.collect(ctx, mapping)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			metricRunErrors.Inc()
			zap.S().Warnf("Run %s: skipping employee %s: %s", report.RunID, mapping.HREmployeeID, err)
			continue
		}

		for i := range records {
			rec := &records[i]
			if rec.Status != datamodel.LeaveStatusApproved && rec.Status != datamodel.LeaveStatusRejected {
				continue
			}
			outcome, err := e.trigger.Notify(ctx, mapping, rec)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				metricRunErrors.Inc()
				zap.S().Warnf("Run %s: notification for %s failed: %s", report.RunID, rec.ExternalID, err)
				continue
			}
			switch outcome {
			case NotifyApproved:
				report.Approved++
				metricNotifications.WithLabelValues("approve").Inc()
			case NotifyRejected:
				report.Rejected++
				metricNotifications.WithLabelValues("reject").Inc()
			case NotifySkipped:
				report.Skipped++
			}
		}
	}

	report.FinishedAt = time.Now()
	metricSyncRuns.WithLabelValues("approval-check", "completed").Inc()
	if e.runLog != nil {
		e.runLog.Append(internal.RunLogEntry{
			RunID:      report.RunID,
			Kind:       "approval-check",
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
			Summary:    fmt.Sprintf("approved %d, rejected %d, skipped %d", report.Approved, report.Rejected, report.Skipped),
			Errors:     report.Errors,
		})
	}
	return report, nil
}

// collect fetches both upstream collections for one employee and unifies
// them.
func (e *Engine) collect(ctx context.Context, mapping datamodel.UserMapping) ([]datamodel.CanonicalLeaveRecord, error) {
	requests, err := e.hr.ListLeaveRequests(ctx, mapping.HREmployeeID)
	if err != nil {
		return nil, fmt.Errorf("fetching leave requests for %s: %w", mapping.HREmployeeID, err)
	}
	absences, err := e.hr.ListAbsences(ctx, mapping.HREmployeeID)
	if err != nil {
		return nil, fmt.Errorf("fetching absences for %s: %w", mapping.HREmployeeID, err)
	}
	return e.unifier.Unify(requests, absences), nil
}

func (e *Engine) buildProjector(ctx context.Context) (*Projector, error) {
	policies, found := e.policyCache.Get(policiesCacheKey)
	if !found {
		var err error
		policies, err = e.engagement.GetAbsencePolicies(ctx)
		if err != nil {
			return nil, err
		}
		e.policyCache.Set(policiesCacheKey, policies)
	}
	return NewProjector(policies, e.defaultPolicyID), nil
}

func (e *Engine) finishFullSync(report datamodel.FullSyncReport, err error) (datamodel.FullSyncReport, error) {
	report.FinishedAt = time.Now()
	result := "completed"
	if err != nil {
		result = "failed"
		report.Errors = append(report.Errors, err.Error())
	}
	metricSyncRuns.WithLabelValues("full-sync", result).Inc()
	if e.runLog != nil {
		e.runLog.Append(internal.RunLogEntry{
			RunID:      report.RunID,
			Kind:       "full-sync",
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
			Summary:    fmt.Sprintf("synced %d, approved %d, rejected %d (%s)", report.Synced, report.ApprovedCount, report.RejectedCount, result),
			Errors:     report.Errors,
		})
	}
	if err != nil {
		zap.S().Errorf("Full sync run %s failed: %s", report.RunID, err)
		return report, err
	}
	zap.S().Infof("Full sync run %s completed: %d synced, %d approved, %d rejected, %d errors", report.RunID, report.Synced, report.ApprovedCount, report.RejectedCount, len(report.Errors))
	return report, nil
}
