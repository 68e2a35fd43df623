package leavesync

import (
	"context"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// HRClient is the capability surface the core needs from the HR system.
// The HR system is authoritative for leave decisions; the core only reads
// from it, except for the request-creation passthrough operations.
type HRClient interface {
	ListEmployees(ctx context.Context) ([]datamodel.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (datamodel.Employee, error)
	ListAbsences(ctx context.Context, employeeID string) ([]datamodel.Absence, error)
	ListLeaveRequests(ctx context.Context, employeeID string) ([]datamodel.LeaveRequest, error)
	CreateLeaveRequest(ctx context.Context, employeeID string, draft datamodel.LeaveRequestDraft) (datamodel.LeaveRequest, error)
	CancelLeaveRequest(ctx context.Context, id int64) error
	CancelAbsence(ctx context.Context, id int64) error
}

// EngagementClient is the capability surface the core needs from the
// engagement system. The bulk-sync operations (StartSync through CancelSync)
// are notification-silent; Approve and Reject are the only
// notification-emitting operations.
type EngagementClient interface {
	ListUsers(ctx context.Context) ([]datamodel.EngagementUser, error)
	// GetRequestByExternalID returns datamodel.ErrNotFound when no record
	// exists for the given external id.
	GetRequestByExternalID(ctx context.Context, externalID string) (datamodel.EngagementRequest, error)
	Approve(ctx context.Context, approverID, requestID string) error
	Reject(ctx context.Context, approverID, requestID string) error
	PatchExternalID(ctx context.Context, requestID, newExternalID string) error
	StartSync(ctx context.Context) (string, error)
	PushSyncBatch(ctx context.Context, sessionID string, items []datamodel.SyncItem) error
	CompleteSync(ctx context.Context, sessionID string) error
	CancelSync(ctx context.Context, sessionID string) error
	GetAbsencePolicies(ctx context.Context) ([]datamodel.Policy, error)
}
