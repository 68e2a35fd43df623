package leavesync

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// ApproverResolver picks the engagement-side identity that approve/reject
// calls are issued under. Pluggable because the upstream behavior around
// self-approval is not fully verified; once it is, the strategy can be
// swapped without touching the trigger.
type ApproverResolver interface {
	Resolve(ctx context.Context, absentee datamodel.UserMapping) (string, error)
}

// StaticApproverResolver always answers with one configured identity.
type StaticApproverResolver struct {
	ApproverID string
}

func (r StaticApproverResolver) Resolve(_ context.Context, _ datamodel.UserMapping) (string, error) {
	if r.ApproverID == "" {
		return "", fmt.Errorf("no default approver configured")
	}
	return r.ApproverID, nil
}

// mappingSource is the slice of the directory the resolver needs.
type mappingSource interface {
	Mappings(ctx context.Context) ([]datamodel.UserMapping, error)
}

// ManagerApproverResolver resolves the absentee's manager from the HR
// profile and maps it to an engagement identity. Results are cached per
// absentee. Falls back to a configured default when the manager is unknown,
// unmapped, or would be the absentee themselves (self-approval is suspected
// to suppress notifications).
type ManagerApproverResolver struct {
	hr        HRClient
	directory mappingSource
	fallback  string
	cache     *lru.Cache
}

func NewManagerApproverResolver(hr HRClient, directory mappingSource, fallback string, cacheSize int) (*ManagerApproverResolver, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &ManagerApproverResolver{
		hr:        hr,
		directory: directory,
		fallback:  fallback,
		cache:     cache,
	}, nil
}

func (r *ManagerApproverResolver) Resolve(ctx context.Context, absentee datamodel.UserMapping) (string, error) {
	if cached, ok := r.cache.Get(absentee.HREmployeeID); ok {
		return cached.(string), nil
	}

	approver := r.resolveUncached(ctx, absentee)
	if approver == "" {
		return "", fmt.Errorf("no approver resolvable for employee %s and no default configured", absentee.HREmployeeID)
	}
	r.cache.Add(absentee.HREmployeeID, approver)
	return approver, nil
}

func (r *ManagerApproverResolver) resolveUncached(ctx context.Context, absentee datamodel.UserMapping) string {
	employee, err := r.hr.GetEmployee(ctx, absentee.HREmployeeID)
	if err != nil {
		zap.S().Warnf("Could not load HR profile for %s, using default approver: %s", absentee.HREmployeeID, err)
		return r.fallback
	}
	if employee.ManagerID == "" {
		return r.fallback
	}

	mappings, err := r.directory.Mappings(ctx)
	if err != nil {
		zap.S().Warnf("Mapping lookup failed while resolving approver for %s: %s", absentee.HREmployeeID, err)
		return r.fallback
	}
	for _, m := range mappings {
		if m.HREmployeeID != employee.ManagerID {
			continue
		}
		if m.EngagementUserID == absentee.EngagementUserID {
			// Self-approval, avoid it.
			return r.fallback
		}
		return m.EngagementUserID
	}
	return r.fallback
}
