package leavesync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

const mappingsCacheKey = "mappings"

// MappingDirectory binds engagement identities to HR identities via the
// shared reference attribute (the work email). The directory owns the
// mapping set exclusively; everyone else reads it. On TTL expiry the set is
// rebuilt wholesale from a full scan of both systems, never mutated
// partially.
type MappingDirectory struct {
	hr         HRClient
	engagement EngagementClient
	cache      *internal.TTLCache[[]datamodel.UserMapping]
}

func NewMappingDirectory(hr HRClient, engagement EngagementClient, ttl time.Duration) *MappingDirectory {
	return &MappingDirectory{
		hr:         hr,
		engagement: engagement,
		cache:      internal.NewTTLCache[[]datamodel.UserMapping](ttl),
	}
}

// Mappings returns the current mapping set, rebuilding it when the cached
// set has expired. Employees without a counterpart on the engagement side
// are valid and simply excluded from sync.
func (d *MappingDirectory) Mappings(ctx context.Context) ([]datamodel.UserMapping, error) {
	if mappings, found := d.cache.Get(mappingsCacheKey); found {
		return mappings, nil
	}

	mappings, err := d.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	d.cache.Set(mappingsCacheKey, mappings)
	return mappings, nil
}

// Invalidate forces a rebuild on the next Mappings call.
func (d *MappingDirectory) Invalidate() {
	d.cache.Invalidate(mappingsCacheKey)
}

func (d *MappingDirectory) rebuild(ctx context.Context) ([]datamodel.UserMapping, error) {
	employees, err := d.hr.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning HR employees: %w", err)
	}
	users, err := d.engagement.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning engagement users: %w", err)
	}

	usersByRef := make(map[string]datamodel.EngagementUser, len(users))
	for _, u := range users {
		ref := normalizeRef(u.Email)
		if ref == "" {
			continue
		}
		if _, exists := usersByRef[ref]; exists {
			zap.S().Warnf("Multiple engagement users share reference %q, keeping first", ref)
			continue
		}
		usersByRef[ref] = u
	}

	mappings := make([]datamodel.UserMapping, 0, len(employees))
	seenEmployees := make(map[string]bool, len(employees))
	claimedUsers := make(map[string]bool, len(users))
	for _, e := range employees {
		if seenEmployees[e.ID] {
			continue
		}
		seenEmployees[e.ID] = true

		ref := normalizeRef(e.Email)
		if ref == "" {
			continue
		}
		user, ok := usersByRef[ref]
		if !ok {
			// Unmapped employee, excluded from sync.
			continue
		}
		if claimedUsers[user.ID] {
			zap.S().Warnf("Engagement user %s already mapped, skipping employee %s", user.ID, e.ID)
			continue
		}
		claimedUsers[user.ID] = true
		mappings = append(mappings, datamodel.UserMapping{
			EngagementUserID: user.ID,
			HREmployeeID:     e.ID,
			SharedRef:        ref,
		})
	}

	zap.S().Infof("Rebuilt user mapping directory: %d of %d employees mapped", len(mappings), len(employees))
	return mappings, nil
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
