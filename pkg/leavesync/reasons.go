package leavesync

import (
	"fmt"
	"strings"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// ReasonExtractor pulls a rejection reason out of one of the HR system's
// free-form request fields. The upstream schema does not name the field
// consistently, so extraction is an ordered list of candidates tried in
// priority order, first non-empty wins.
type ReasonExtractor func(r datamodel.LeaveRequest) string

var reasonExtractorRegistry = map[string]ReasonExtractor{
	"status_comment": func(r datamodel.LeaveRequest) string { return r.StatusComment },
	"approval_comment": func(r datamodel.LeaveRequest) string {
		return r.ApprovalComment
	},
	"note": func(r datamodel.LeaveRequest) string { return r.Note },
}

// DefaultReasonFieldOrder is the observed priority of fields carrying the
// rejection reason. Override via configuration when a tenant's schema
// differs.
func DefaultReasonFieldOrder() []string {
	return []string{"status_comment", "approval_comment", "note"}
}

// ExtractorsForFields resolves configured field names into extractors.
// Unknown names are an error so a configuration typo fails loudly at
// startup instead of silently dropping reasons.
func ExtractorsForFields(fields []string) ([]ReasonExtractor, error) {
	extractors := make([]ReasonExtractor, 0, len(fields))
	for _, f := range fields {
		ex, ok := reasonExtractorRegistry[strings.TrimSpace(f)]
		if !ok {
			return nil, fmt.Errorf("unknown rejection-reason field %q", f)
		}
		extractors = append(extractors, ex)
	}
	return extractors, nil
}

// ExtractReason returns the first non-empty candidate, trimmed.
func ExtractReason(r datamodel.LeaveRequest, extractors []ReasonExtractor) string {
	for _, ex := range extractors {
		if reason := strings.TrimSpace(ex(r)); reason != "" {
			return reason
		}
	}
	return ""
}
