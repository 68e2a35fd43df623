package datamodel

import "time"

// FullSyncReport is the outcome of one runFullSync invocation.
type FullSyncReport struct {
	RunID         string    `json:"runId"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Synced        int       `json:"synced"`
	ApprovedCount int       `json:"approvedCount"`
	RejectedCount int       `json:"rejectedCount"`
	Errors        []string  `json:"errors"`
}

// ApprovalCheckReport is the outcome of one runApprovalCheck invocation.
type ApprovalCheckReport struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Approved   int       `json:"approved"`
	Rejected   int       `json:"rejected"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
}
