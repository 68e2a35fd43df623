package main

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
	"github.com/peoplesync/absence-bridge/pkg/leavesync"
)

// errRunInProgress is returned when a run is requested while another one is
// still going. The engine itself does not prevent concurrent runs; this
// lock is the external mutual exclusion it relies on.
var errRunInProgress = errors.New("a sync run is already in progress")

type runner struct {
	engine    *leavesync.Engine
	directory *leavesync.MappingDirectory
	mu        sync.Mutex
}

func newRunner(engine *leavesync.Engine, directory *leavesync.MappingDirectory) *runner {
	return &runner{engine: engine, directory: directory}
}

func (r *runner) fullSync() (datamodel.FullSyncReport, error) {
	if !r.mu.TryLock() {
		return datamodel.FullSyncReport{}, errRunInProgress
	}
	defer r.mu.Unlock()

	ctx := context.Background()
	mappings, err := r.directory.Mappings(ctx)
	if err != nil {
		zap.S().Errorf("Full sync skipped, mapping directory unavailable: %s", err)
		return datamodel.FullSyncReport{}, err
	}
	report, err := r.engine.RunFullSync(ctx, mappings)
	if err != nil {
		zap.S().Errorf("Full sync failed: %s", err)
	}
	return report, err
}

func (r *runner) approvalCheck() (datamodel.ApprovalCheckReport, error) {
	if !r.mu.TryLock() {
		return datamodel.ApprovalCheckReport{}, errRunInProgress
	}
	defer r.mu.Unlock()

	ctx := context.Background()
	mappings, err := r.directory.Mappings(ctx)
	if err != nil {
		zap.S().Errorf("Approval check skipped, mapping directory unavailable: %s", err)
		return datamodel.ApprovalCheckReport{}, err
	}
	report, err := r.engine.RunApprovalCheck(ctx, mappings)
	if err != nil {
		zap.S().Errorf("Approval check failed: %s", err)
	}
	return report, err
}
