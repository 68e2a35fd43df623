package leavesync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// DefaultBatchSize is the engagement system's documented maximum items per
// push call.
const DefaultBatchSize = 100

// SessionManager owns one bulk-replace sync session end to end. Completing
// the session replaces the downstream tenant's absence-request set with
// exactly the pushed items; anything not pushed is removed. No session is
// ever left open across process boundaries: every failure path after a
// successful start goes through Cancel.
type SessionManager struct {
	client    EngagementClient
	batchSize int
	session   *datamodel.SyncSession
}

func NewSessionManager(client EngagementClient, batchSize int) *SessionManager {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	return &SessionManager{client: client, batchSize: batchSize}
}

// Session exposes the current session for inspection, nil before Start.
func (m *SessionManager) Session() *datamodel.SyncSession {
	return m.session
}

// Start opens a session. Failure is fatal to the run but leaves nothing to
// clean up.
func (m *SessionManager) Start(ctx context.Context) (string, error) {
	if m.session != nil && !m.session.State.Terminal() {
		return "", fmt.Errorf("session %s is still open", m.session.ID)
	}
	id, err := m.client.StartSync(ctx)
	if err != nil {
		return "", fmt.Errorf("starting sync session: %w", err)
	}
	m.session = &datamodel.SyncSession{ID: id, State: datamodel.SessionStarted}
	zap.S().Infof("Started sync session %s", id)
	return id, nil
}

// Push sends the items in fixed-size batches. Batches are not atomic with
// each other; on a mid-push failure the caller must Cancel to avoid leaving
// an ambiguous partial session open downstream.
func (m *SessionManager) Push(ctx context.Context, items []datamodel.SyncItem) error {
	if err := m.requireOpen(); err != nil {
		return err
	}
	m.session.State = datamodel.SessionPushing

	for start := 0; start < len(items); start += m.batchSize {
		end := start + m.batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := m.client.PushSyncBatch(ctx, m.session.ID, items[start:end]); err != nil {
			return fmt.Errorf("pushing batch %d-%d of %d items: %w", start, end, len(items), err)
		}
	}
	zap.S().Debugf("Pushed %d items to session %s", len(items), m.session.ID)
	return nil
}

// Complete finalizes the session. From the engine's perspective this is the
// atomic full-replace point.
func (m *SessionManager) Complete(ctx context.Context) error {
	if err := m.requireOpen(); err != nil {
		return err
	}
	if err := m.client.CompleteSync(ctx, m.session.ID); err != nil {
		return fmt.Errorf("completing sync session %s: %w", m.session.ID, err)
	}
	m.session.State = datamodel.SessionCompleted
	zap.S().Infof("Completed sync session %s", m.session.ID)
	return nil
}

// Cancel is the explicit rollback signal, best-effort: a failed cancel call
// is logged, not retried. Safe to call with no open session.
func (m *SessionManager) Cancel(ctx context.Context) {
	if m.session == nil || m.session.State.Terminal() {
		return
	}
	if err := m.client.CancelSync(ctx, m.session.ID); err != nil {
		m.session.State = datamodel.SessionFailed
		zap.S().Errorf("Cancel of sync session %s failed, downstream state may be ambiguous: %s", m.session.ID, err)
		return
	}
	m.session.State = datamodel.SessionCancelled
	zap.S().Infof("Cancelled sync session %s", m.session.ID)
}

func (m *SessionManager) requireOpen() error {
	if m.session == nil {
		return fmt.Errorf("no sync session started")
	}
	if m.session.State.Terminal() {
		return fmt.Errorf("sync session %s is %s", m.session.ID, m.session.State)
	}
	return nil
}
