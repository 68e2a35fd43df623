package leavesync

import (
	"context"
	"fmt"
	"sync"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// fakeHRClient serves canned upstream state per employee.
type fakeHRClient struct {
	employees    []datamodel.Employee
	employeesErr error
	profiles     map[string]datamodel.Employee
	requests     map[string][]datamodel.LeaveRequest
	absences     map[string][]datamodel.Absence
	requestsErr  map[string]error
	absencesErr  map[string]error

	listEmployeesCalls int
	listAbsencesCalls  int
}

func newFakeHRClient() *fakeHRClient {
	return &fakeHRClient{
		profiles:    map[string]datamodel.Employee{},
		requests:    map[string][]datamodel.LeaveRequest{},
		absences:    map[string][]datamodel.Absence{},
		requestsErr: map[string]error{},
		absencesErr: map[string]error{},
	}
}

func (f *fakeHRClient) ListEmployees(_ context.Context) ([]datamodel.Employee, error) {
	f.listEmployeesCalls++
	return f.employees, f.employeesErr
}

func (f *fakeHRClient) GetEmployee(_ context.Context, employeeID string) (datamodel.Employee, error) {
	e, ok := f.profiles[employeeID]
	if !ok {
		return datamodel.Employee{}, fmt.Errorf("employee %s not found", employeeID)
	}
	return e, nil
}

func (f *fakeHRClient) ListAbsences(_ context.Context, employeeID string) ([]datamodel.Absence, error) {
	f.listAbsencesCalls++
	if err := f.absencesErr[employeeID]; err != nil {
		return nil, err
	}
	return f.absences[employeeID], nil
}

func (f *fakeHRClient) ListLeaveRequests(_ context.Context, employeeID string) ([]datamodel.LeaveRequest, error) {
	if err := f.requestsErr[employeeID]; err != nil {
		return nil, err
	}
	return f.requests[employeeID], nil
}

func (f *fakeHRClient) CreateLeaveRequest(_ context.Context, _ string, _ datamodel.LeaveRequestDraft) (datamodel.LeaveRequest, error) {
	return datamodel.LeaveRequest{}, nil
}

func (f *fakeHRClient) CancelLeaveRequest(_ context.Context, _ int64) error { return nil }
func (f *fakeHRClient) CancelAbsence(_ context.Context, _ int64) error     { return nil }

// fakeEngagementClient keeps a mutable downstream state and records the
// ordered call trace so tests can assert notify-before-replace ordering.
type fakeEngagementClient struct {
	mu sync.Mutex

	users    []datamodel.EngagementUser
	usersErr error
	requests map[string]datamodel.EngagementRequest // keyed by external id
	policies []datamodel.Policy

	policiesErr error
	approveErr  error
	rejectErr   error
	patchErr    error
	startErr    error
	pushErr     error
	completeErr error
	cancelErr   error

	calls       []string
	pushed      [][]datamodel.SyncItem
	cancelCalls int
	sessionSeq  int
}

func newFakeEngagementClient() *fakeEngagementClient {
	return &fakeEngagementClient{requests: map[string]datamodel.EngagementRequest{}}
}

func (f *fakeEngagementClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// callIndex returns the position of the first call with the given prefix,
// -1 when absent.
func (f *fakeEngagementClient) callIndex(prefix string) int {
	for i, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			return i
		}
	}
	return -1
}

func (f *fakeEngagementClient) callCount(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeEngagementClient) ListUsers(_ context.Context) ([]datamodel.EngagementUser, error) {
	return f.users, f.usersErr
}

func (f *fakeEngagementClient) GetRequestByExternalID(_ context.Context, externalID string) (datamodel.EngagementRequest, error) {
	f.record("get:" + externalID)
	req, ok := f.requests[externalID]
	if !ok {
		return datamodel.EngagementRequest{}, datamodel.ErrNotFound
	}
	return req, nil
}

func (f *fakeEngagementClient) byID(requestID string) (string, datamodel.EngagementRequest, bool) {
	for key, req := range f.requests {
		if req.ID == requestID {
			return key, req, true
		}
	}
	return "", datamodel.EngagementRequest{}, false
}

func (f *fakeEngagementClient) Approve(_ context.Context, approverID, requestID string) error {
	f.record("approve:" + requestID + ":" + approverID)
	if f.approveErr != nil {
		return f.approveErr
	}
	if key, req, ok := f.byID(requestID); ok {
		req.Status = datamodel.EngagementStatusApproved
		f.requests[key] = req
	}
	return nil
}

func (f *fakeEngagementClient) Reject(_ context.Context, approverID, requestID string) error {
	f.record("reject:" + requestID + ":" + approverID)
	if f.rejectErr != nil {
		return f.rejectErr
	}
	if key, req, ok := f.byID(requestID); ok {
		req.Status = datamodel.EngagementStatusRejected
		f.requests[key] = req
	}
	return nil
}

func (f *fakeEngagementClient) PatchExternalID(_ context.Context, requestID, newExternalID string) error {
	f.record("patch:" + requestID + ":" + newExternalID)
	if f.patchErr != nil {
		return f.patchErr
	}
	if key, req, ok := f.byID(requestID); ok {
		delete(f.requests, key)
		req.ExternalID = newExternalID
		f.requests[newExternalID] = req
	}
	return nil
}

func (f *fakeEngagementClient) StartSync(_ context.Context) (string, error) {
	f.record("start")
	if f.startErr != nil {
		return "", f.startErr
	}
	f.sessionSeq++
	return fmt.Sprintf("sess-%d", f.sessionSeq), nil
}

func (f *fakeEngagementClient) PushSyncBatch(_ context.Context, sessionID string, items []datamodel.SyncItem) error {
	f.record("push:" + sessionID)
	if f.pushErr != nil {
		return f.pushErr
	}
	batch := make([]datamodel.SyncItem, len(items))
	copy(batch, items)
	f.pushed = append(f.pushed, batch)
	return nil
}

func (f *fakeEngagementClient) CompleteSync(_ context.Context, sessionID string) error {
	f.record("complete:" + sessionID)
	return f.completeErr
}

func (f *fakeEngagementClient) CancelSync(_ context.Context, sessionID string) error {
	f.record("cancel:" + sessionID)
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakeEngagementClient) GetAbsencePolicies(_ context.Context) ([]datamodel.Policy, error) {
	f.record("policies")
	return f.policies, f.policiesErr
}

// allPushedItems flattens the pushed batches.
func (f *fakeEngagementClient) allPushedItems() []datamodel.SyncItem {
	var items []datamodel.SyncItem
	for _, batch := range f.pushed {
		items = append(items, batch...)
	}
	return items
}
