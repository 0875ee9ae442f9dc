package assignment

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
)

type fakeCustomerRepo struct {
	customer.Repository
	customers map[int64]*customer.Customer
}

func (f *fakeCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) Assign(_ context.Context, ids []int64, callerID int64, taskID string) error {
	for _, id := range ids {
		c := f.customers[id]
		c.Status = customer.StatusOverdue
		c.AssignedTo = sql.NullInt64{Int64: callerID, Valid: true}
		c.TaskID = sql.NullString{String: taskID, Valid: true}
	}
	return nil
}

func (f *fakeCustomerRepo) Unassign(_ context.Context, ids []int64) error {
	for _, id := range ids {
		c := f.customers[id]
		c.Status = customer.StatusUnassigned
		c.AssignedTo = sql.NullInt64{}
		c.TaskID = sql.NullString{}
	}
	return nil
}

func (f *fakeCustomerRepo) CountAssignedInStatuses(_ context.Context, callerID int64, statuses []string) (int, error) {
	n := 0
	for _, c := range f.customers {
		if !c.AssignedTo.Valid || c.AssignedTo.Int64 != callerID {
			continue
		}
		for _, s := range statuses {
			if c.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeCallerRepo struct {
	caller.Repository
	callers map[int64]*caller.Caller
}

func (f *fakeCallerRepo) FindByID(_ context.Context, id int64) (*caller.Caller, error) {
	c, ok := f.callers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCallerRepo) AdjustLoad(_ context.Context, id int64, delta int) error {
	f.callers[id].CurrentLoad += delta
	return nil
}

func (f *fakeCallerRepo) UpdateTaskStatus(_ context.Context, id int64, taskStatus string) error {
	f.callers[id].TaskStatus = taskStatus
	return nil
}

type fakeRequestRepo struct {
	request.Repository
	byTask map[string]*request.Request
	nextID int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byTask: map[string]*request.Request{}, nextID: 1}
}

func (f *fakeRequestRepo) Create(_ context.Context, r *request.Request) (*request.Request, error) {
	r.ID = f.nextID
	f.nextID++
	cp := *r
	f.byTask[r.TaskID] = &cp
	return r, nil
}

func (f *fakeRequestRepo) FindByTaskID(_ context.Context, taskID string) (*request.Request, error) {
	r, ok := f.byTask[taskID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, taskID string, status string) error {
	r, ok := f.byTask[taskID]
	if !ok {
		return xerrors.ErrNotFound
	}
	r.Status = status
	return nil
}

type recordingNotifier struct {
	assigned []string
}

func (n *recordingNotifier) TaskAssigned(_ int64, taskID string, _ int) {
	n.assigned = append(n.assigned, taskID)
}

func fixture() (*fakeCustomerRepo, *fakeCallerRepo, *fakeRequestRepo) {
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{
		1: {ID: 1, AccountNumber: "ACC001", Name: "First", ContactNumber: "0771", AmountOverdue: "150.00", Status: customer.StatusUnassigned},
		2: {ID: 2, AccountNumber: "ACC002", Name: "Second", ContactNumber: "0772", AmountOverdue: "90.00", Status: customer.StatusUnassigned},
	}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		7: {ID: 7, StaffCode: "CC007", IsActive: true, MaxLoad: 50, TaskStatus: caller.TaskStatusIdle},
	}}
	return cr, kr, newFakeRequestRepo()
}

func TestAssignCustomersSnapshotsAndMarks(t *testing.T) {
	cr, kr, rr := fixture()
	notifier := &recordingNotifier{}
	svc := NewService(cr, kr, rr, notifier, zap.NewNop())

	req, err := svc.AssignCustomers(context.Background(), 7, []int64{1, 2})
	require.NoError(t, err)

	assert.NotEmpty(t, req.TaskID)
	assert.Equal(t, request.StatusPending, req.Status)
	assert.Equal(t, 2, req.CustomersSent)
	require.Len(t, req.Customers, 2)
	assert.Equal(t, "ACC001", req.Customers[0].AccountNumber)
	assert.Equal(t, "150.00", req.Customers[0].AmountOverdue)

	for _, id := range []int64{1, 2} {
		c := cr.customers[id]
		assert.Equal(t, customer.StatusOverdue, c.Status)
		assert.Equal(t, int64(7), c.AssignedTo.Int64)
		assert.Equal(t, req.TaskID, c.TaskID.String)
	}

	cl := kr.callers[7]
	assert.Equal(t, 2, cl.CurrentLoad)
	assert.Equal(t, caller.TaskStatusAssigned, cl.TaskStatus)
	assert.Equal(t, []string{req.TaskID}, notifier.assigned)
}

func TestAssignCustomersRejectsNonUnassigned(t *testing.T) {
	cr, kr, rr := fixture()
	cr.customers[1].Status = customer.StatusPending
	svc := NewService(cr, kr, rr, nil, zap.NewNop())

	_, err := svc.AssignCustomers(context.Background(), 7, []int64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestAssignCustomersRespectsMaxLoad(t *testing.T) {
	cr, kr, rr := fixture()
	kr.callers[7].MaxLoad = 1
	svc := NewService(cr, kr, rr, nil, zap.NewNop())

	_, err := svc.AssignCustomers(context.Background(), 7, []int64{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestAcceptTaskOwnershipAndTransition(t *testing.T) {
	cr, kr, rr := fixture()
	svc := NewService(cr, kr, rr, nil, zap.NewNop())

	req, err := svc.AssignCustomers(context.Background(), 7, []int64{1})
	require.NoError(t, err)

	stranger := auth.Principal{Kind: auth.KindCaller, ID: 99, Role: auth.RoleCaller}
	_, err = svc.AcceptTask(context.Background(), stranger, req.TaskID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	owner := auth.Principal{Kind: auth.KindCaller, ID: 7, Role: auth.RoleCaller}
	accepted, err := svc.AcceptTask(context.Background(), owner, req.TaskID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusAccepted, accepted.Status)

	// Accepting twice is rejected.
	_, err = svc.AcceptTask(context.Background(), owner, req.TaskID)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestDeclineTaskReturnsCustomersToPool(t *testing.T) {
	cr, kr, rr := fixture()
	svc := NewService(cr, kr, rr, nil, zap.NewNop())

	req, err := svc.AssignCustomers(context.Background(), 7, []int64{1, 2})
	require.NoError(t, err)

	owner := auth.Principal{Kind: auth.KindCaller, ID: 7, Role: auth.RoleCaller}
	declined, err := svc.DeclineTask(context.Background(), owner, req.TaskID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusDeclined, declined.Status)

	for _, id := range []int64{1, 2} {
		c := cr.customers[id]
		assert.Equal(t, customer.StatusUnassigned, c.Status)
		assert.False(t, c.AssignedTo.Valid)
	}

	cl := kr.callers[7]
	assert.Equal(t, 0, cl.CurrentLoad)
	assert.Equal(t, caller.TaskStatusIdle, cl.TaskStatus)
}
