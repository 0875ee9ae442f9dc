package contact

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
)

type fakeCustomerRepo struct {
	customer.Repository
	customers map[int64]*customer.Customer
	updateErr error
}

func (f *fakeCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *customer.Customer) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) CountContacted(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if c, ok := f.customers[id]; ok && len(c.ContactHistory) > 0 {
			n++
		}
	}
	return n, nil
}

func (f *fakeCustomerRepo) CountInStatus(_ context.Context, ids []int64, status string) (int, error) {
	n := 0
	for _, id := range ids {
		if c, ok := f.customers[id]; ok && c.Status == status {
			n++
		}
	}
	return n, nil
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

func (f *fakeCallerRepo) UpdateTaskStatus(_ context.Context, id int64, taskStatus string) error {
	c, ok := f.callers[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.TaskStatus = taskStatus
	return nil
}

type fakeRequestRepo struct {
	request.Repository
	requests    map[int64]*request.Request
	acceptedErr error
}

func (f *fakeRequestRepo) FindAcceptedByCaller(_ context.Context, callerID int64) ([]request.Request, error) {
	if f.acceptedErr != nil {
		return nil, f.acceptedErr
	}
	var out []request.Request
	for _, r := range f.requests {
		if r.CallerID.Valid && r.CallerID.Int64 == callerID && r.Status == request.StatusAccepted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateProgress(_ context.Context, id int64, contacted int, status string, isCompleted bool) error {
	r, ok := f.requests[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	r.CustomersContacted = contacted
	r.Status = status
	r.IsCompleted = isCompleted
	return nil
}

type recordingNotifier struct {
	completed []string
}

func (n *recordingNotifier) TaskCompleted(_ int64, taskID string) {
	n.completed = append(n.completed, taskID)
}

func assignedCustomer(id, callerID int64, status string) *customer.Customer {
	return &customer.Customer{
		ID:            id,
		AccountNumber: "ACC-" + strconv.FormatInt(id, 10),
		Name:          "Customer",
		Status:        status,
		AssignedTo:    sql.NullInt64{Int64: callerID, Valid: true},
	}
}

func buildService(cr *fakeCustomerRepo, rr *fakeRequestRepo, kr *fakeCallerRepo, n Notifier) *Service {
	return NewService(cr, kr, rr, n, zap.NewNop())
}

func TestRecordContactRejectsUnknownOutcome(t *testing.T) {
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{}}
	svc := buildService(cr, &fakeRequestRepo{}, &fakeCallerRepo{}, nil)

	_, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
		CallOutcome:      "SHOUTED",
		CustomerResponse: "no",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestRecordContactAppendsHistoryMonotonically(t *testing.T) {
	c := assignedCustomer(1, 0, customer.StatusOverdue)
	c.AssignedTo = sql.NullInt64{}
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c}}
	svc := buildService(cr, &fakeRequestRepo{requests: map[int64]*request.Request{}}, &fakeCallerRepo{}, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
			CallOutcome:      customer.OutcomeNoAnswer,
			CustomerResponse: "no answer",
		})
		require.NoError(t, err)
	}

	got := cr.customers[1]
	require.Len(t, got.ContactHistory, 3)
	for i, entry := range got.ContactHistory {
		assert.Equal(t, i, entry.RetriedCount)
	}
}

func TestRecordContactStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		paymentMade bool
		want        string
	}{
		{"unpaid contact moves to pending", false, customer.StatusPending},
		{"payment moves to completed", true, customer.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := assignedCustomer(1, 0, customer.StatusOverdue)
			c.AssignedTo = sql.NullInt64{}
			cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c}}
			svc := buildService(cr, &fakeRequestRepo{requests: map[int64]*request.Request{}}, &fakeCallerRepo{}, nil)

			view, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
				CallOutcome:      customer.OutcomeAnswered,
				CustomerResponse: "will pay friday",
				PaymentMade:      tt.paymentMade,
				PromisedDate:     "05/09/2026",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Status)
		})
	}
}

func TestRecordContactMirrorsPreviousResponse(t *testing.T) {
	c := assignedCustomer(1, 0, customer.StatusOverdue)
	c.AssignedTo = sql.NullInt64{}
	c.Response = sql.NullString{String: "old reply", Valid: true}
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c}}
	svc := buildService(cr, &fakeRequestRepo{requests: map[int64]*request.Request{}}, &fakeCallerRepo{}, nil)

	_, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
		CallOutcome:      customer.OutcomeAnswered,
		CustomerResponse: "new reply",
	})
	require.NoError(t, err)

	got := cr.customers[1]
	assert.Equal(t, "new reply", got.Response.String)
	assert.Equal(t, "new reply", got.PreviousResponse.String)
}

func TestRecordContactCompletesRequestAndIdlesCaller(t *testing.T) {
	const callerID = int64(7)

	c1 := assignedCustomer(1, callerID, customer.StatusCompleted)
	c1.ContactHistory = []customer.ContactRecord{{Outcome: customer.OutcomeAnswered}}
	c2 := assignedCustomer(2, callerID, customer.StatusOverdue)

	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c1, 2: c2}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		callerID: {ID: callerID, StaffCode: "CC100", TaskStatus: caller.TaskStatusAssigned},
	}}
	rr := &fakeRequestRepo{requests: map[int64]*request.Request{
		10: {
			ID:       10,
			TaskID:   "01TASK",
			CallerID: sql.NullInt64{Int64: callerID, Valid: true},
			Customers: []request.CustomerSnapshot{
				{CustomerID: 1}, {CustomerID: 2},
			},
			CustomersSent: 2,
			Status:        request.StatusAccepted,
		},
	}}
	notifier := &recordingNotifier{}
	svc := buildService(cr, rr, kr, notifier)

	_, err := svc.RecordContact(context.Background(), 2, &customer.RecordContactRequest{
		CallOutcome:      customer.OutcomeAnswered,
		CustomerResponse: "paid in full",
		PaymentMade:      true,
	})
	require.NoError(t, err)

	req := rr.requests[10]
	assert.Equal(t, request.StatusCompleted, req.Status)
	assert.True(t, req.IsCompleted)
	assert.Equal(t, 2, req.CustomersContacted)

	assert.Equal(t, caller.TaskStatusIdle, kr.callers[callerID].TaskStatus)
	assert.Equal(t, []string{"01TASK"}, notifier.completed)
}

func TestRecordContactPartialBatchKeepsCallerAssigned(t *testing.T) {
	const callerID = int64(7)

	c1 := assignedCustomer(1, callerID, customer.StatusOverdue)
	c2 := assignedCustomer(2, callerID, customer.StatusOverdue)
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c1, 2: c2}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		callerID: {ID: callerID, TaskStatus: caller.TaskStatusAssigned},
	}}
	rr := &fakeRequestRepo{requests: map[int64]*request.Request{
		10: {
			ID:       10,
			TaskID:   "01TASK",
			CallerID: sql.NullInt64{Int64: callerID, Valid: true},
			Customers: []request.CustomerSnapshot{
				{CustomerID: 1}, {CustomerID: 2},
			},
			CustomersSent: 2,
			Status:        request.StatusAccepted,
		},
	}}
	svc := buildService(cr, rr, kr, nil)

	_, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
		CallOutcome:      customer.OutcomeNoAnswer,
		CustomerResponse: "no answer",
	})
	require.NoError(t, err)

	req := rr.requests[10]
	assert.Equal(t, request.StatusAccepted, req.Status)
	assert.False(t, req.IsCompleted)
	assert.Equal(t, 1, req.CustomersContacted)
	assert.Equal(t, caller.TaskStatusAssigned, kr.callers[callerID].TaskStatus)
}

func TestRecordContactCascadeFailureKeepsCustomerWrite(t *testing.T) {
	const callerID = int64(7)

	c := assignedCustomer(1, callerID, customer.StatusOverdue)
	cr := &fakeCustomerRepo{customers: map[int64]*customer.Customer{1: c}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{callerID: {ID: callerID}}}
	rr := &fakeRequestRepo{acceptedErr: errors.New("connection reset")}
	svc := buildService(cr, rr, kr, nil)

	_, err := svc.RecordContact(context.Background(), 1, &customer.RecordContactRequest{
		CallOutcome:      customer.OutcomeAnswered,
		CustomerResponse: "noted",
	})
	require.Error(t, err)

	// The contact write is not rolled back when the cascade fails.
	got := cr.customers[1]
	assert.Len(t, got.ContactHistory, 1)
	assert.Equal(t, customer.StatusPending, got.Status)
}
