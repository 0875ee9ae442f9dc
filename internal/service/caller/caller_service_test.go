package caller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
)

type fakeCallerRepo struct {
	caller.Repository
	callers map[int64]*caller.Caller
	nextID  int64
}

func (f *fakeCallerRepo) Create(_ context.Context, c *caller.Caller) (*caller.Caller, error) {
	for _, existing := range f.callers {
		if existing.StaffCode == c.StaffCode {
			return nil, xerrors.ErrDuplicateEntry
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.callers[c.ID] = &cp
	return c, nil
}

func (f *fakeCallerRepo) FindByID(_ context.Context, id int64) (*caller.Caller, error) {
	c, ok := f.callers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeCustomerRepo struct {
	customer.Repository
	byStatus map[string]int
}

func (f *fakeCustomerRepo) CountAssignedInStatuses(_ context.Context, _ int64, statuses []string) (int, error) {
	n := 0
	for _, s := range statuses {
		n += f.byStatus[s]
	}
	return n, nil
}

type fakeRequestRepo struct {
	request.Repository
	stats request.CallerRequestStats
}

func (f *fakeRequestRepo) CallerStats(_ context.Context, _ int64) (*request.CallerRequestStats, error) {
	cp := f.stats
	return &cp, nil
}

func TestCreateCallerHashesPasswordAndDefaultsLoad(t *testing.T) {
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{}}
	svc := NewCallerService(kr, &fakeCustomerRepo{}, &fakeRequestRepo{}, zap.NewNop())

	created, err := svc.CreateCaller(context.Background(), &caller.CreateCallerRequest{
		StaffCode:     "CC010",
		FullName:      "T Perera",
		ContactNumber: "0771234567",
		Password:      "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, defaultMaxLoad, created.MaxLoad)
	assert.Equal(t, caller.TaskStatusIdle, created.TaskStatus)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "s3cret-pass", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateCallerDuplicateStaffCode(t *testing.T) {
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		1: {ID: 1, StaffCode: "CC010"},
	}}
	svc := NewCallerService(kr, &fakeCustomerRepo{}, &fakeRequestRepo{}, zap.NewNop())

	_, err := svc.CreateCaller(context.Background(), &caller.CreateCallerRequest{
		StaffCode:     "CC010",
		FullName:      "T Perera",
		ContactNumber: "0771234567",
		Password:      "s3cret-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
}

func TestGetStatsCombinesBatchAndBacklog(t *testing.T) {
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		7: {ID: 7, StaffCode: "CC007", IsActive: true},
	}}
	cr := &fakeCustomerRepo{byStatus: map[string]int{
		customer.StatusCompleted: 4,
		customer.StatusPending:   2,
		customer.StatusOverdue:   3,
	}}
	rr := &fakeRequestRepo{stats: request.CallerRequestStats{
		CustomersSent:      9,
		CustomersContacted: 6,
		RequestsTotal:      2,
		RequestsCompleted:  1,
	}}
	svc := NewCallerService(kr, cr, rr, zap.NewNop())

	stats, err := svc.GetStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(9), stats.CustomersSent)
	assert.Equal(t, int64(1), stats.RequestsCompleted)
	assert.Equal(t, 4, stats.CustomersCompleted)
	assert.Equal(t, 5, stats.CustomersRemaining)
}

func TestGetStatsUnknownCaller(t *testing.T) {
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{}}
	svc := NewCallerService(kr, &fakeCustomerRepo{}, &fakeRequestRepo{}, zap.NewNop())

	_, err := svc.GetStats(context.Background(), 99)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
