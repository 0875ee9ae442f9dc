package customer

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
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/scope"
)

type fakeCustomerRepo struct {
	customer.Repository
	customers  []customer.Customer
	lastScope  scope.Scope
	lastCaller *int64
}

func (f *fakeCustomerRepo) List(_ context.Context, sc scope.Scope, _ *customer.CustomerListFilters, callerID *int64) ([]customer.Customer, int64, error) {
	f.lastScope = sc
	f.lastCaller = callerID

	var out []customer.Customer
	for _, c := range f.customers {
		if callerID != nil && (!c.AssignedTo.Valid || c.AssignedTo.Int64 != *callerID) {
			continue
		}
		if sc.ByRTOM() && c.RTOM.String != sc.RTOM {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	for i := range f.customers {
		if f.customers[i].ID == id {
			cp := f.customers[i]
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
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

func (f *fakeCallerRepo) FindByStaffCode(_ context.Context, staffCode string) (*caller.Caller, error) {
	for _, c := range f.callers {
		if c.StaffCode == staffCode {
			cp := *c
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func assigned(id, callerID int64, rtom string) customer.Customer {
	return customer.Customer{
		ID:         id,
		AssignedTo: sql.NullInt64{Int64: callerID, Valid: true},
		RTOM:       sql.NullString{String: rtom, Valid: rtom != ""},
		Status:     customer.StatusOverdue,
	}
}

func TestListCustomersUnresolvableCallerFailsClosed(t *testing.T) {
	cr := &fakeCustomerRepo{customers: []customer.Customer{assigned(1, 5, "KDY")}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{}}
	svc := NewCustomerService(cr, kr, zap.NewNop())

	admin := auth.Principal{Kind: auth.KindAdmin, ID: 1, Role: "superadmin"}
	resp, err := svc.ListCustomers(context.Background(), admin, &customer.CustomerListFilters{
		CallerID: "CC999",
	})
	require.NoError(t, err)

	// Unknown caller filter returns an empty page, not the unfiltered set.
	assert.Empty(t, resp.Customers)
	assert.Zero(t, resp.Total)
	assert.Nil(t, cr.lastCaller)
}

func TestListCustomersResolvesStaffCode(t *testing.T) {
	cr := &fakeCustomerRepo{customers: []customer.Customer{
		assigned(1, 5, ""),
		assigned(2, 6, ""),
	}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		5: {ID: 5, StaffCode: "CC005"},
	}}
	svc := NewCustomerService(cr, kr, zap.NewNop())

	admin := auth.Principal{Kind: auth.KindAdmin, ID: 1, Role: "superadmin"}
	resp, err := svc.ListCustomers(context.Background(), admin, &customer.CustomerListFilters{
		CallerID: "CC005",
	})
	require.NoError(t, err)

	require.Len(t, resp.Customers, 1)
	assert.Equal(t, int64(1), resp.Customers[0].ID)
}

func TestListCustomersCallerPinnedToSelf(t *testing.T) {
	cr := &fakeCustomerRepo{customers: []customer.Customer{
		assigned(1, 5, ""),
		assigned(2, 6, ""),
	}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		5: {ID: 5}, 6: {ID: 6},
	}}
	svc := NewCustomerService(cr, kr, zap.NewNop())

	me := auth.Principal{Kind: auth.KindCaller, ID: 5, Role: auth.RoleCaller}
	resp, err := svc.ListCustomers(context.Background(), me, &customer.CustomerListFilters{
		CallerID: "6", // ignored: callers never see other callers' books
	})
	require.NoError(t, err)

	require.Len(t, resp.Customers, 1)
	assert.Equal(t, int64(1), resp.Customers[0].ID)
	require.NotNil(t, cr.lastCaller)
	assert.Equal(t, int64(5), *cr.lastCaller)
}

func TestListCustomersScopedByRTOM(t *testing.T) {
	cr := &fakeCustomerRepo{customers: []customer.Customer{
		assigned(1, 5, "KDY"),
		assigned(2, 6, "GLE"),
	}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{}}
	svc := NewCustomerService(cr, kr, zap.NewNop())

	rtomAdmin := auth.Principal{Kind: auth.KindAdmin, ID: 9, Role: "rtomadmin", RTOM: "KDY"}
	resp, err := svc.ListCustomers(context.Background(), rtomAdmin, &customer.CustomerListFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Customers, 1)
	assert.Equal(t, int64(1), resp.Customers[0].ID)
}

func TestGetCustomerResolvesAssignedCaller(t *testing.T) {
	cr := &fakeCustomerRepo{customers: []customer.Customer{assigned(1, 5, "")}}
	kr := &fakeCallerRepo{callers: map[int64]*caller.Caller{
		5: {ID: 5, StaffCode: "CC005", FullName: "N Silva"},
	}}
	svc := NewCustomerService(cr, kr, zap.NewNop())

	view, err := svc.GetCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, view.AssignedCaller)
	assert.Equal(t, "CC005", view.AssignedCaller.StaffCode)
	assert.Equal(t, "N Silva", view.AssignedCaller.FullName)
}
