package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/spreadsheet"
)

type fakeCustomerRepo struct {
	customer.Repository
	byAccount map[string]*customer.Customer
	nextID    int64
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byAccount: map[string]*customer.Customer{}, nextID: 1}
}

func (f *fakeCustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	if _, ok := f.byAccount[c.AccountNumber]; ok {
		return xerrors.ErrDuplicateEntry
	}
	c.ID = f.nextID
	f.nextID++
	cp := *c
	f.byAccount[c.AccountNumber] = &cp
	return nil
}

func (f *fakeCustomerRepo) FindByAccountNumber(_ context.Context, accountNumber string) (*customer.Customer, error) {
	c, ok := f.byAccount[accountNumber]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *customer.Customer) error {
	if _, ok := f.byAccount[c.AccountNumber]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *c
	f.byAccount[c.AccountNumber] = &cp
	return nil
}

type fakeRequestRepo struct {
	request.Repository
	created []request.Request
}

func (f *fakeRequestRepo) Create(_ context.Context, r *request.Request) (*request.Request, error) {
	f.created = append(f.created, *r)
	return r, nil
}

func table(headers []string, rows ...[]string) *spreadsheet.Table {
	return &spreadsheet.Table{Headers: headers, Rows: rows}
}

func newService(cr *fakeCustomerRepo, rr *fakeRequestRepo) *Service {
	return NewService(cr, rr, zap.NewNop())
}

func TestMapRowHeaderAliasEquivalence(t *testing.T) {
	spellings := [][]string{
		{"Account Number", "Customer Name", "Contact Number", "New Arrears"},
		{"accountNumber", "name", "phone", "arrears"},
		{"ACCOUNT_NO", "Full Name", "Mobile Number", "CURRENT ARREARS"},
	}

	for _, headers := range spellings {
		m := NewMapper(table(headers, []string{"ACC001", "W Perera", "0771234567", "1,500.50"}))
		cand := m.MapRow([]string{"ACC001", "W Perera", "0771234567", "1,500.50"})

		assert.Equal(t, "ACC001", cand.AccountNumber, "headers %v", headers)
		assert.Equal(t, "W Perera", cand.Name)
		assert.Equal(t, "0771234567", cand.ContactNumber)
		assert.Equal(t, 1500.50, cand.NewArrears)
	}
}

func TestValidateForImport(t *testing.T) {
	valid := Candidate{AccountNumber: "A1", Name: "X", ContactNumber: "077"}
	assert.True(t, ValidateForImport(&valid))

	for _, c := range []Candidate{
		{Name: "X", ContactNumber: "077"},
		{AccountNumber: "A1", ContactNumber: "077"},
		{AccountNumber: "A1", Name: "X"},
		{AccountNumber: "  ", Name: "X", ContactNumber: "077"},
	} {
		assert.False(t, ValidateForImport(&c))
	}
}

func TestBulkImportToleratesDuplicatesAndBadRows(t *testing.T) {
	cr := newFakeCustomerRepo()
	svc := newService(cr, &fakeRequestRepo{})

	tbl := table(
		[]string{"Account Number", "Customer Name", "Contact Number", "New Arrears"},
		[]string{"ACC001", "First", "0771", "100"},
		[]string{"ACC001", "Duplicate", "0772", "200"},
		[]string{"", "Missing Account", "0773", "300"},
		[]string{"ACC002", "Second", "0774", "400"},
	)

	result, err := svc.BulkImport(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Skipped)

	created := cr.byAccount["ACC001"]
	require.NotNil(t, created)
	assert.Equal(t, customer.StatusUnassigned, created.Status)
	assert.Empty(t, created.ContactHistory)
}

func TestReconcileArrearsRecordsPaymentDelta(t *testing.T) {
	cr := newFakeCustomerRepo()
	rr := &fakeRequestRepo{}
	require.NoError(t, cr.Create(context.Background(), &customer.Customer{
		AccountNumber: "ACC001",
		Name:          "First",
		NewArrears:    500,
		Status:        customer.StatusPending,
	}))

	svc := newService(cr, rr)
	result, err := svc.ReconcileArrears(context.Background(), table(
		[]string{"Account Number", "New Arrears"},
		[]string{"ACC001", "200"},
		[]string{"ACC404", "100"},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	got := cr.byAccount["ACC001"]
	assert.Equal(t, 200.0, got.NewArrears)
	assert.Equal(t, customer.StatusCompleted, got.Status)

	// The 300 delta counts as a payment and leaves an audit row.
	require.Len(t, rr.created, 1)
	audit := rr.created[0]
	assert.Equal(t, request.StatusCompleted, audit.Status)
	assert.True(t, audit.IsCompleted)
	assert.False(t, audit.CallerID.Valid)
	assert.Contains(t, audit.Remark.String, "300.00")
}

func TestReconcileArrearsNoPaymentNoAudit(t *testing.T) {
	cr := newFakeCustomerRepo()
	rr := &fakeRequestRepo{}
	require.NoError(t, cr.Create(context.Background(), &customer.Customer{
		AccountNumber: "ACC001",
		NewArrears:    200,
	}))

	svc := newService(cr, rr)
	_, err := svc.ReconcileArrears(context.Background(), table(
		[]string{"Account Number", "New Arrears"},
		[]string{"ACC001", "350"}, // arrears grew, no payment
	))
	require.NoError(t, err)

	assert.Equal(t, 350.0, cr.byAccount["ACC001"].NewArrears)
	assert.Empty(t, rr.created)
}

func TestMarkPaidFullSettlement(t *testing.T) {
	cr := newFakeCustomerRepo()
	rr := &fakeRequestRepo{}
	require.NoError(t, cr.Create(context.Background(), &customer.Customer{
		AccountNumber: "ACC001",
		NewArrears:    500,
		AmountOverdue: "500.00",
		Status:        customer.StatusPending,
	}))

	svc := newService(cr, rr)
	result, err := svc.MarkPaid(context.Background(), table(
		[]string{"Account Number"}, // no arrears column: full settlement
		[]string{"ACC001"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)

	got := cr.byAccount["ACC001"]
	assert.Equal(t, customer.StatusCompleted, got.Status)
	assert.Equal(t, 0.0, got.NewArrears)
	assert.Equal(t, "0.00", got.AmountOverdue)
	require.Len(t, rr.created, 1)
	assert.Contains(t, rr.created[0].Remark.String, "full settlement")
}

func TestMarkPaidPartialOverrideKeepsPending(t *testing.T) {
	cr := newFakeCustomerRepo()
	rr := &fakeRequestRepo{}
	require.NoError(t, cr.Create(context.Background(), &customer.Customer{
		AccountNumber: "ACC001",
		NewArrears:    500,
		Status:        customer.StatusOverdue,
	}))

	svc := newService(cr, rr)
	result, err := svc.MarkPaid(context.Background(), table(
		[]string{"Account Number", "New Arrears"},
		[]string{"ACC001", "120.00"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)

	got := cr.byAccount["ACC001"]
	assert.Equal(t, customer.StatusPending, got.Status)
	assert.Equal(t, 120.0, got.NewArrears)
	assert.Equal(t, "120.00", got.AmountOverdue)
	require.Len(t, rr.created, 1)
	assert.Contains(t, rr.created[0].Remark.String, "120.00 outstanding")
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	cr := newFakeCustomerRepo()
	rr := &fakeRequestRepo{}
	require.NoError(t, cr.Create(context.Background(), &customer.Customer{
		AccountNumber: "ACC001",
		NewArrears:    500,
		Status:        customer.StatusPending,
	}))

	svc := newService(cr, rr)
	sheet := table([]string{"Account Number"}, []string{"ACC001"})

	for i := 0; i < 2; i++ {
		_, err := svc.MarkPaid(context.Background(), sheet)
		require.NoError(t, err)
	}

	got := cr.byAccount["ACC001"]
	assert.Equal(t, customer.StatusCompleted, got.Status)
	assert.Equal(t, 0.0, got.NewArrears)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	cr := newFakeCustomerRepo()
	svc := newService(cr, &fakeRequestRepo{})

	candidates := svc.Preview(table(
		[]string{"Account Number", "Customer Name", "Contact Number"},
		[]string{"ACC001", "First", "0771"},
		[]string{"ACC002", "Second", "0772"},
	))

	assert.Len(t, candidates, 2)
	assert.Empty(t, cr.byAccount)
}
