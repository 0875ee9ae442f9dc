// internal/service/importer/importer.go
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/spreadsheet"
)

// Per-row failures are reported, not fatal; only the first errorCap messages
// are returned to keep responses bounded.
const errorCap = 10

type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}

type ReconcileResult struct {
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

type MarkPaidResult struct {
	Marked  int      `json:"marked"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Service ingests tabular uploads: fresh imports, arrears reconciliation and
// settlement marking. File-level parse failures abort the whole operation;
// row-level failures never do.
type Service struct {
	customers customer.Repository
	requests  request.Repository
	logger    *zap.Logger
}

func NewService(customers customer.Repository, requests request.Repository, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		requests:  requests,
		logger:    logger,
	}
}

// Preview maps every row for the parse-only endpoint without touching the
// database.
func (s *Service) Preview(t *spreadsheet.Table) []Candidate {
	m := NewMapper(t)
	out := make([]Candidate, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, m.MapRow(row))
	}
	return out
}

// BulkImport inserts rows unordered; a duplicate account number is counted,
// not fatal, and incomplete rows are skipped.
func (s *Service) BulkImport(ctx context.Context, t *spreadsheet.Table) (*ImportResult, error) {
	m := NewMapper(t)
	result := &ImportResult{Errors: []string{}}

	for i, row := range t.Rows {
		cand := m.MapRow(row)
		if !ValidateForImport(&cand) {
			result.Skipped++
			continue
		}

		c := candidateToCustomer(&cand)
		err := s.customers.Create(ctx, c)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, xerrors.ErrDuplicateEntry):
			result.Duplicates++
		default:
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
		}
	}

	s.logger.Info("bulk import finished",
		zap.Int("imported", result.Imported),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ReconcileArrears updates existing customers from a fresh arrears sheet.
// The arrears delta is treated as a payment; any positive payment leaves an
// audit trail as a completed request record.
func (s *Service) ReconcileArrears(ctx context.Context, t *spreadsheet.Table) (*ReconcileResult, error) {
	m := NewMapper(t)
	result := &ReconcileResult{Errors: []string{}}

	for i, row := range t.Rows {
		cand := m.MapRow(row)
		accountNumber := strings.TrimSpace(cand.AccountNumber)
		if accountNumber == "" {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: missing account number", i+2))
			continue
		}

		c, err := s.customers.FindByAccountNumber(ctx, accountNumber)
		if errors.Is(err, xerrors.ErrNotFound) {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: account %s not found", i+2, accountNumber))
			continue
		}
		if err != nil {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		paymentAmount := c.NewArrears - cand.NewArrears
		c.NewArrears = cand.NewArrears
		c.Status = customer.StatusCompleted

		if err := s.customers.Update(ctx, c); err != nil {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Updated++

		if paymentAmount > 0 {
			remark := fmt.Sprintf("partial payment of %s received on account %s",
				customer.FormatAmount(paymentAmount), accountNumber)
			if err := s.appendAuditRequest(ctx, c, remark); err != nil {
				addError(&result.Errors, fmt.Sprintf("row %d: audit record failed: %v", i+2, err))
			}
		}
	}

	s.logger.Info("arrears reconciliation finished",
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// MarkPaid settles accounts from a payment sheet. When the sheet has no
// arrears-override column, or the override is zero or negative, the account
// counts as fully settled; a positive override leaves it PENDING with the
// remaining balance.
func (s *Service) MarkPaid(ctx context.Context, t *spreadsheet.Table) (*MarkPaidResult, error) {
	m := NewMapper(t)
	hasOverride := m.HasArrearsColumn()
	result := &MarkPaidResult{Errors: []string{}}

	for i, row := range t.Rows {
		cand := m.MapRow(row)
		accountNumber := strings.TrimSpace(cand.AccountNumber)
		if accountNumber == "" {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: missing account number", i+2))
			continue
		}

		c, err := s.customers.FindByAccountNumber(ctx, accountNumber)
		if errors.Is(err, xerrors.ErrNotFound) {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: account %s not found", i+2, accountNumber))
			continue
		}
		if err != nil {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		var remark string
		if hasOverride && cand.NewArrears > 0 {
			c.Status = customer.StatusPending
			remark = fmt.Sprintf("partial settlement on account %s, %s outstanding",
				accountNumber, customer.FormatAmount(cand.NewArrears))
		} else {
			c.Status = customer.StatusCompleted
			remark = fmt.Sprintf("full settlement on account %s", accountNumber)
		}
		c.NewArrears = cand.NewArrears
		c.AmountOverdue = customer.FormatAmount(cand.NewArrears)

		if err := s.customers.Update(ctx, c); err != nil {
			result.Skipped++
			addError(&result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Marked++

		if err := s.appendAuditRequest(ctx, c, remark); err != nil {
			addError(&result.Errors, fmt.Sprintf("row %d: audit record failed: %v", i+2, err))
		}
	}

	s.logger.Info("mark-paid finished",
		zap.Int("marked", result.Marked),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// appendAuditRequest records a settlement event in the requests table; these
// rows have no caller and exist purely as an audit trail.
func (s *Service) appendAuditRequest(ctx context.Context, c *customer.Customer, remark string) error {
	_, err := s.requests.Create(ctx, &request.Request{
		TaskID:      ulid.Make().String(),
		Status:      request.StatusCompleted,
		IsCompleted: true,
		Remark:      sql.NullString{String: remark, Valid: true},
	})
	return err
}

func candidateToCustomer(cand *Candidate) *customer.Customer {
	return &customer.Customer{
		AccountNumber:    strings.TrimSpace(cand.AccountNumber),
		Name:             cand.Name,
		ContactNumber:    cand.ContactNumber,
		Region:           nullable(cand.Region),
		RTOM:             nullable(cand.RTOM),
		ProductLabel:     nullable(cand.ProductLabel),
		Medium:           nullable(cand.Medium),
		LatestBillAmount: cand.LatestBillAmount,
		NewArrears:       cand.NewArrears,
		AmountOverdue:    cand.AmountOverdue,
		DaysOverdue:      cand.DaysOverdue,
		CreditScore:      cand.CreditScore,
		CreditClassName:  nullable(cand.CreditClassName),
		Status:           customer.StatusUnassigned,
		ContactHistory:   []customer.ContactRecord{},
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func addError(errs *[]string, msg string) {
	if len(*errs) < errorCap {
		*errs = append(*errs, msg)
	}
}
