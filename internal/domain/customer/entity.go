// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Customer lifecycle status. Transitions are owned by the contact workflow
// and the import reconciliation paths; nothing else writes status.
const (
	StatusUnassigned = "UNASSIGNED"
	StatusOverdue    = "OVERDUE"
	StatusPending    = "PENDING"
	StatusCompleted  = "COMPLETED"
)

// Call outcomes recorded in contact history.
const (
	OutcomeAnswered    = "ANSWERED"
	OutcomeNoAnswer    = "NO_ANSWER"
	OutcomePhoneOff    = "PHONE_OFF"
	OutcomeUnavailable = "CUSTOMER_UNAVAILABLE"
	OutcomeWrongNumber = "WRONG_NUMBER"
)

// Outcomes is the closed set accepted by the contact endpoint.
var Outcomes = []string{
	OutcomeAnswered,
	OutcomeNoAnswer,
	OutcomePhoneOff,
	OutcomeUnavailable,
	OutcomeWrongNumber,
}

type Customer struct {
	ID            int64  `json:"id" db:"id"`
	AccountNumber string `json:"account_number" db:"account_number"`
	Name          string `json:"name" db:"name"`
	ContactNumber string `json:"contact_number" db:"contact_number"`

	// Classification
	Region       sql.NullString `json:"region,omitempty" db:"region"`
	RTOM         sql.NullString `json:"rtom,omitempty" db:"rtom"`
	ProductLabel sql.NullString `json:"product_label,omitempty" db:"product_label"`
	Medium       sql.NullString `json:"medium,omitempty" db:"medium"`

	// Financials. AmountOverdue and DaysOverdue are carried as strings for
	// upstream compatibility; all arithmetic goes through ParseAmount.
	LatestBillAmount float64        `json:"latest_bill_amount" db:"latest_bill_amount"`
	NewArrears       float64        `json:"new_arrears" db:"new_arrears"`
	AmountOverdue    string         `json:"amount_overdue" db:"amount_overdue"`
	DaysOverdue      string         `json:"days_overdue" db:"days_overdue"`
	CreditScore      float64        `json:"credit_score" db:"credit_score"`
	CreditClassName  sql.NullString `json:"credit_class_name,omitempty" db:"credit_class_name"`

	// Assignment
	AssignedTo sql.NullInt64  `json:"assigned_to,omitempty" db:"assigned_to"`
	TaskID     sql.NullString `json:"task_id,omitempty" db:"task_id"`

	Status           string          `json:"status" db:"status"`
	Response         sql.NullString  `json:"response,omitempty" db:"response"`
	PreviousResponse sql.NullString  `json:"previous_response,omitempty" db:"previous_response"`
	ContactHistory   []ContactRecord `json:"contact_history" db:"contact_history"`

	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ContactRecord is one entry of the append-only contact history, embedded as
// JSONB. Entries are never edited once written.
type ContactRecord struct {
	ContactDate      string `json:"contactDate"` // DD/MM/YYYY
	Outcome          string `json:"outcome"`
	Remark           string `json:"remark"`
	CRMAction        string `json:"crmAction"`
	CustomerFeedback string `json:"customerFeedback"`
	CreditAction     string `json:"creditAction"`
	RetriedCount     int    `json:"retriedCount"`
	PromisedDate     string `json:"promisedDate"`
	PaymentMade      bool   `json:"paymentMade"`
	ContactedBy      *int64 `json:"contactedBy"`
}

// ContactDateLayout is the calendar-date format used in contact history.
const ContactDateLayout = "02/01/2006"

// ParseAmount converts a string-typed monetary field to a float. Empty or
// malformed values fall back to 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders a float back into the string representation used by
// the string-typed monetary columns.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ValidOutcome reports whether o is one of the accepted call outcomes.
func ValidOutcome(o string) bool {
	for _, v := range Outcomes {
		if v == o {
			return true
		}
	}
	return false
}

type CustomerStats struct {
	TotalCustomers     int64   `json:"total_customers"`
	Unassigned         int64   `json:"unassigned"`
	Overdue            int64   `json:"overdue"`
	Pending            int64   `json:"pending"`
	Completed          int64   `json:"completed"`
	ContactedCustomers int64   `json:"contacted_customers"`
	TotalArrears       float64 `json:"total_arrears"`
}
