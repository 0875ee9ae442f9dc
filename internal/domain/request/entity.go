// internal/domain/request/entity.go
package request

import (
	"database/sql"
	"time"
)

// Request status. COMPLETED and DECLINED are terminal.
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusCompleted = "COMPLETED"
	StatusDeclined  = "DECLINED"
)

// Request is a batch of customers assigned to one caller at one time,
// tracked to completion. Settlement audit entries recorded by the import
// reconciliation reuse this table with no caller and a remark.
type Request struct {
	ID       int64         `json:"id" db:"id"`
	TaskID   string        `json:"task_id" db:"task_id"`
	CallerID sql.NullInt64 `json:"caller_id,omitempty" db:"caller_id"`

	// Customers holds point-in-time snapshots taken at assignment; they do
	// not track later edits to the customer records.
	Customers []CustomerSnapshot `json:"customers" db:"customers"`

	CustomersSent      int            `json:"customers_sent" db:"customers_sent"`
	CustomersContacted int            `json:"customers_contacted" db:"customers_contacted"`
	Status             string         `json:"status" db:"status"`
	IsCompleted        bool           `json:"is_completed" db:"is_completed"`
	Remark             sql.NullString `json:"remark,omitempty" db:"remark"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerSnapshot is the denormalized customer view embedded in a request.
type CustomerSnapshot struct {
	CustomerID    int64  `json:"customerId"`
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	ContactNumber string `json:"contactNumber"`
	AmountOverdue string `json:"amountOverdue"`
}

// CustomerIDs returns the snapshot customer ids in assignment order.
func (r *Request) CustomerIDs() []int64 {
	ids := make([]int64, 0, len(r.Customers))
	for _, s := range r.Customers {
		ids = append(ids, s.CustomerID)
	}
	return ids
}

// ContainsCustomer reports whether the snapshot list includes customerID.
func (r *Request) ContainsCustomer(customerID int64) bool {
	for _, s := range r.Customers {
		if s.CustomerID == customerID {
			return true
		}
	}
	return false
}
