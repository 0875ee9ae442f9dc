// internal/domain/customer/dto.go
package customer

// RecordContactRequest is the body of PUT /customers/:id/contact.
type RecordContactRequest struct {
	CallOutcome      string `json:"callOutcome" binding:"required"`
	CustomerResponse string `json:"customerResponse" binding:"required"`
	PaymentMade      bool   `json:"paymentMade"`
	PromisedDate     string `json:"promisedDate"`
}

type CustomerListFilters struct {
	CallerID string `form:"callerId"`
	Status   string `form:"status" binding:"omitempty,oneof=UNASSIGNED OVERDUE PENDING COMPLETED"`
	Search   string `form:"search"` // name, account number, contact number
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
	Count     int        `json:"count"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// CustomerView is a Customer with its assigned caller resolved, returned by
// the contact endpoint and single-customer reads.
type CustomerView struct {
	Customer
	AssignedCaller *AssignedCaller `json:"assigned_caller,omitempty"`
}

// AssignedCaller is the subset of the caller entity exposed on customer reads.
type AssignedCaller struct {
	ID        int64  `json:"id"`
	StaffCode string `json:"staff_code"`
	FullName  string `json:"full_name"`
}
