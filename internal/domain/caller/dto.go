// internal/domain/caller/dto.go
package caller

type CreateCallerRequest struct {
	StaffCode     string `json:"staff_code" binding:"required,max=32"`
	FullName      string `json:"full_name" binding:"required,max=255"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	ContactNumber string `json:"contact_number" binding:"required,max=20"`
	Region        string `json:"region"`
	RTOM          string `json:"rtom"`
	Password      string `json:"password" binding:"required,min=8"`
	MaxLoad       int    `json:"max_load" binding:"omitempty,min=1"`
}

type CallerListFilters struct {
	TaskStatus string `form:"taskStatus" binding:"omitempty,oneof=IDLE ASSIGNED"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

type AssignCustomersRequest struct {
	CustomerIDs []int64 `json:"customerIds" binding:"required,min=1"`
}
