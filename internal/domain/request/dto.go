// internal/domain/request/dto.go
package request

type RequestListFilters struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING ACCEPTED COMPLETED DECLINED"`
	CallerID int64  `form:"callerId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type RequestListResponse struct {
	Requests []Request `json:"requests"`
	Count    int       `json:"count"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
