// internal/domain/admin/dto.go
package admin

type CreateAdminRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Role     string `json:"role" binding:"required,oneof=superadmin regionadmin rtomadmin supervisor uploader"`
	Region   string `json:"region"`
	RTOM     string `json:"rtom"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateAdminRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Role     *string `json:"role" binding:"omitempty,oneof=superadmin regionadmin rtomadmin supervisor uploader"`
	Region   *string `json:"region"`
	RTOM     *string `json:"rtom"`
}

type AdminInfo struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Region   string `json:"region,omitempty"`
	RTOM     string `json:"rtom,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Info converts an Admin into its public representation.
func (a *Admin) Info() AdminInfo {
	return AdminInfo{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
		Role:     a.Role,
		Region:   a.Region.String,
		RTOM:     a.RTOM.String,
		IsActive: a.IsActive,
	}
}
