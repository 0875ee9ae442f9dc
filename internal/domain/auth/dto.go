// internal/domain/auth/dto.go
package auth

import "time"

// LoginRequest authenticates either an admin (by email) or a caller
// (by staff code). Exactly one identifier must be supplied.
type LoginRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	StaffCode string `json:"staffCode"`
	Password  string `json:"password" binding:"required,min=4"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Principal Principal   `json:"principal"`
	Profile   interface{} `json:"profile"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}
