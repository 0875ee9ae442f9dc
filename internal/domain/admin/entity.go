// internal/domain/admin/entity.go
package admin

import (
	"database/sql"
	"time"
)

// Admin roles. Callers are a separate principal kind and are not listed here.
const (
	RoleSuperAdmin = "superadmin"
	RoleRegion     = "regionadmin"
	RoleRTOM       = "rtomadmin"
	RoleSupervisor = "supervisor"
	RoleUploader   = "uploader"
)

var Roles = []string{RoleSuperAdmin, RoleRegion, RoleRTOM, RoleSupervisor, RoleUploader}

type Admin struct {
	ID           int64          `json:"id" db:"id"`
	FullName     string         `json:"full_name" db:"full_name"`
	Email        string         `json:"email" db:"email"`
	Role         string         `json:"role" db:"role"`
	Region       sql.NullString `json:"region,omitempty" db:"region"`
	RTOM         sql.NullString `json:"rtom,omitempty" db:"rtom"`
	PasswordHash string         `json:"-" db:"password_hash"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	CreatedBy    sql.NullInt64  `json:"created_by,omitempty" db:"created_by"`
	LastLogin    sql.NullTime   `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// ValidRole reports whether r is a known admin role.
func ValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}
