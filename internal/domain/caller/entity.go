// internal/domain/caller/entity.go
package caller

import (
	"database/sql"
	"time"
)

// Caller task status. Flipped to IDLE by the contact workflow once no
// assigned customers remain PENDING or OVERDUE.
const (
	TaskStatusIdle     = "IDLE"
	TaskStatusAssigned = "ASSIGNED"
)

type Caller struct {
	ID            int64          `json:"id" db:"id"`
	StaffCode     string         `json:"staff_code" db:"staff_code"`
	FullName      string         `json:"full_name" db:"full_name"`
	Email         sql.NullString `json:"email,omitempty" db:"email"`
	ContactNumber string         `json:"contact_number" db:"contact_number"`
	Region        sql.NullString `json:"region,omitempty" db:"region"`
	RTOM          sql.NullString `json:"rtom,omitempty" db:"rtom"`
	PasswordHash  string         `json:"-" db:"password_hash"`

	TaskStatus  string `json:"task_status" db:"task_status"`
	CurrentLoad int    `json:"current_load" db:"current_load"`
	MaxLoad     int    `json:"max_load" db:"max_load"`
	IsActive    bool   `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
