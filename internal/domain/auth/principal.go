// internal/domain/auth/principal.go
package auth

// PrincipalKind is the closed set of account types that can authenticate.
// Dispatch on principal kind replaces any stringly-typed model lookup.
type PrincipalKind string

const (
	KindAdmin  PrincipalKind = "admin"
	KindCaller PrincipalKind = "caller"
)

// RoleCaller is the role claim carried by caller principals; admin principals
// carry one of the admin roles.
const RoleCaller = "caller"

// Principal identifies the authenticated account for the current request.
type Principal struct {
	Kind   PrincipalKind `json:"kind"`
	ID     int64         `json:"id"`
	Role   string        `json:"role"`
	Region string        `json:"region,omitempty"`
	RTOM   string        `json:"rtom,omitempty"`
}

// IsAdmin reports whether the principal is an admin of any role.
func (p Principal) IsAdmin() bool {
	return p.Kind == KindAdmin
}

// IsSuperAdmin reports whether the principal can manage admin accounts.
func (p Principal) IsSuperAdmin() bool {
	return p.Kind == KindAdmin && p.Role == "superadmin"
}
