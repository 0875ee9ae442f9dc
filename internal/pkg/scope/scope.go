// internal/pkg/scope/scope.go
package scope

import "arrears-service/internal/domain/auth"

// Scope carries the role/region/RTOM restriction applied to read queries.
// Superadmins and uploaders see everything; region admins are confined to
// their region; RTOM admins, supervisors and callers to their RTOM.
type Scope struct {
	Role   string
	Region string
	RTOM   string
}

func ForPrincipal(p auth.Principal) Scope {
	return Scope{Role: p.Role, Region: p.Region, RTOM: p.RTOM}
}

// ByRTOM reports whether queries under this scope must filter on RTOM.
func (s Scope) ByRTOM() bool {
	switch s.Role {
	case "rtomadmin", "supervisor", auth.RoleCaller:
		return s.RTOM != ""
	}
	return false
}

// ByRegion reports whether queries under this scope must filter on region.
func (s Scope) ByRegion() bool {
	return s.Role == "regionadmin" && s.Region != ""
}

// Unrestricted reports whether no geographic filter applies.
func (s Scope) Unrestricted() bool {
	return !s.ByRTOM() && !s.ByRegion()
}
