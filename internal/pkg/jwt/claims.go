// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"arrears-service/internal/domain/auth"
)

// Claims represents the JWT claims carried by every issued token.
type Claims struct {
	Kind   string `json:"kind"` // admin | caller
	Role   string `json:"role"`
	Region string `json:"region,omitempty"`
	RTOM   string `json:"rtom,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request principal.
func (c *Claims) Principal(id int64) auth.Principal {
	return auth.Principal{
		Kind:   auth.PrincipalKind(c.Kind),
		ID:     id,
		Role:   c.Role,
		Region: c.Region,
		RTOM:   c.RTOM,
	}
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
