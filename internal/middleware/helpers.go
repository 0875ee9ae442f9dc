// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"arrears-service/internal/domain/auth"
)

// MustGetPrincipal gets the principal from context or panics. Only call it
// behind Auth().
func MustGetPrincipal(c *gin.Context) auth.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// MustGetJTI gets the session id from context or panics.
func MustGetJTI(c *gin.Context) string {
	jti, ok := GetJTI(c)
	if !ok {
		panic("jti not found in context")
	}
	return jti
}

// IsAuthenticated checks whether the request carries a principal.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := GetPrincipal(c)
	return ok
}
