// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"arrears-service/internal/domain/admin"
	"arrears-service/internal/domain/auth"
	"arrears-service/internal/pkg/response"
	authsvc "arrears-service/internal/service/auth"
)

const (
	principalKey = "principal"
	jtiKey       = "jti"
)

type AuthMiddleware struct {
	authService *authsvc.AuthService
}

func NewAuthMiddleware(authService *authsvc.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer token and its Redis session, then stores the
// principal on the context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		principal, jti, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set(principalKey, principal)
		c.Set(jtiKey, jti)
		c.Next()
	}
}

// RequireRole requires the principal to hold one of the given roles.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions",
			errors.New("principal does not have a required role"), map[string]interface{}{
				"required_roles": roles,
				"role":           p.Role,
			})
	}
}

// AdminOnly allows any admin role and rejects callers.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		func(c *gin.Context) {
			p, ok := GetPrincipal(c)
			if !ok || !p.IsAdmin() {
				response.Error(c, http.StatusForbidden, "admin access required", nil)
				return
			}
			c.Next()
		},
	}
}

// SuperAdminOnly restricts a route to the superadmin role.
func (m *AuthMiddleware) SuperAdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(admin.RoleSuperAdmin),
	}
}

// extractToken pulls the Bearer token from the Authorization header, falling
// back to the token query param for websocket clients.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// GetPrincipal fetches the authenticated principal from the context.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// GetJTI fetches the session id of the current token.
func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get(jtiKey)
	if !exists {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}
