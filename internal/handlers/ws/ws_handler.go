// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"arrears-service/internal/pkg/response"
	authUsecase "arrears-service/internal/service/auth"
	hub "arrears-service/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the frontend host is fixed
		return true
	},
}

type WSHandler struct {
	hub         *hub.Hub
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewWSHandler(h *hub.Hub, authService *authUsecase.AuthService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:         h,
		authService: authService,
		logger:      logger,
	}
}

// HandleConnection authenticates and upgrades a websocket client.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "missing authentication token", nil)
		return
	}

	principal, jti, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("websocket authentication failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusUnauthorized, "authentication failed", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := hub.NewClient(h.hub, conn, principal, jti)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetStats reports connection counts; admin only, mounted behind auth.
func (h *WSHandler) GetStats(c *gin.Context) {
	response.Success(c, http.StatusOK, "websocket stats", gin.H{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	})
}

func (h *WSHandler) extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return ""
}
