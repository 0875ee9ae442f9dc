// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adminHandler "arrears-service/internal/handlers/admin"
	authHandler "arrears-service/internal/handlers/auth"
	callerHandler "arrears-service/internal/handlers/caller"
	customerHandler "arrears-service/internal/handlers/customer"
	taskHandler "arrears-service/internal/handlers/task"
	uploadHandler "arrears-service/internal/handlers/upload"
	wsHandler "arrears-service/internal/handlers/ws"
	"arrears-service/internal/middleware"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	AdminHandler    *adminHandler.AdminHandler
	CustomerHandler *customerHandler.CustomerHandler
	UploadHandler   *uploadHandler.UploadHandler
	CallerHandler   *callerHandler.CallerHandler
	TaskHandler     *taskHandler.TaskHandler
	WSHandler       *wsHandler.WSHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/stats", h.CustomerHandler.GetStats)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)

		// Core contact-recording operation; callers and admins alike.
		customers.PUT("/:id/contact", h.CustomerHandler.RecordContact)
	}

	adminCustomers := api.Group("/customers")
	adminCustomers.Use(h.AuthMiddleware.AdminOnly()...)
	{
		adminCustomers.DELETE("/:id", h.CustomerHandler.DeleteCustomer)
	}

	// ==================== Uploads ====================
	uploads := api.Group("/upload")
	uploads.Use(h.AuthMiddleware.AdminOnly()...)
	{
		uploads.POST("/parse", h.UploadHandler.Parse)
		uploads.POST("/parse-and-import", h.UploadHandler.ParseAndImport)
		uploads.POST("/import-arrears", h.UploadHandler.ImportArrears)
		uploads.POST("/mark-paid", h.UploadHandler.MarkPaid)
		uploads.GET("/template", h.UploadHandler.Template)
	}

	// ==================== Callers ====================
	callers := api.Group("/callers")
	callers.Use(h.AuthMiddleware.AdminOnly()...)
	{
		callers.POST("", h.CallerHandler.CreateCaller)
		callers.GET("", h.CallerHandler.ListCallers)
		callers.GET("/:id", h.CallerHandler.GetCaller)
		callers.GET("/:id/stats", h.CallerHandler.GetStats)
		callers.POST("/:id/assign", h.CallerHandler.AssignCustomers)
	}

	// ==================== Tasks ====================
	tasks := api.Group("/tasks")
	tasks.Use(h.AuthMiddleware.Auth())
	{
		tasks.GET("", h.TaskHandler.ListTasks)
		tasks.GET("/:taskId", h.TaskHandler.GetTask)
		tasks.PUT("/:taskId/accept", h.TaskHandler.AcceptTask)
		tasks.PUT("/:taskId/decline", h.TaskHandler.DeclineTask)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	{
		superAdmin := admin.Group("")
		superAdmin.Use(h.AuthMiddleware.SuperAdminOnly()...)
		{
			superAdmin.POST("/admins", h.AdminHandler.CreateAdmin)
			superAdmin.GET("/admins", h.AdminHandler.ListAdmins)
			superAdmin.PUT("/admins/:id", h.AdminHandler.UpdateAdmin)
			superAdmin.DELETE("/admins/:id", h.AdminHandler.DeactivateAdmin)
			superAdmin.GET("/ws/stats", h.WSHandler.GetStats)
		}
	}
}
