// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arrears-service/internal/config"
	"arrears-service/internal/db"
	adminHandler "arrears-service/internal/handlers/admin"
	authHandler "arrears-service/internal/handlers/auth"
	callerHandler "arrears-service/internal/handlers/caller"
	customerHandler "arrears-service/internal/handlers/customer"
	taskHandler "arrears-service/internal/handlers/task"
	uploadHandler "arrears-service/internal/handlers/upload"
	wsHandler "arrears-service/internal/handlers/ws"
	"arrears-service/internal/middleware"
	"arrears-service/internal/pkg/jwt"
	"arrears-service/internal/pkg/session"
	"arrears-service/internal/repository/postgres"
	"arrears-service/internal/service/assignment"
	authUsecase "arrears-service/internal/service/auth"
	callersvc "arrears-service/internal/service/caller"
	"arrears-service/internal/service/contact"
	customersvc "arrears-service/internal/service/customer"
	"arrears-service/internal/service/importer"
	"arrears-service/internal/ws"
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	authService *authUsecase.AuthService
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Repositories -----
	customerRepo := postgres.NewCustomerRepository(pool)
	callerRepo := postgres.NewCallerRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	// ----- WebSocket Hub -----
	hub := ws.NewHub(logger)
	go hub.Run(context.Background())

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		adminRepo,
		callerRepo,
		jwtManager,
		sessionManager,
		rateLimiter,
		logger,
	)
	s.authService = authService

	customerService := customersvc.NewCustomerService(customerRepo, callerRepo, logger)
	contactService := contact.NewService(customerRepo, callerRepo, requestRepo, hub, logger)
	importerService := importer.NewService(customerRepo, requestRepo, logger)
	assignmentService := assignment.NewService(customerRepo, callerRepo, requestRepo, hub, logger)
	callerService := callersvc.NewCallerService(callerRepo, customerRepo, requestRepo, logger)

	// ----- Initialize Super Admin -----
	if err := s.initializeSuperAdmin(); err != nil {
		logger.Error("failed to initialize super admin", zap.Error(err))
		// Startup continues; the account can be created manually.
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	adminHandlerInst := adminHandler.NewAdminHandler(authService, logger)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService, contactService)
	uploadHandlerInst := uploadHandler.NewUploadHandler(importerService, s.cfg.MaxUploadBytes, logger)
	callerHandlerInst := callerHandler.NewCallerHandler(callerService, assignmentService)
	taskHandlerInst := taskHandler.NewTaskHandler(assignmentService)
	wsHandlerInst := wsHandler.NewWSHandler(hub, authService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:     authHandlerInst,
		AdminHandler:    adminHandlerInst,
		CustomerHandler: customerHandlerInst,
		UploadHandler:   uploadHandlerInst,
		CallerHandler:   callerHandlerInst,
		TaskHandler:     taskHandlerInst,
		WSHandler:       wsHandlerInst,
		AuthMiddleware:  authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// initializeSuperAdmin creates the bootstrap superadmin if it doesn't exist.
func (s *Server) initializeSuperAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	fullName := os.Getenv("SUPER_ADMIN_NAME")

	if email == "" || password == "" {
		s.logger.Warn("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD not set, skipping bootstrap")
		return nil
	}
	if fullName == "" {
		fullName = "Super Administrator"
	}
	if len(password) < 8 {
		return fmt.Errorf("super admin password must be at least 8 characters")
	}

	return s.authService.EnsureSuperAdminExists(ctx, email, password, fullName)
}
