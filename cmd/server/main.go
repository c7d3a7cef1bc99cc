package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfai/ambassador/api/internal/config"
	"github.com/mfai/ambassador/api/internal/database"
	"github.com/mfai/ambassador/api/internal/handler"
	"github.com/mfai/ambassador/api/internal/jobs"
	"github.com/mfai/ambassador/api/internal/logging"
	"github.com/mfai/ambassador/api/internal/middleware"
	"github.com/mfai/ambassador/api/internal/repository"
	"github.com/mfai/ambassador/api/internal/service"
	"github.com/mfai/ambassador/api/pkg/jwt"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logger, err := logging.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
		SlowQuery: cfg.Database.SlowQuery,
	})

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	err = db.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	logger.Info("connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	if err != nil {
		logger.Fatal("failed to initialize JWT service", zap.Error(err))
	}

	// Initialize repositories
	ambassadorRepo := repository.NewAmbassadorRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(jwtService)
	authService := service.NewAuthService(service.AuthServiceConfig{
		AmbassadorRepo: ambassadorRepo,
		TokenService:   tokenService,
		AdminEmails:    cfg.Admin.Emails,
	})
	missionService := service.NewMissionService(service.MissionServiceConfig{
		MissionRepo:    missionRepo,
		AmbassadorRepo: ambassadorRepo,
	})
	resourceService := service.NewResourceService(resourceRepo, ambassadorRepo)
	adminService := service.NewAdminService(ambassadorRepo)

	if len(cfg.Admin.Emails) > 0 {
		bootstrapCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		granted, err := adminService.EnsureAdmins(bootstrapCtx, cfg.Admin.Emails)
		cancel()
		if err != nil {
			logger.Error("failed to grant configured admin roles", zap.Error(err))
		} else {
			logger.Info("admin accounts checked",
				zap.Int("configured", len(cfg.Admin.Emails)),
				zap.Int("granted", len(granted)),
			)
		}
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL: 24 * time.Hour,
	})
	defer idempotencyStore.Stop()

	// Start background jobs
	expiryJob := jobs.NewMissionExpiryJob(missionRepo, cfg.Jobs.MissionExpiryInterval)
	if err := expiryJob.Start(); err != nil {
		logger.Fatal("failed to start mission expiry job", zap.Error(err))
	}
	defer func() { _ = expiryJob.Stop() }()

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authService),
		Missions:       handler.NewMissionHandler(missionService),
		Resources:      handler.NewResourceHandler(resourceService),
		Admin:          handler.NewAdminHandler(adminService),
		DB:             db,
		Tokens:         tokenService,
		Ambassadors:    ambassadorRepo,
		RateLimiter:    rateLimiter,
		Idempotency:    idempotencyStore,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
