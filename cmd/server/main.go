package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medcircle/commons/api/internal/config"
	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/handler"
	"github.com/medcircle/commons/api/internal/jobs"
	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/repository"
	"github.com/medcircle/commons/api/internal/service"
	"github.com/medcircle/commons/api/pkg/identity"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A local .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	store := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	logger.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize token verification
	identityService, err := identity.NewService(identity.Config{
		PrivateKeyPath: cfg.Identity.PrivateKeyPath,
		PublicKeyPath:  cfg.Identity.PublicKeyPath,
		Issuer:         cfg.Identity.Issuer,
		ExpirationMins: cfg.Identity.ExpirationMins,
	})
	if err != nil {
		logger.Error("failed to initialize identity service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	forumRepo := repository.NewForumRepository(store)
	postRepo := repository.NewPostRepository(store)
	commentRepo := repository.NewCommentRepository(store)
	reportRepo := repository.NewReportRepository(store)
	strikeRepo := repository.NewStrikeRepository(store)
	archiveRepo := repository.NewArchiveRepository(store)
	intentRepo := repository.NewIntentRepository(store)
	modlogRepo := repository.NewModLogRepository(store)

	// Initialize event hub and services
	eventHub := service.NewEventHub()
	defer eventHub.Close()
	notifier := service.NewHubNotifier(eventHub, logger)

	mutationService := service.NewMutationService(store, postRepo, commentRepo, userRepo, eventHub)
	forumService := service.NewForumService(store, forumRepo, userRepo, archiveRepo, modlogRepo, eventHub, notifier)
	postService := service.NewPostService(store, postRepo, forumRepo, userRepo, archiveRepo, modlogRepo, eventHub, notifier)
	commentService := service.NewCommentService(store, commentRepo, postRepo, forumRepo, userRepo, archiveRepo, intentRepo, modlogRepo, eventHub, notifier, logger)
	reportService := service.NewReportService(store, reportRepo, userRepo, postRepo, commentRepo, eventHub)
	strikeService := service.NewStrikeService(store, strikeRepo, userRepo, modlogRepo, eventHub, notifier, logger)
	modlogService := service.NewModLogService(modlogRepo, archiveRepo, userRepo)

	// Start background jobs
	strikeSweeper := jobs.NewStrikeSweeper(strikeService, cfg.Jobs.StrikeSweepInterval, logger)
	strikeSweeper.Start()
	defer strikeSweeper.Stop()

	cascadeRecovery := jobs.NewCascadeRecovery(commentService, cfg.Jobs.CascadeRecoveryInterval, cfg.Jobs.CascadeRecoveryGrace, logger)
	cascadeRecovery.Start()
	defer cascadeRecovery.Stop()

	// Initialize handlers
	reactionHandler := handler.NewReactionHandler(mutationService)
	forumHandler := handler.NewForumHandler(forumService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)
	reportHandler := handler.NewReportHandler(reportService)
	strikeHandler := handler.NewStrikeHandler(strikeService)
	modlogHandler := handler.NewModLogHandler(modlogService)
	eventsHandler := handler.NewEventsHandler(eventHub)
	healthHandler := handler.NewHealthHandler(store, version)

	// Rate limiting and idempotency state
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL: cfg.Idempotency.TTL,
	})
	defer idempotencyStore.Stop()

	// Register routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)

	authMiddleware := middleware.Auth(identityService)
	reactionHandler.RegisterRoutes(mux, authMiddleware)
	forumHandler.RegisterRoutes(mux, authMiddleware)
	postHandler.RegisterRoutes(mux, authMiddleware)
	commentHandler.RegisterRoutes(mux, authMiddleware)
	reportHandler.RegisterRoutes(mux, authMiddleware)
	strikeHandler.RegisterRoutes(mux, authMiddleware)
	modlogHandler.RegisterRoutes(mux, authMiddleware)
	eventsHandler.RegisterRoutes(mux, authMiddleware)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server exited")
}
