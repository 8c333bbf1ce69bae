package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/auth"
	"github.com/planora-ai/planora-engine/pkg/config"
	"github.com/planora-ai/planora-engine/pkg/database"
	"github.com/planora-ai/planora-engine/pkg/events"
	"github.com/planora-ai/planora-engine/pkg/generation"
	"github.com/planora-ai/planora-engine/pkg/handlers"
	"github.com/planora-ai/planora-engine/pkg/logging"
	"github.com/planora-ai/planora-engine/pkg/middleware"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
	"github.com/planora-ai/planora-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	migrationsPath  = "migrations"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("redis_enabled", cfg.Redis.Host != ""),
		zap.Bool("kafka_enabled", cfg.Kafka.Enabled()),
		zap.String("generation_provider", cfg.Generation.Provider))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	redisClient, err := database.NewRedisClient(&database.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var publisher services.AuditPublisher
	if cfg.Kafka.Enabled() {
		auditPublisher := events.NewAuditPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() { _ = auditPublisher.Close() }()
		publisher = auditPublisher
	}

	genClient, err := generation.NewClient(&generation.Config{
		Provider:  cfg.Generation.Provider,
		APIKey:    cfg.Generation.APIKey,
		BaseURL:   cfg.Generation.BaseURL,
		Model:     cfg.Generation.Model,
		MaxTokens: cfg.Generation.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	// Repositories
	auditRepo := repositories.NewAuditRepository()
	eventRepo := repositories.NewEventRepository()
	assignmentRepo := repositories.NewAssignmentRepository()
	examRepo := repositories.NewExamRepository()
	sessionRepo := repositories.NewStudySessionRepository()
	courseRepo := repositories.NewCourseRepository()
	semesterRepo := repositories.NewSemesterRepository()

	// Entity handlers, one per kind
	handlerTable := map[models.EntityKind]services.EntityHandler{
		models.KindEvent:              services.NewEventService(eventRepo, logger),
		models.KindAssignment:         services.NewAssignmentService(assignmentRepo, logger),
		models.KindExam:               services.NewExamService(examRepo, logger),
		models.KindStudySession:       services.NewStudySessionService(sessionRepo, logger),
		models.KindCourse:             services.NewCourseService(courseRepo, semesterRepo, logger),
		models.KindDocumentGeneration: services.NewDocumentGenerationService(genClient, logger),
	}

	guard := services.NewIdempotencyGuard(auditRepo, redisClient, logger)
	router := services.NewCommandRouter(handlerTable, guard, auditRepo, database.ScopeTxRunner{}, publisher, logger)

	// Middleware chain: request id -> auth -> owner scope
	authMiddleware := auth.NewMiddleware(auth.NewAuthService(jwksClient, logger), logger)
	scoped := database.WithOwnerContext(db, logger)
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireAuth(scoped(h))
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewCommandHandler(router, logger).RegisterRoutes(mux, wrap)
	handlers.NewAuditHandler(auditRepo, logger).RegisterRoutes(mux, wrap)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestID(middleware.RequestLogger(logger)(mux)),
	}

	go func() {
		logger.Info("Starting planora-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Env == "local" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
