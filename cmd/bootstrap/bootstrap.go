package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-finder/config"
	deliveryHttp "clinic-finder/internal/delivery/http"
	"clinic-finder/internal/delivery/http/handler"
	"clinic-finder/internal/delivery/http/middleware"
	"clinic-finder/internal/infrastructure/cache"
	"clinic-finder/internal/infrastructure/database"
	"clinic-finder/internal/repository"
	"clinic-finder/internal/service"
	"clinic-finder/internal/usecase"
	"clinic-finder/pkg/jwt"
	"clinic-finder/pkg/metrics"
	"clinic-finder/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const startupSyncTimeout = 30 * time.Second

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	DB            *gorm.DB
	RedisClient   *redis.Client
	StatusService *service.DoctorStatusService
	Server        *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, log); err != nil {
			app.Close()
			return nil, err
		}
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize all layers
	app.initializeServer(cfg, db, redisClient, log)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}
	log.SetLevel(level)

	return log
}

// initializeServer creates the engine services and the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) {
	collector := metrics.NewCollector("clinic_finder")

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize caches
	statusCache := cache.NewDoctorStatusCache(redisClient, log, cfg.Redis, cfg.Breaker)
	tokenStore := cache.NewTokenStore(redisClient)

	// Initialize repositories
	branchRepo := repository.NewBranchRepository(db)
	doctorRepo := repository.NewLiveStatusDoctorRepository(repository.NewDoctorRepository(db), statusCache, log)
	appointmentRepo := repository.NewAppointmentRepository(db)
	statusRepo := repository.NewDoctorStatusRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	policy := service.FailOpenPolicy{
		EmptyScheduleAvailable: cfg.Search.EmptyScheduleAvailable,
		ConflictErrorMeansFree: cfg.Search.ConflictFailOpen,
	}
	schedules := service.NewScheduleEvaluator(log, collector, policy)
	classifier := service.NewAvailabilityClassifier(appointmentRepo, schedules, log, collector, policy, cfg.Search.ConflictTolerance)
	searchService := service.NewBranchSearchService(branchRepo, doctorRepo, classifier, log, collector, cfg.Search.MaxWorkers, cfg.Search.BranchTimeout)
	recommendationService := service.NewBranchRecommendationService(branchRepo, doctorRepo, log, collector, cfg.Search.MaxWorkers, cfg.Search.BranchTimeout)
	auditService := service.NewAuditService(log, auditLogRepo)
	statusService := service.NewDoctorStatusService(doctorRepo, statusRepo, statusCache, auditService, log, collector)
	app.StatusService = statusService

	// Warm the status cache, the database stays authoritative if this fails
	syncCtx, cancel := context.WithTimeout(context.Background(), startupSyncTimeout)
	if err := statusService.SyncOnStartup(syncCtx); err != nil {
		log.Warnf("Failed to sync doctor statuses to Redis: %+v", err)
	}
	cancel()

	// Initialize usecases
	branchSearchUsecase := usecase.NewBranchSearchUsecase(log, collector, searchService, recommendationService, cfg.Search)
	doctorUsecase := usecase.NewDoctorUsecase(log, doctorRepo, schedules, statusService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	branchHandler := handler.NewBranchHandler(branchSearchUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(branchHandler, doctorHandler, auditLogHandler, authMiddleware, corsMiddleware, collector)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections
func (app *App) Close() {
	if app.StatusService != nil {
		app.StatusService.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
