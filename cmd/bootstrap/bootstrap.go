package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-system/config"
	deliveryHttp "catalog-system/internal/delivery/http"
	"catalog-system/internal/delivery/http/handler"
	"catalog-system/internal/delivery/http/middleware"
	"catalog-system/internal/infrastructure/cache"
	"catalog-system/internal/infrastructure/database"
	"catalog-system/internal/infrastructure/mail"
	"catalog-system/internal/repository"
	"catalog-system/internal/service"
	"catalog-system/internal/usecase"
	"catalog-system/pkg/jwt"
	"catalog-system/pkg/password"
	"catalog-system/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Mailer      mail.Mailer
	Server      *http.Server
}

// LoadConfig reads the configuration and sets up the global logger from it.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	return cfg, nil
}

// OpenDatabase connects to the configured database and applies migrations.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}

	return db, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	mailer, err := mail.NewMailer(*cfg, logrus.StandardLogger())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to set up mailer: %w", err)
	}
	app.Mailer = mailer

	app.Server = initializeServer(cfg, db, redisClient, mailer)

	return app, nil
}

// NewUserUsecase wires the user workflow alone, for command line tasks
// that need neither Redis nor mail.
func NewUserUsecase(db *gorm.DB) usecase.UserUsecase {
	return usecase.NewUserUsecase(
		logrus.StandardLogger(),
		repository.NewUserRepository(db),
		password.NewBcryptHasher(),
		validator.NewValidator(),
	)
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mailer mail.Mailer) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator and hasher
	customValidator := validator.NewValidator()
	hasher := password.NewBcryptHasher()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	tokenRepo := repository.NewTokenRepository(redisClient)

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	notificationService := service.NewNotificationService(log, userRepo, mailer, cfg.Mail.From, cfg.Mail.FailSilently)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, tokenRepo, jwtService, hasher, customValidator)
	productUsecase := usecase.NewProductUsecase(log, productRepo, notificationService, customValidator)
	userUsecase := usecase.NewUserUsecase(log, userRepo, hasher, customValidator)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase)
	productHandler := handler.NewProductHandler(log, productUsecase)
	userHandler := handler.NewUserHandler(log, userUsecase)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)
	metricsMiddleware := middleware.NewMetricsMiddleware(registry)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		productHandler,
		userHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
		metricsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and blocks until it is shut down.
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.shutdown()
	return nil
}

func (app *App) shutdown() {
	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close releases the mailer, database and redis connections.
func (app *App) Close() {
	if app.Mailer != nil {
		if err := app.Mailer.Close(); err != nil {
			logrus.Warnf("Failed to close mailer: %v", err)
		}
	}

	if app.DB != nil {
		closeDB(app.DB)
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}
