package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/healthtwin/backend/internal/delivery/http"
	"github.com/healthtwin/backend/internal/repository/postgres"
	"github.com/healthtwin/backend/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Configuration
	cfg := loadConfig()

	log, err := newLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("No .env file found, using system environment")
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			log.Warn("Could not connect to database, running in memory", zap.Error(err))
			if pool != nil {
				pool.Close()
			}
			pool = nil
		}
	}

	// Dependency Injection: Repositories
	var (
		assessments  service.AssessmentRepository
		settingsRepo service.SettingsRepository
	)
	if pool != nil {
		defer pool.Close()
		pgRepo := postgres.NewPostgresRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare database schema", zap.Error(err))
		}
		log.Info("Connected to PostgreSQL")
		assessments, settingsRepo = pgRepo, pgRepo
	} else {
		mockRepo := postgres.NewMockRepository()
		assessments, settingsRepo = mockRepo, mockRepo
	}

	thresholds, err := service.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		log.Fatal("Failed to load thresholds", zap.Error(err))
	}

	// Dependency Injection: Services
	riskClient := service.NewRiskClient(cfg.RiskEngineURL, cfg.RiskEngineTimeout, log)
	defer riskClient.Close()
	riskSvc := service.NewRiskService(
		riskClient,
		service.NewPayloadBuilder(time.Now),
		assessments,
		thresholds,
		log,
	)
	settingsStore := service.NewSettingsStore(settingsRepo)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "HealthTwin Risk Gateway v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, http.NewHandler(riskSvc, settingsStore, riskClient, assessments))

	// Graceful shutdown
	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("risk_engine", cfg.RiskEngineURL),
			zap.Duration("risk_engine_timeout", cfg.RiskEngineTimeout))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	}
	riskSvc.WaitBackground()
	log.Info("Server exited gracefully")
}

type Config struct {
	DatabaseURL       string
	RiskEngineURL     string
	RiskEngineTimeout time.Duration
	ThresholdsFile    string
	LogLevel          string
	Port              string
	Env               string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RiskEngineURL:     getEnv("RISK_ENGINE_URL", "http://localhost:8005/api/v1"),
		RiskEngineTimeout: getDuration("RISK_ENGINE_TIMEOUT", service.DefaultEngineTimeout),
		ThresholdsFile:    getEnv("THRESHOLDS_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func newLogger(level, env string) (*zap.Logger, error) {
	return loggerConfig(level, env).Build()
}

// loggerConfig picks JSON output for production and console output elsewhere
func loggerConfig(level, env string) zap.Config {
	config := zap.NewDevelopmentConfig()
	if env == "production" {
		config = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config
}
