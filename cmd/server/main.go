package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelley-server/internal/config"
	"shelley-server/internal/database"
	"shelley-server/internal/handler"
	"shelley-server/internal/logger"
	"shelley-server/internal/messaging"
	"shelley-server/internal/middleware"
	"shelley-server/internal/repository"
	"shelley-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		zap.L().Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("Starting shelley-server", zap.String("port", cfg.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Infrastructure ---
	pool, err := database.NewPostgresPool(ctx, cfg.GetDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	if err := database.ApplyMigrations(pool, log); err != nil {
		log.Fatal("Failed to apply database migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	mqConn, err := connectRabbitMQ(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() { _ = mqConn.Close() }()

	// --- Repositories ---
	sessionRepo := repository.NewPgSessionRepository(pool, log)
	progressRepo := repository.NewPgProgressRepository(pool, log)
	accountRepo := repository.NewPgAccountRepository(pool, log)
	overrideRepo := repository.NewPgNarrativeOverrideRepository(pool, log)
	telemetryRepo := repository.NewPgTelemetryRepository(pool, log)

	// --- Services ---
	sessionService := service.NewSessionService(sessionRepo, progressRepo, log)
	progressService := service.NewProgressService(progressRepo, log)
	rewardService := service.NewRewardService(accountRepo, progressRepo, log)
	authService := service.NewAuthService(accountRepo, progressRepo, []byte(cfg.JWTSecret), log)
	narrativeService := service.NewNarrativeService(overrideRepo, redisClient, log)

	// --- Messaging ---
	telemetryPublisher, err := messaging.NewRabbitTelemetryPublisher(mqConn, log)
	if err != nil {
		log.Fatal("Failed to create telemetry publisher", zap.Error(err))
	}
	telemetryConsumer, err := messaging.NewTelemetryConsumer(mqConn, telemetryRepo, log)
	if err != nil {
		log.Fatal("Failed to create telemetry consumer", zap.Error(err))
	}

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)

	wsLogger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "bridge").Logger()
	apiHandler := handler.NewHandler(
		sessionService,
		progressService,
		rewardService,
		authService,
		narrativeService,
		telemetryPublisher,
		handler.Config{
			CookieSecure:  cfg.CookieSecure,
			AdminSecret:   cfg.AdminSecret,
			AllowedOrigin: cfg.AllowedOrigin,
			SelfBaseURL:   cfg.SelfBaseURL,
		},
		log,
		wsLogger,
	)

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.ZapLogging(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.AllowedOrigin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.AdminSecretHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	apiHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Background Workers ---
	go func() {
		if err := telemetryConsumer.Run(ctx); err != nil {
			log.Error("Telemetry consumer stopped with error", zap.Error(err))
		} else {
			log.Info("Telemetry consumer stopped")
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", srv.Addr))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancel()
	if err := telemetryConsumer.Close(); err != nil {
		log.Error("Error stopping telemetry consumer", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

// connectRabbitMQ dials the broker with retries so the server survives
// the broker starting after it in compose environments.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp.Connection, error) {
	const maxRetries = 10
	const retryDelay = 3 * time.Second

	var conn *amqp.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			log.Info("Connected to RabbitMQ")
			return conn, nil
		}
		log.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
