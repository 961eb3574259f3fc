package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/piresc/tallytrack/internal/pkg/config"
	"github.com/piresc/tallytrack/internal/pkg/database"
	"github.com/piresc/tallytrack/internal/pkg/health"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/middleware"
	"github.com/piresc/tallytrack/internal/pkg/nats"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	"github.com/piresc/tallytrack/internal/pkg/websocket"
	"github.com/piresc/tallytrack/services/votes/gateway"
	"github.com/piresc/tallytrack/services/votes/handler"
	"github.com/piresc/tallytrack/services/votes/repository"
	"github.com/piresc/tallytrack/services/votes/usecase"
)

func main() {
	appName := "votes-service"
	configPath := "config/votes.env"
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
	)

	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresClient.Close()

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer redisClient.Close()

	natsClient, err := nats.NewClient(configs.NATS.URL, appName)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	defer natsClient.Close()

	logger.Info("NATS client initialized",
		logger.String("url", configs.NATS.URL),
		logger.Bool("connected", natsClient.IsConnected()))

	// Repository and caches
	voteRepo := repository.NewVoteRepository(configs, postgresClient.GetDB(), zapLogger)
	statusCache := repository.NewStatusCache(redisClient, 0)

	// Gateways
	darajaClient := gateway.NewDarajaClient(
		configs.Daraja,
		gateway.NewRedisTokenCache(redisClient, configs.Daraja.ShortCode),
		zapLogger,
	)
	voteGW := gateway.NewVoteGW(
		darajaClient,
		gateway.NewTurnstileClient(configs.Turnstile, zapLogger),
		gateway.NewEventPublisher(natsClient),
	)

	voteUC, err := usecase.NewVoteUC(configs, voteRepo, statusCache, voteGW, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize vote use case", logger.Err(err))
	}

	wsManager := websocket.NewManager(configs.JWT, configs.Server.AllowedOrigins, zapLogger)
	voteHandler := handler.NewHandler(voteUC, natsClient, wsManager, configs, nrApp, zapLogger)

	if err := voteHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(configs.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(configs.Server.WriteTimeout) * time.Second

	// Panic recovery must be first
	e.Use(middleware.PanicRecovery(zapLogger))
	e.Use(middleware.RequestID())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: configs.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.APIKeyHeader},
	}))
	e.Use(metrics.EchoMiddleware())

	healthService := health.NewService(zapLogger)
	healthService.AddChecker("postgres", health.PingChecker(postgresClient))
	healthService.AddChecker("redis", health.PingChecker(redisClient))
	healthService.AddChecker("nats", health.ConnChecker(natsClient.IsConnected))
	healthService.AddChecker("daraja", health.BreakerChecker(darajaClient.Breaker()))
	health.RegisterEndpoints(e, appName, configs.App.Version, healthService)
	e.GET("/metrics", metrics.Handler())

	submitLimiter := middleware.RateLimiter(middleware.RateLimiterConfig{
		Redis:  redisClient,
		Prefix: "submit",
		Limit:  configs.Vote.SubmitRateLimit,
		Period: time.Duration(configs.Vote.SubmitRatePer) * time.Second,
		Logger: zapLogger,
	})
	voteHandler.RegisterRoutes(e, submitLimiter)

	go func() {
		addr := fmt.Sprintf("%s:%d", configs.Server.Host, configs.Server.Port)
		zapLogger.Info("Starting HTTP server",
			logger.String("address", addr),
			logger.String("app", appName))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	zapLogger.Info("Received shutdown signal", logger.String("signal", sig.String()))

	shutdownTimeout := time.Duration(configs.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	zapLogger.Info("Shutting down HTTP server...")
	if err := e.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	// Callbacks were acknowledged already; let their reconciliation finish
	zapLogger.Info("Draining callback workers...")
	if err := voteHandler.Shutdown(ctx); err != nil {
		zapLogger.Error("Callback workers did not finish in time", logger.Err(err))
	}

	zapLogger.Info("Closing NATS connection...")
	natsClient.Close()

	zapLogger.Info("Closing Redis connection...")
	if err := redisClient.Close(); err != nil {
		zapLogger.Error("Error closing Redis connection", logger.Err(err))
	}

	zapLogger.Info("Closing PostgreSQL connection...")
	if err := postgresClient.Close(); err != nil {
		zapLogger.Error("Error closing PostgreSQL connection", logger.Err(err))
	}

	if nrApp != nil {
		zapLogger.Info("Shutting down New Relic...")
		nrApp.Shutdown(10 * time.Second)
	}

	zapLogger.Info("Server exiting gracefully")
}
