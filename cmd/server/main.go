package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	feedbackapp "github.com/comufarm/backend/internal/application/feedback"
	"github.com/comufarm/backend/internal/application/ordering"
	"github.com/comufarm/backend/internal/infrastructure/auth"
	"github.com/comufarm/backend/internal/infrastructure/cache"
	"github.com/comufarm/backend/internal/infrastructure/config"
	"github.com/comufarm/backend/internal/infrastructure/event"
	"github.com/comufarm/backend/internal/infrastructure/logger"
	"github.com/comufarm/backend/internal/infrastructure/persistence"
	"github.com/comufarm/backend/internal/infrastructure/storage"
	"github.com/comufarm/backend/internal/infrastructure/telemetry"
	"github.com/comufarm/backend/internal/interfaces/http/handler"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/comufarm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/comufarm/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Comufarm Marketplace API
//	@version		1.0
//	@description	Farmers publish produce with a supply window and stock. Companies order it,
//	@description	and both sides talk through a per-order feedback thread.

//	@contact.name	Comufarm Backend
//	@contact.url	https://github.com/comufarm/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName

	// Logs go to the collector too once the provider is up
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.ZapCore(serviceName, logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Comufarm Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := meterProvider.Meter("github.com/comufarm/backend")
	if sqlDB, err := db.DB.DB(); err == nil {
		if reg, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		} else {
			defer func() { _ = reg.Unregister() }()
		}
	}
	placementMetrics, err := telemetry.NewPlacementMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create placement metrics", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	supplyRepo := persistence.NewGormSupplyRepository(db.DB)
	feedbackRepo := persistence.NewGormFeedbackRepository(db.DB)

	// Event bus and change feed
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	changeFeed := event.NewChangeFeed(eventBus)

	objectStorage, err := storage.NewObjectStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Application services
	catalogService := catalogapp.NewService(productRepo, orderRepo, supplyRepo, log)
	catalogService.SetEventPublisher(eventBus)
	catalogService.SetObjectStorage(objectStorage)

	feedbackService := feedbackapp.NewService(feedbackRepo, orderRepo, productRepo, log)
	feedbackService.SetEventPublisher(eventBus)

	placementOpts := []ordering.PlacementOption{
		ordering.WithEventPublisher(eventBus),
		ordering.WithRecorder(placementMetrics),
		ordering.WithLogger(log),
		ordering.WithConfig(ordering.PlacementConfig{
			AttemptTimeout: cfg.Placement.AttemptTimeout,
			RetryEnabled:   cfg.Placement.RetryEnabled,
			RetryDelay:     cfg.Placement.RetryDelay,
			ClaimTTL:       cfg.Placement.ClaimTTL,
		}),
	}
	checks := map[string]handler.Pinger{"database": db}
	if cfg.Idempotency.Enabled {
		claims, err := cache.NewIdempotencyStore(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := claims.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		if pinger, ok := claims.(handler.Pinger); ok {
			checks["idempotency_store"] = pinger
		}
		placementOpts = append(placementOpts, ordering.WithClaimStore(claims))
	}
	placementService := ordering.NewPlacementService(
		persistence.NewGormTransactionScope(db.DB), orderRepo, placementOpts...,
	)

	// Party identification
	partyAuth := middleware.PartyAuthConfig{
		Development:  cfg.App.IsDevelopment(),
		DevCompanyID: cfg.Auth.DevCompanyID,
		DevFarmerID:  cfg.Auth.DevFarmerID,
	}
	var authHandler *handler.AuthHandler
	if cfg.Auth.Enabled {
		jwtService := auth.NewJWTService(cfg.Auth)
		partyAuth.JWT = jwtService
		if cfg.App.IsDevelopment() {
			authHandler = handler.NewAuthHandler(jwtService)
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// RequestID, Recovery, access log, tracing (span annotation runs inside
	// the span), security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(serviceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.SpanAnnotator())
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var writeLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		writeLimit = middleware.RateLimit(limiter)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine)
	router.RegisterMarketplace(r, router.Handlers{
		Products: handler.NewProductHandler(catalogService),
		Orders:   handler.NewOrderHandler(placementService, catalogService),
		Feedback: handler.NewFeedbackHandler(feedbackService),
		Supplies: handler.NewSupplyHandler(catalogService),
		Changes: handler.NewChangeFeedHandler(changeFeed, feedbackService,
			handler.WithStreamLogger(log),
			handler.WithAllowedOrigins(cfg.HTTP.CORSAllowOrigins),
		),
		System:     handler.NewSystemHandler(cfg.App.Name, version, checks),
		Auth:       authHandler,
		PartyAuth:  middleware.PartyAuth(partyAuth),
		WriteLimit: writeLimit,
	})
	r.Setup()

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
