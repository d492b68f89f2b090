package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/treeofhope/backend/internal/application/analytics"
	billingapp "github.com/treeofhope/backend/internal/application/billing"
	bridgeapp "github.com/treeofhope/backend/internal/application/bridge"
	campaignapp "github.com/treeofhope/backend/internal/application/campaign"
	"github.com/treeofhope/backend/internal/infrastructure/auth"
	payments "github.com/treeofhope/backend/internal/infrastructure/billing"
	"github.com/treeofhope/backend/internal/infrastructure/cache"
	"github.com/treeofhope/backend/internal/infrastructure/config"
	"github.com/treeofhope/backend/internal/infrastructure/event"
	"github.com/treeofhope/backend/internal/infrastructure/logger"
	"github.com/treeofhope/backend/internal/infrastructure/persistence"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"github.com/treeofhope/backend/internal/interfaces/http/handler"
	"github.com/treeofhope/backend/internal/interfaces/http/middleware"
	"github.com/treeofhope/backend/internal/interfaces/http/router"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const instrumentationName = "github.com/treeofhope/backend"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Tree of Hope backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("stripe_test_mode", cfg.Stripe.IsTestMode()),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Config:         withEnabled(telemetryCfg, cfg.Telemetry.MetricsEnabled),
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(instrumentationName)
	donationMetrics, err := telemetry.NewDonationMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create donation metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewHTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:     cfg.Database.DBName,
		LogFullSQL: !cfg.App.IsProduction(),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Webhook idempotency
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithKeyPrefix("toh:stripe:event:"),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Payment provider
	stripeAdapter, err := payments.NewStripeAdapter(cfg.Stripe, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
	}

	// Repositories
	bridgeRepo := persistence.NewGormBridgeRepository(db.DB)
	outreachRepo := persistence.NewGormOutreachRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	leafRepo := persistence.NewGormLeafRepository(db.DB)
	commitmentRepo := persistence.NewGormCommitmentRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Analytics sink and event bus
	tracker := analyticsapp.NewTracker(analyticsRepo, log)
	eventBus := event.NewInMemoryEventBus(log, event.WithAsync(4, 1024))
	eventBus.Subscribe(analyticsapp.NewDomainEventRecorder(tracker))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	campaignService := campaignapp.NewService(campaignapp.ServiceConfig{
		Campaigns: campaignRepo,
		Leaves:    leafRepo,
		TxScope:   txScope,
		Publisher: eventBus,
		Metrics:   donationMetrics,
		Logger:    log,
	})
	bridgeService := bridgeapp.NewService(bridgeRepo, outreachRepo, txScope, eventBus, log)
	checkoutService := billingapp.NewCheckoutService(billingapp.CheckoutServiceConfig{
		Planter: campaignService,
		Gateway: stripeAdapter,
		Tracker: tracker,
		Metrics: donationMetrics,
		Logger:  log,
	})
	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Gateway:     stripeAdapter,
		Commitments: commitmentRepo,
		TxScope:     txScope,
		Idempotency: idempotencyStore,
		Publisher:   eventBus,
		Metrics:     donationMetrics,
		Logger:      log,
	})
	commitmentService := billingapp.NewCommitmentService(commitmentRepo, stripeAdapter, eventBus, log)

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		httpMetrics.Middleware(),
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}

	verifier := auth.NewJWTVerifier(cfg.Auth)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Handlers{
		System:     handler.NewSystemHandler(db, cfg.App.Name, version),
		Bridges:    handler.NewBridgeHandler(bridgeService),
		Campaigns:  handler.NewCampaignHandler(campaignService),
		Checkout:   handler.NewCheckoutHandler(checkoutService),
		Commitment: handler.NewCommitmentHandler(commitmentService),
		Analytics:  handler.NewAnalyticsHandler(tracker),
		Webhooks:   handler.NewStripeWebhookHandler(webhookService),
	}.Register(r, middleware.AuthConfig{Verifier: verifier, Logger: log})
	r.Setup()

	// Create HTTP server with config
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not drain", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func withEnabled(cfg telemetry.Config, enabled bool) telemetry.Config {
	cfg.Enabled = cfg.Enabled && enabled
	return cfg
}
