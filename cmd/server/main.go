package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	marketplaceapp "github.com/shipdesk/backend/internal/application/marketplace"
	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/cache"
	"github.com/shipdesk/backend/internal/infrastructure/config"
	"github.com/shipdesk/backend/internal/infrastructure/ecommerce"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
	"github.com/shipdesk/backend/internal/infrastructure/migration"
	"github.com/shipdesk/backend/internal/infrastructure/persistence"
	"github.com/shipdesk/backend/internal/infrastructure/queue"
	"github.com/shipdesk/backend/internal/infrastructure/scheduler"
	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
	"github.com/shipdesk/backend/internal/interfaces/http/handler"
	"github.com/shipdesk/backend/internal/interfaces/http/middleware"
	"github.com/shipdesk/backend/internal/interfaces/http/router"
	"github.com/shipdesk/backend/migrations"
)

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http,../../internal/domain -o ../../docs

//	@title			Shipdesk Backend API
//	@version		1.0
//	@description	Marketplace order sync, shipment reconciliation and packing-station scans
//	@host			localhost:8080
//	@BasePath		/api/v1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting marketplace sync engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Strings("accounts", cfg.Marketplace.AccountNames()),
	)

	rootCtx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = meterProvider.Shutdown(ctx)
		_ = tracerProvider.Shutdown(ctx)
		_ = logsProvider.Shutdown(ctx)
	}()

	var metrics marketplaceapp.Metrics = marketplaceapp.NopMetrics{}
	if syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter(telemetry.MeterName)); err != nil {
		log.Warn("Sync metrics unavailable", zap.Error(err))
	} else {
		metrics = syncMetrics
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
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
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	if err := migrateUp(db, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	itemRepo := persistence.NewGormOrderItemRepository(db.DB)
	labelRepo := persistence.NewGormLabelRepository(db.DB)
	imageRepo := persistence.NewGormProductImageRepository(db.DB)
	scanRepo := persistence.NewGormScanEventRepository(db.DB)

	// Caches
	cacheFactory := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithRedis(cfg.Cache.RedisEnabled),
	)
	defer func() {
		_ = cacheFactory.Close()
	}()
	tokenCache := cacheFactory.Create("token", cfg.Cache.TokenTTL)
	imageCache := cacheFactory.Create("image", cfg.Cache.ImageTTL)

	// Marketplace API client
	accounts := make([]marketplace.Account, 0, len(cfg.Marketplace.Accounts))
	clientCfg := ecommerce.NewMarketplaceConfig(cfg.Marketplace.AuthURL, cfg.Marketplace.APIBaseURL)
	clientCfg.Timeout = cfg.Marketplace.Timeout
	clientCfg.RateLimitRPS = cfg.Marketplace.RateLimitRPS
	clientCfg.RateLimitBurst = cfg.Marketplace.RateLimitBurst
	for _, a := range cfg.Marketplace.Accounts {
		account := marketplace.Account(a.Name)
		accounts = append(accounts, account)
		if a.ClientID != "" {
			clientCfg.Credentials[account] = ecommerce.Credentials{ClientID: a.ClientID, ClientSecret: a.ClientSecret}
		}
	}
	client, err := ecommerce.NewMarketplaceClient(clientCfg,
		ecommerce.WithClientLogger(log),
		ecommerce.WithHTTPClient(&http.Client{
			Timeout:   clientCfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	)
	if err != nil {
		log.Fatal("Failed to create marketplace client", zap.Error(err))
	}

	// Application services
	tokens := marketplaceapp.NewTokenProvider(client, tokenCache, metrics, log)
	images := marketplaceapp.NewImageResolver(tokens, client, imageRepo, imageCache,
		marketplaceapp.WithPlaceholder(cfg.Marketplace.PlaceholderImage),
		marketplaceapp.WithImageMetrics(metrics),
		marketplaceapp.WithImageLogger(log),
	)
	fetcher := marketplaceapp.NewOrderFetcher(tokens, client, images, itemRepo,
		marketplaceapp.WithItemConcurrency(cfg.Marketplace.ItemConcurrency),
		marketplaceapp.WithFetcherMetrics(metrics),
		marketplaceapp.WithFetcherLogger(log),
	)
	lister := marketplaceapp.NewOrderLister(tokens, client, fetcher, cfg.Marketplace.OrderConcurrency, metrics, log)
	resyncer := marketplaceapp.NewOrderResyncer(tokens, client, fetcher, itemRepo, marketplaceapp.ResyncConfig{
		Accounts:    accounts,
		MaxPages:    cfg.Sync.MaxPages,
		Concurrency: cfg.Marketplace.OrderConcurrency,
	}, metrics, log)
	reconciler := marketplaceapp.NewShipmentReconciler(tokens, client, itemRepo, labelRepo, marketplaceapp.ReconcilerConfig{
		Accounts:         accounts,
		MaxShipmentPages: cfg.Reconcile.MaxShipmentPages,
		MaxOrders:        cfg.Reconcile.MaxOrders,
	}, metrics, log)
	scans := marketplaceapp.NewScanRegistrar(labelRepo, itemRepo, scanRepo, images, metrics, log)

	// Background jobs
	jobScheduler, err := startScheduler(rootCtx, cfg, reconciler, resyncer, log)
	if err != nil {
		log.Fatal("Failed to start job scheduler", zap.Error(err))
	}
	defer jobScheduler.stop()

	queueCfg := queue.Config{
		Enabled:       cfg.Queue.Enabled,
		RedisAddr:     cfg.Redis.Addr(),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		Concurrency:   cfg.Queue.Concurrency,
		QueueName:     cfg.Queue.QueueName,
		TaskTimeout:   cfg.Scheduler.JobTimeout,
	}
	queueClient := queue.NewClient(queueCfg, log)
	defer func() {
		_ = queueClient.Close()
	}()
	if cfg.Queue.Enabled {
		worker, err := queue.NewWorker(queueCfg, reconciler, log)
		if err != nil {
			log.Fatal("Failed to create task worker", zap.Error(err))
		}
		if err := worker.Start(); err != nil {
			log.Fatal("Failed to start task worker", zap.Error(err))
		}
		defer worker.Stop()
	}

	// HTTP
	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if redisClient := cacheFactory.Client(); redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	systemOpts := []handler.SystemHandlerOption{handler.WithHealthChecks(checks...)}
	if jobScheduler.scheduler != nil {
		systemOpts = append(systemOpts, handler.WithJobStatus(jobScheduler.scheduler))
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, systemOpts...)

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Release:          cfg.App.Env == "production",
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		MeterProvider:    meterProvider,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		RateLimiter:      rateLimiter,
		RequestTimeout:   cfg.HTTP.RequestTimeout,
		Health:           systemHandler.Health,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine).
		Register(systemHandler).
		Register(handler.NewMarketplaceHandler(lister, fetcher, resyncer, reconciler, queueClient, accounts)).
		Register(handler.NewScanHandler(scans)).
		Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	migrator, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close sqlDB, which the repositories share
	return migrator.Up()
}

// backgroundJobs owns the scheduler and its interval trigger
type backgroundJobs struct {
	scheduler *scheduler.Scheduler
	trigger   *scheduler.IntervalTrigger
	log       *zap.Logger
}

func startScheduler(
	ctx context.Context,
	cfg *config.Config,
	reconciler scheduler.ShipmentReconciler,
	resyncer scheduler.OrderResyncer,
	log *zap.Logger,
) (*backgroundJobs, error) {
	jobs := &backgroundJobs{log: log}
	if !cfg.Scheduler.Enabled {
		log.Info("Job scheduler disabled")
		return jobs, nil
	}

	schedulerCfg := scheduler.DefaultSchedulerConfig()
	schedulerCfg.JobTimeout = cfg.Scheduler.JobTimeout
	schedulerCfg.RetryAttempts = cfg.Scheduler.RetryAttempts
	schedulerCfg.RetryDelay = cfg.Scheduler.RetryDelay

	s, err := scheduler.NewScheduler(schedulerCfg, log)
	if err != nil {
		return nil, err
	}
	s.Register(scheduler.NewReconcileJob(reconciler, log))
	s.Register(scheduler.NewResyncJob(resyncer, log))
	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	trigger := scheduler.NewIntervalTrigger(s, log,
		scheduler.IntervalSchedule{JobName: scheduler.JobReconcileShipments, Interval: cfg.Reconcile.Interval},
		scheduler.IntervalSchedule{JobName: scheduler.JobResyncOrders, Interval: cfg.Sync.Interval},
	)
	if err := trigger.Start(ctx); err != nil {
		_ = s.Stop(ctx)
		return nil, err
	}

	jobs.scheduler = s
	jobs.trigger = trigger
	return jobs, nil
}

func (j *backgroundJobs) stop() {
	if j.scheduler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := j.trigger.Stop(ctx); err != nil {
		j.log.Error("Error stopping interval trigger", zap.Error(err))
	}
	if err := j.scheduler.Stop(ctx); err != nil {
		j.log.Error("Error stopping job scheduler", zap.Error(err))
	}
}
