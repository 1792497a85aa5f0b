package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sddportal/backend/internal/application/submission"
	uploadapp "github.com/sddportal/backend/internal/application/upload"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/infrastructure/auth"
	"github.com/sddportal/backend/internal/infrastructure/cache"
	"github.com/sddportal/backend/internal/infrastructure/config"
	"github.com/sddportal/backend/internal/infrastructure/emp"
	"github.com/sddportal/backend/internal/infrastructure/fileparse"
	"github.com/sddportal/backend/internal/infrastructure/logger"
	"github.com/sddportal/backend/internal/infrastructure/mapping"
	"github.com/sddportal/backend/internal/infrastructure/persistence"
	"github.com/sddportal/backend/internal/infrastructure/storage"
	"github.com/sddportal/backend/internal/infrastructure/telemetry"
	"github.com/sddportal/backend/internal/interfaces/http/handler"
	"github.com/sddportal/backend/internal/interfaces/http/middleware"
	"github.com/sddportal/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SDD portal backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              cfg.Profiling.Enabled,
		ServerAddress:        cfg.Profiling.ServerAddress,
		ApplicationName:      cfg.Profiling.ApplicationName,
		BasicAuthUser:        cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:    cfg.Profiling.BasicAuthPassword,
		ProfileTypes:         cfg.Profiling.ProfileTypes,
		MutexProfileFraction: cfg.Profiling.MutexProfileFraction,
		BlockProfileRate:     cfg.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = profiler.Stop()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
		_ = loggerProvider.Shutdown(shutdownCtx)
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.DBName = cfg.Database.DBName

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithPlugins(telemetry.NewDBTracingPlugin(dbTracing, log)),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	uploadRepo := persistence.NewGormUploadRepository(db.DB)
	accountRepo := persistence.NewGormAccountConfigRepository(db.DB)

	// Gateway
	gateway := newGateway(cfg, tracerProvider, log)
	classifier, err := payment.NewDuplicateClassifier(cfg.Gateway.DuplicateCodes, cfg.Gateway.DuplicatePatterns)
	if err != nil {
		log.Fatal("Invalid duplicate detection patterns", zap.Error(err))
	}

	// Record mapping
	profiles := mapping.NewProfiles(nil)
	if cfg.Mapping.ProfilesPath != "" {
		profiles, err = mapping.LoadProfiles(cfg.Mapping.ProfilesPath)
		if err != nil {
			log.Fatal("Failed to load mapping profiles", zap.String("path", cfg.Mapping.ProfilesPath), zap.Error(err))
		}
		log.Info("Mapping profiles loaded", zap.Int("count", profiles.Len()))
	}
	mapper := mapping.NewMapper(mapping.Config{
		Profiles:        profiles,
		DefaultCurrency: cfg.Mapping.DefaultCurrency,
		Usage:           cfg.Gateway.Usage,
		RemoteIP:        cfg.Gateway.RemoteIP,
	})

	submissionMetrics, err := telemetry.NewSubmissionMetrics(meterProvider.Meter("sdd-portal/submission"))
	if err != nil {
		log.Fatal("Failed to create submission metrics", zap.Error(err))
	}

	// Application services
	rowService := submission.NewRowSubmissionService(submission.RowSubmissionServiceConfig{
		Uploads:             uploadRepo,
		Accounts:            accountRepo,
		Mapper:              mapper,
		Gateway:             gateway,
		Reconciler:          gateway,
		Classifier:          classifier,
		Metrics:             submissionMetrics,
		MaxDuplicateRetries: cfg.Submission.MaxDuplicateRetries,
		Logger:              log,
	})
	voidService := submission.NewVoidService(submission.VoidServiceConfig{
		Uploads:  uploadRepo,
		Gateway:  gateway,
		Metrics:  submissionMetrics,
		Pacing:   cfg.Submission.VoidPacing,
		Usage:    cfg.Gateway.VoidUsage,
		RemoteIP: cfg.Gateway.RemoteIP,
		Logger:   log,
	})
	uploadService := uploadapp.NewService(uploadapp.ServiceConfig{
		Uploads:  uploadRepo,
		Accounts: accountRepo,
		Parser:   fileparse.NewParser(cfg.Mapping.MaxUploadSize),
		Archive:  newArchive(ctx, cfg, log),
		Logger:   log,
	})

	rowLock, closeLock := cache.NewRowLock(ctx, cfg.Redis, log)
	defer func() {
		if err := closeLock(); err != nil {
			log.Warn("Error closing row lock backend", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	defer rateLimiter.Stop()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter("sdd-portal/http")))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.ReadinessCheck{
		"database": db.Ping,
	})
	submissionHandler := handler.NewSubmissionHandler(rowService, voidService, rowLock, cfg.Submission.RowLockTTL)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.Mapping.MaxUploadSize)

	engine.GET("/health", healthHandler(db.DB))
	engine.GET("/ready", systemHandler.Ready)

	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
	jwtConfig.Logger = log

	r := router.NewRouter(engine)
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	r.Use(middleware.TracingAttributeInjector())
	if cfg.HTTP.RateLimitEnabled {
		r.Use(middleware.RateLimit(rateLimiter))
	}
	r.Register(router.UploadRoutes(uploadHandler, submissionHandler))
	r.Register(router.RowRoutes(submissionHandler))
	r.Register(router.SystemRoutes(systemHandler))
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	log.Info("Server exited gracefully")
}

// newGateway builds the traced Genesis client. Without credentials outside
// production the server still starts, and every gateway call fails as a
// transport error.
func newGateway(cfg *config.Config, tp *telemetry.TracerProvider, log *zap.Logger) *telemetry.TracedGateway {
	adapter, err := emp.NewAdapter(&emp.Config{
		Endpoint:      cfg.Gateway.Endpoint,
		TerminalToken: cfg.Gateway.TerminalToken,
		Username:      cfg.Gateway.Username,
		Password:      cfg.Gateway.Password,
		Timeout:       cfg.Gateway.Timeout,
	})
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Invalid gateway configuration", zap.Error(err))
		}
		log.Warn("Gateway not configured, submissions will fail", zap.Error(err))
		return telemetry.NewTracedGateway(unconfiguredGateway{err: err}, tp.Tracer("sdd-portal/gateway"))
	}
	return telemetry.NewTracedGateway(adapter, tp.Tracer("sdd-portal/gateway"))
}

// newArchive returns the S3 archive when storage is enabled, else an in-memory one
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) uploadapp.Archive {
	if !cfg.Storage.Enabled {
		log.Info("Raw upload archive disabled, keeping files in memory")
		return storage.NewMemoryArchive()
	}
	archive, err := storage.NewS3Archive(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize upload archive", zap.Error(err))
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Warn("Upload archive bucket check failed", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
	}
	return archive
}

// healthHandler is the liveness check: it only reports whether the pool answers
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, dbStatus := http.StatusOK, "ok"
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logger.FromGin(c).Warn("Health check failed", zap.Error(err))
			status, dbStatus = http.StatusServiceUnavailable, "error"
		}
		c.JSON(status, gin.H{
			"status":   http.StatusText(status),
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
