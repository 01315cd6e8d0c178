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
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	invoicingapp "github.com/invoiceme/backend/internal/application/invoicing"
	outboxapp "github.com/invoiceme/backend/internal/application/outbox"
	partnerapp "github.com/invoiceme/backend/internal/application/partner"
	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/cache"
	"github.com/invoiceme/backend/internal/infrastructure/config"
	"github.com/invoiceme/backend/internal/infrastructure/event"
	"github.com/invoiceme/backend/internal/infrastructure/logger"
	"github.com/invoiceme/backend/internal/infrastructure/persistence"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
	"github.com/invoiceme/backend/internal/interfaces/http/handler"
	"github.com/invoiceme/backend/internal/interfaces/http/middleware"
	"github.com/invoiceme/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no config means no log settings yet
		bootLog, logErr := logger.NewForEnvironment(os.Getenv("INVOICE_APP_ENV"))
		if logErr != nil {
			panic("Failed to load configuration: " + err.Error())
		}
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting invoice service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	otelProviders, err := telemetry.Start(ctx, telemetry.Settings{
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		TracesEnabled:     cfg.Telemetry.Enabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = telemetry.TeeLogger(log, otelProviders.Logs, level)
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterGormTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:             cfg.Database.DBName,
		WithQueryVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	var poolMetrics *telemetry.DBPoolMetrics
	if otelProviders.Metrics.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to access connection pool", zap.Error(err))
		}
		if poolMetrics, err = telemetry.RegisterDBPoolMetrics(otelProviders.Metrics.Meter("invoice-service/db"), sqlDB); err != nil {
			log.Fatal("Failed to register pool metrics", zap.Error(err))
		}
	}

	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	sequence, closeSequence, err := newInvoiceNumberSequence(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice number sequence", zap.Error(err))
	}

	// Event delivery: handlers subscribe to the in-process bus. In outbox
	// mode commands append to the outbox and the processor feeds the bus.
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	eventLogger := event.NewIdempotentHandler(
		invoicingapp.NewInvoiceEventLogger(log),
		idempotencyStore,
		log,
		event.WithIdempotencyTTL(cfg.Event.IdempotencyTTL),
		event.WithIdempotencyKeyPrefix("invoice_audit"),
	)
	eventBus.Subscribe(eventLogger, eventLogger.EventTypes()...)
	if otelProviders.Metrics.IsEnabled() {
		invoiceMetrics, err := telemetry.NewInvoiceMetrics(otelProviders.Metrics.Meter("invoice-service/invoicing"))
		if err != nil {
			log.Fatal("Failed to create invoice metrics", zap.Error(err))
		}
		metricsHandler := event.NewIdempotentHandler(invoiceMetrics, idempotencyStore, log,
			event.WithIdempotencyTTL(cfg.Event.IdempotencyTTL),
			event.WithIdempotencyKeyPrefix("invoice_metrics"),
		)
		eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var (
		publisher       shared.EventPublisher = eventBus
		outboxProcessor *event.OutboxProcessor
		outboxHandler   *handler.OutboxHandler
	)
	if cfg.Event.PublishMode == config.PublishModeOutbox {
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		for _, eventType := range eventLogger.EventTypes() {
			if !serializer.IsRegistered(eventType) {
				log.Warn("Subscribed event type has no outbox decoder", zap.String("event_type", eventType))
			}
		}
		outboxRepo := event.NewGormOutboxRepository(db.DB)
		outboxPublisher := event.NewOutboxPublisher(serializer).WithMaxRetries(cfg.Event.MaxRetries)
		invoiceRepo.SetOutboxEventSaver(outboxPublisher)
		customerRepo.SetOutboxEventSaver(outboxPublisher)
		// events are written with their aggregate inside the repository transaction
		publisher = nil
		outboxHandler = handler.NewOutboxHandler(outboxapp.NewDeadLetterService(outboxRepo, log))

		if cfg.Event.ProcessorEnabled {
			processorCfg := event.DefaultOutboxProcessorConfig()
			processorCfg.BatchSize = cfg.Event.BatchSize
			processorCfg.PollInterval = cfg.Event.PollInterval
			processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
			processorCfg.CleanupRetention = cfg.Event.CleanupRetention
			outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorCfg, log)
			if err := outboxProcessor.Start(ctx); err != nil {
				log.Fatal("Failed to start outbox processor", zap.Error(err))
			}
		}
	}
	log.Info("Event delivery configured",
		zap.String("publish_mode", cfg.Event.PublishMode),
		zap.Bool("outbox_processor", outboxProcessor != nil),
	)

	// Application layer
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, publisher, log)
	createInvoice := invoicingapp.NewCreateInvoiceHandler(
		invoiceRepo,
		partnerapp.NewCustomerChecker(customerRepo),
		sequence,
		publisher,
		log,
	)

	retryPolicy := handler.DefaultConflictRetryPolicy()
	retryPolicy.MaxRetries = cfg.HTTP.ConflictRetries

	invoiceHandler := handler.NewInvoiceHandler(handler.InvoiceHandlerDeps{
		Create:          createInvoice,
		Update:          invoicingapp.NewUpdateInvoiceHandler(invoiceRepo, publisher, log),
		Send:            invoicingapp.NewSendInvoiceHandler(invoiceRepo, publisher, log),
		RecordPayment:   invoicingapp.NewRecordPaymentHandler(invoiceRepo, publisher, log),
		Delete:          invoicingapp.NewDeleteInvoiceHandler(invoiceRepo, log),
		Queries:         invoicingapp.NewInvoiceQueryService(invoiceRepo),
		DefaultCurrency: cfg.Invoice.DefaultCurrency,
		ConflictRetry:   retryPolicy,
	})
	customerHandler := handler.NewCustomerHandler(customerService, retryPolicy)
	healthHandler := handler.NewHealthHandler(db, version)

	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	var httpMeter metric.Meter
	if otelProviders.Metrics.IsEnabled() {
		httpMeter = otelProviders.Metrics.Meter("invoice-service/http")
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           mode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          httpMeter,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	engine.GET("/health", healthHandler.Health)
	r := router.NewRouter(engine).
		Register(invoiceHandler).
		Register(customerHandler)
	if outboxHandler != nil {
		r.Register(outboxHandler)
	}
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Stop the producer of bus events before the bus itself
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := closeSequence(); err != nil {
		log.Error("Error closing invoice sequence client", zap.Error(err))
	}
	if poolMetrics != nil {
		_ = poolMetrics.Unregister()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	log.Info("Server exited gracefully")

	// after the exit line, so it is exported too
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
}

// newInvoiceNumberSequence picks the sequence backend named by invoice.sequence_backend.
// The returned func releases the backend's own connection, if it has one.
func newInvoiceNumberSequence(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) (invoicing.InvoiceNumberSequence, func() error, error) {
	if cfg.Invoice.SequenceBackend != config.BackendRedis {
		return persistence.NewGormInvoiceNumberSequence(db.DB, cfg.Invoice.NumberPrefix), func() error { return nil }, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Using Redis invoice number sequence", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisInvoiceNumberSequence(client, cfg.Invoice.NumberPrefix), client.Close, nil
}
