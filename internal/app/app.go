package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"institute-service/common/logger"
	commonmetrics "institute-service/common/metrics"
	"institute-service/common/telemetry"
	"institute-service/internal/announcement"
	"institute-service/internal/auth"
	"institute-service/internal/blog"
	"institute-service/internal/changefeed"
	"institute-service/internal/config"
	"institute-service/internal/db"
	"institute-service/internal/fee"
	"institute-service/internal/health"
	"institute-service/internal/janitor"
	"institute-service/internal/mailer"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/middleware"
	"institute-service/internal/profile"
	"institute-service/internal/recovery"
	"institute-service/internal/schema"
	"institute-service/internal/session"
	"institute-service/internal/student"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const healthCheckInterval = 30 * time.Second

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpc.Server
	logger     *slog.Logger

	telemetry *telemetry.Telemetry
	db        *bun.DB
	nats      *nats.Conn
	consumer  *session.Consumer
	feed      changefeed.Publisher
	janitor   *janitor.Janitor
	health    *health.Handler

	cancelBackground context.CancelFunc
}

// New wires every component. Failures of required dependencies are returned, optional ones are logged.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "built", BuildTime)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	app.telemetry, err = telemetry.Init(ctx, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Interval:       cfg.Telemetry.Interval,
	}, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	infra := app.telemetry.Metrics
	domain, err := newDomainMetrics(infra)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize domain metrics: %w", err)
	}

	app.db, err = db.New(cfg.Database, slogLogger)
	if err != nil {
		return nil, err
	}
	if err := infra.Database.RegisterDB(app.db.DB, infra.Meter()); err != nil {
		slogLogger.Warn("failed to register pool metrics", "error", err)
	}
	if err := db.RunMigrations(ctx, app.db, schema.Models(), schema.Statements()...); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.health = health.NewHandler(infra, slogLogger)
	app.health.Add("postgres", true, app.db.PingContext)

	// Session fan-out is optional; without NATS revocations stay local to this instance.
	revocations := session.NewRevocations()
	var notifier session.Notifier
	if cfg.NATS.URL != "" {
		app.nats, err = nats.Connect(cfg.NATS.URL, nats.Name(ServiceName), nats.MaxReconnects(-1))
		if err != nil {
			slogLogger.Warn("failed to connect to NATS, session fan-out disabled", "error", err)
		} else {
			notifier = session.NewPublisher(app.nats, cfg.NATS.Subject, slogLogger, infra)
			app.consumer = session.NewConsumer(app.nats, cfg.NATS.Subject, revocations, slogLogger, infra)
			app.health.Add("nats", false, func(context.Context) error { return app.consumer.HealthCheck() })
		}
	}
	terminator := session.NewTerminator(revocations, notifier, slogLogger)

	app.feed = changefeed.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := changefeed.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger, infra)
		if err != nil {
			slogLogger.Warn("failed to create Kafka producer, change feed disabled", "error", err)
		} else {
			app.feed = producer
		}
	}
	recorder := changefeed.NewRecorder(app.feed, domain)

	sender, err := mailer.New(cfg.Mail, slogLogger)
	if err != nil {
		return nil, err
	}

	// Domain services
	profileService := profile.NewService(profile.NewRepository(app.db, infra), recorder, slogLogger)
	tokens := auth.NewTokens(cfg.JWT)
	authService := auth.NewService(auth.NewRepository(app.db, infra), tokens, terminator, profileService, slogLogger, domain)
	recoveryService := recovery.NewService(recovery.NewRepository(app.db, infra), authService, sender, cfg.Recovery, domain, slogLogger)
	studentService := student.NewService(student.NewRepository(app.db, infra), student.NewCodeGenerator(app.db, infra), profileService, recorder, domain, slogLogger)
	feeService := fee.NewService(fee.NewRepository(app.db, infra), studentService, recorder, domain, slogLogger)
	announcementService := announcement.NewService(announcement.NewRepository(app.db, infra), cfg.Announcements.FeedScope, recorder, slogLogger)
	blogService := blog.NewService(app.db, infra, recorder, domain, slogLogger)

	if cfg.Janitor.Enabled {
		app.janitor, err = janitor.New(cfg.Janitor.Schedule, slogLogger,
			janitor.Task{Name: "refresh_tokens", Run: authService.PurgeExpired},
			janitor.Task{Name: "recovery_codes", Run: recoveryService.PurgeExpired},
			janitor.Task{Name: "revocations", Run: func(context.Context) (int64, error) {
				return int64(revocations.Prune()), nil
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("invalid janitor schedule: %w", err)
		}
	}

	// HTTP routes
	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	app.health.RegisterRoutes(app.router)

	authHandler := auth.NewHandler(authService, slogLogger)
	recoveryHandler := recovery.NewHandler(recoveryService, slogLogger)
	studentHandler := student.NewHandler(studentService, slogLogger)

	app.router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		recoveryHandler.RegisterRoutes(r)
		studentHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens, revocations, slogLogger))
			authHandler.RegisterSessionRoutes(r)
			profile.NewHandler(profileService, slogLogger).RegisterRoutes(r)
			studentHandler.RegisterRoutes(r)
			fee.NewHandler(feeService, slogLogger).RegisterRoutes(r)
			announcement.NewHandler(announcementService, slogLogger).RegisterRoutes(r)
			blog.NewHandler(blogService, slogLogger).RegisterRoutes(r)
		})
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// gRPC carries only the health service for orchestrator probes
	app.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(infra.Grpc.UnaryServerInterceptor()),
	)
	grpc_health_v1.RegisterHealthServer(app.grpcServer, app.health.GRPC())

	if err := infra.Health.RegisterDependencies(ctx, infra.Meter(), app.health.Names()); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	slogLogger.Info("application initialized successfully")
	return app, nil
}

func newDomainMetrics(infra *commonmetrics.Metrics) (*appmetrics.Metrics, error) {
	meter := infra.Meter()
	if meter == nil {
		return appmetrics.NewMock(), nil
	}
	return appmetrics.New(meter)
}

// Run starts background workers and serves HTTP and gRPC until one of them fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel

	if a.consumer != nil {
		go func() {
			a.logger.Info("session consumer starting", "subject", a.config.NATS.Subject)
			if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("session consumer error", "error", err)
			}
		}()
	}
	if a.janitor != nil {
		a.janitor.Start()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errs := make(chan error, 2)
	go func() {
		a.logger.Info("gRPC server starting", "port", a.config.Grpc.Port)
		errs <- a.grpcServer.Serve(lis)
	}()
	go func() {
		a.logger.Info("server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
			return
		}
		errs <- nil
	}()
	return <-errs
}

// StartHealthChecks refreshes dependency status until ctx is cancelled.
func (a *App) StartHealthChecks(ctx context.Context) {
	a.health.Run(ctx, healthCheckInterval)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.health.Shutdown()
	err := a.server.Shutdown(ctx)
	a.grpcServer.GracefulStop()

	if a.janitor != nil {
		a.janitor.Stop(ctx)
	}
	if a.cancelBackground != nil {
		a.cancelBackground()
	}
	if a.consumer != nil {
		if cerr := a.consumer.Close(); cerr != nil {
			a.logger.Error("session consumer close error", "error", cerr)
		}
	}
	if a.nats != nil {
		a.nats.Close()
	}
	if cerr := a.feed.Close(); cerr != nil {
		a.logger.Error("change feed close error", "error", cerr)
	}
	db.Close(a.db)
	if terr := a.telemetry.Shutdown(ctx, a.logger); terr != nil {
		a.logger.Error("telemetry shutdown error", "error", terr)
	}
	return err
}
