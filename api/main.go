package api

import (
	"context"
	errs "errors"
	"net/http"

	"github.com/brpaz/echozap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	attentionRepository "github.com/dengueguard/monitor/attention/repository"
	"github.com/dengueguard/monitor/config"
	"github.com/dengueguard/monitor/errors"
	"github.com/dengueguard/monitor/events"
	"github.com/dengueguard/monitor/logger"
	"github.com/dengueguard/monitor/metrics"
	notificationsRepository "github.com/dengueguard/monitor/notifications/repository"
	"github.com/dengueguard/monitor/patients"
	patientsRepository "github.com/dengueguard/monitor/patients/repository"
	"github.com/dengueguard/monitor/reminders"
	"github.com/dengueguard/monitor/retention"
	"github.com/dengueguard/monitor/scheduler"
	"github.com/dengueguard/monitor/store"
	vitalsRepository "github.com/dengueguard/monitor/vitals/repository"
	vitalsService "github.com/dengueguard/monitor/vitals/service"
)

func Start(e *echo.Echo, cfg *config.Config, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.ServerAddress()); err != nil && !errs.Is(err, http.ErrServerClosed) {
					logger.Errorw("http server stopped unexpectedly", "error", err)
				}
			}()
			logger.Infow("http server started", "address", cfg.ServerAddress())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func SetReady(healthCheck *HealthCheck, db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Client().Ping(ctx, nil); err != nil {
				return err
			}

			// Must be invoked after the repositories are constructed so their index hooks have already run
			healthCheck.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			healthCheck.SetReady(false)
			return nil
		},
	})
}

// Disconnect closes the mongo client once every other component has stopped
func Disconnect(db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	})
}

// StartTasks runs the reminder sweep and the retention cleanup in the background
func StartTasks(cfg *config.Config, poller *reminders.Poller, cleaner *retention.Cleaner, logger *zap.SugaredLogger, m *metrics.Metrics, lifecycle fx.Lifecycle) {
	sweep := scheduler.NewRunner(reminders.TaskName, cfg.ReminderInterval, poller.Sweep, logger, m)
	cleanup := scheduler.NewRunner(retention.TaskName, cfg.CleanupInterval, func(ctx context.Context) error {
		_, err := cleaner.Run(ctx)
		return err
	}, logger, m)

	lifecycle.Append(sweep.Hook())
	lifecycle.Append(cleanup.Hook())
}

func DisconnectDashboards(hub *events.Hub, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
}

func NewServer(handler *Handler, healthCheck *HealthCheck, registry *prometheus.Registry, zapLogger *zap.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	// Skip request logging for readiness probe and metrics routes
	skipper := RouteSkipper([]string{"/ready", "/metrics"})

	e.Use(middleware.Recover())
	e.Use(SkipRoutes(skipper, echozap.ZapLogger(zapLogger)))

	validator, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}
	e.Validator = validator
	e.HTTPErrorHandler = errors.CustomHTTPErrorHandler

	e.GET("/ready", healthCheck.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	RegisterHandlers(e, handler)

	return e, nil
}

// Dependencies returns the providers of the service graph, shared by the server and the cli
func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			logger.NewProductionLogger,
			logger.Sugar,
			config.NewConfig,
			store.NewConfig,
			store.GetConnectionString,
			store.NewClient,
			store.NewDatabase,
			metrics.NewRegistry,
			metrics.NewMetrics,
			patientsRepository.NewRepository,
			patients.NewDirectory,
			vitalsRepository.NewRepository,
			vitalsService.NewService,
			notificationsRepository.NewRepository,
			attentionRepository.NewRepository,
			events.NewHub,
			events.NewPublisher,
			events.NewWebsocketHandler,
			reminders.NewPoller,
			retention.NewCleaner,
			NewHealthCheck,
			NewHandler,
			NewServer,
		),
	}
}

func MainLoop() {
	fx.New(
		append(Dependencies(),
			fx.Invoke(Disconnect),
			fx.Invoke(StartTasks),
			fx.Invoke(DisconnectDashboards),
			fx.Invoke(SetReady),
			fx.Invoke(Start),
		)...,
	).Run()
}
