package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/voltai/billing-service/internal/api/http"
	"github.com/voltai/billing-service/internal/api/http/handlers"
	"github.com/voltai/billing-service/internal/auth"
	"github.com/voltai/billing-service/internal/billing"
	"github.com/voltai/billing-service/internal/config"
	"github.com/voltai/billing-service/internal/events"
	"github.com/voltai/billing-service/internal/notify"
	"github.com/voltai/billing-service/internal/observability"
	"github.com/voltai/billing-service/internal/persistence"
	"github.com/voltai/billing-service/internal/service"
	"github.com/voltai/billing-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var seedDemo bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), seedDemo)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "insert demo customers when the registry is empty")
}

func runServe(parent context.Context, seed bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := newBootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	if rt.pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := rt.migrate(ctx); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notifiers, closeNotifiers := buildNotifiers(cfg.Notification, logger)
	defer closeNotifiers()
	notificationService := service.NewNotificationService(dispatcher, notifiers, logger, metrics, service.NotificationOptions{
		QueueSize:       cfg.Notification.QueueSize,
		DeliveryTimeout: cfg.Notification.DeliveryTimeout(),
	})
	worker.StartNotificationWorker(ctx, notificationService)

	calculator := billing.NewCalculator(cfg.Billing.RatePerKWh)
	customerService := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: rt.customers,
		Dispatcher:   dispatcher,
		Calculator:   calculator,
		Logger:       logger,
		Metrics:      metrics,
		Threshold:    cfg.Billing.HighUsageThreshold,
	})

	if seed || cfg.Storage.SeedDemo {
		created, err := service.SeedDemoCustomers(ctx, customerService)
		if err != nil {
			return err
		}
		logger.Info("demo customers seeded", zap.Int("created", created))
	}

	authService := service.NewAuthService(cfg.Auth, rt.employees, logger)
	if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("failed to bootstrap admin", zap.Error(err))
		return err
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowOrigins)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Info:           handlers.NewInfoHandler(cfg.App.Version, rt.database),
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, customerService, rt.pg, redis, logger),
		Customers:      handlers.NewCustomersHandler(customerService),
		Billing:        handlers.NewBillingHandler(calculator, billing.NewDetector(cfg.Billing.AnomalyFactor), metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), rt.employees),
		EnforceAuth:    cfg.Auth.Enforce,
		LoginLimiter: httptransport.RateLimitMiddleware(httptransport.RateLimitConfig{
			Redis:  redis.Client,
			Limit:  cfg.Auth.LoginRateLimit,
			Window: cfg.Auth.LoginRateWindow(),
			Logger: logger,
		}),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.App.Addr()), zap.String("database", rt.database))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
			return err
		}
	}

	cancel()
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func buildNotifiers(cfg config.NotificationConfig, logger *zap.Logger) ([]notify.Notifier, func()) {
	var notifiers []notify.Notifier
	var closers []func() error

	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret, cfg.DeliveryTimeout()))
		logger.Info("webhook notifications enabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		notifiers = append(notifiers, kafkaNotifier)
		closers = append(closers, kafkaNotifier.Close)
		logger.Info("kafka notifications enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	return notifiers, func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("failed to close notifier", zap.Error(err))
			}
		}
	}
}
