package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eshop/internal/config"
	"eshop/internal/handlers"
	"eshop/internal/middleware"
	"eshop/internal/models"
	"eshop/internal/repositories"
	"eshop/internal/services"
	"eshop/pkg/metrics"
	"eshop/pkg/rabbitmq"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	log.Info("Storage ready", zap.String("driver", cfg.DatabaseDriver))

	// A nil interface, not a nil *rabbitmq.Client, disables events.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return errors.Wrap(err, "init rabbitmq")
		}
		defer mqClient.Close()
		events = mqClient

		if err := mqClient.ConsumeOrderEvents(logOrderEvent(log)); err != nil {
			log.Warn("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}

	orderMetrics := metrics.NewOrderMetrics()
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	orderService := services.NewOrderService(repos, events, orderMetrics, log)

	if err := seedAdmin(ctx, cfg, repos.Users, authService, log); err != nil {
		return err
	}

	app := newApp(authService, orderService, orderMetrics, log)

	if cfg.OrphanSweepInterval > 0 {
		sweeper := services.NewOrphanSweeper(repos.LineItems, repos.Orders, cfg.OrphanGracePeriod, orderMetrics, log)
		go sweeper.Run(ctx, cfg.OrphanSweepInterval)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		serveErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("Server gracefully stopped")
	return nil
}

func openRepositories(cfg *config.Config) (services.Repositories, error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		return services.Repositories{
			Orders:     repositories.NewMockOrderRepository(),
			LineItems:  repositories.NewMockLineItemRepository(),
			Products:   repositories.NewMockProductRepository(),
			Categories: repositories.NewMockCategoryRepository(),
			Users:      repositories.NewMockUserRepository(),
		}, nil
	}

	db, err := repositories.OpenGORM(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return services.Repositories{}, err
	}
	return services.Repositories{
		Orders:     repositories.NewGORMOrderRepository(db),
		LineItems:  repositories.NewGORMLineItemRepository(db),
		Products:   repositories.NewGORMProductRepository(db),
		Categories: repositories.NewGORMCategoryRepository(db),
		Users:      repositories.NewGORMUserRepository(db),
	}, nil
}

// newApp builds the fiber application with every route registered.
func newApp(
	authService *services.AuthService,
	orderService *services.OrderService,
	orderMetrics *metrics.OrderMetrics,
	log *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", orderMetrics.Handler())

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(protected)

	return app
}

// seedAdmin creates the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD unless it already exists.
func seedAdmin(
	ctx context.Context,
	cfg *config.Config,
	users repositories.UserRepository,
	authService *services.AuthService,
	log *zap.Logger,
) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(cfg.AdminEmail)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return errors.Wrap(err, "look up admin")
	}

	admin := &models.User{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		IsAdmin:  true,
	}
	if err := authService.RegisterUser(ctx, admin); err != nil {
		return errors.Wrap(err, "seed admin")
	}
	log.Info("Seeded administrator", zap.String("email", admin.Email))
	return nil
}

func logOrderEvent(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.Info("Received order event",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("message_id", msg.MessageId),
			zap.ByteString("body", msg.Body),
		)
		return nil
	}
}
