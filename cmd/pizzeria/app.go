package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/romanchykov-webdev/pizzeria/internal/auth"
	"github.com/romanchykov-webdev/pizzeria/internal/config"
	"github.com/romanchykov-webdev/pizzeria/internal/events"
	"github.com/romanchykov-webdev/pizzeria/internal/handlers"
	"github.com/romanchykov-webdev/pizzeria/internal/logging"
	"github.com/romanchykov-webdev/pizzeria/internal/migrations"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/observability"
	"github.com/romanchykov-webdev/pizzeria/internal/payments"
	"github.com/romanchykov-webdev/pizzeria/internal/realtime"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
	"github.com/romanchykov-webdev/pizzeria/internal/telegram"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const serviceName = "pizzeria"

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	logger *logrus.Logger
	dbPool *pgxpool.Pool
	echo   *echo.Echo

	instruments   *observability.Instruments
	otelShutdown  func(context.Context) error
	hub           *realtime.Hub
	rabbit        *events.RabbitPublisher
	telegram      *telegram.Client
	reminder      *services.ReminderWorker
	userService   services.UserService
	wantWebhook   bool
	webhookSecret string

	// Handlers
	paymentHandler  *handlers.PaymentHandler
	telegramHandler *handlers.TelegramHandler
	orderHandler    *handlers.OrderHandler
	adminHandler    *handlers.AdminHandler
	wsHandler       *realtime.Handler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	instruments, shutdown, err := observability.Init(ctx, serviceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	app.instruments = instruments
	app.otelShutdown = shutdown

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase выполняет миграции и открывает пул соединений.
func (app *App) initDatabase(ctx context.Context) error {
	app.logger.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB, app.logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.logger.Info("connected to database")

	return nil
}

// initDependencies собирает хранилища, сервисы и обработчики.
func (app *App) initDependencies() error {
	// Storage layer
	userStorage := storage.NewPostgresUserStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	cartStorage := storage.NewPostgresCartStorage(app.dbPool)

	// Рассылка событий статуса
	app.hub = realtime.NewHub(app.logger)
	publishers := []events.Publisher{app.hub}
	if app.cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(app.cfg.RabbitMQURL, app.cfg.RabbitMQExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		app.rabbit = rabbit
		publishers = append(publishers, rabbit)
		app.logger.WithField("exchange", app.cfg.RabbitMQExchange).Info("status events go to rabbitmq")
	}
	publisher := events.NewMultiPublisher(publishers...)

	// Чат кухни
	tg, err := telegram.NewClient(app.cfg.TelegramBotToken, app.cfg.TelegramChatID, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}
	app.telegram = tg

	var notifier services.Notifier
	if tg.Enabled() {
		notifier = telegram.NewOrderNotifier(tg, app.logger)
	}

	// Service layer
	var paymentService services.PaymentService = services.NewPaymentService(orderStorage, cartStorage, notifier, publisher, app.logger)
	paymentService = observability.NewPaymentService(paymentService, app.instruments)

	var kitchenService services.KitchenService = services.NewKitchenService(orderStorage, publisher, app.logger)
	kitchenService = observability.NewKitchenService(kitchenService, app.instruments)

	orderService := services.NewOrderService(orderStorage)
	app.userService = services.NewUserService(userStorage, app.cfg.JWTSecret, app.cfg.TokenExpiration)

	if notifier != nil && app.cfg.ReminderAfter > 0 {
		app.reminder = services.NewReminderWorker(orderStorage, notifier, app.cfg.ReminderAfter, time.Minute, app.logger)
	}

	// Handler layer
	verifier := payments.NewVerifier(app.cfg.StripeWebhookSecret, 0)
	callbacks := telegram.NewCallbackHandler(kitchenService, tg, app.cfg.Location(), app.logger)

	app.paymentHandler = handlers.NewPaymentHandler(verifier, paymentService, app.logger)
	app.telegramHandler = handlers.NewTelegramHandler(callbacks, app.cfg.TelegramWebhookSecret, app.logger)
	app.orderHandler = handlers.NewOrderHandler(orderService, app.logger)
	app.adminHandler = handlers.NewAdminHandler(app.userService, orderService, app.cfg.TokenExpiration, app.logger)
	app.wsHandler = realtime.NewHandler(app.hub, orderService, app.logger)

	app.wantWebhook = tg.Enabled() && app.cfg.TelegramWebhookURL != ""
	app.webhookSecret = app.cfg.TelegramWebhookSecret

	return nil
}

// initServer настраивает HTTP-сервер и маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(serviceName,
		otelecho.WithTracerProvider(app.instruments.TracerProvider),
		otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/api/orders/:id/ws"
		}),
	))
	e.Use(logging.RequestLogger(app.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}))

	// Вебхуки внешних систем
	e.POST("/api/webhooks/payment", app.paymentHandler.Webhook)
	e.POST("/api/webhooks/telegram", app.telegramHandler.Webhook)

	// Страница отслеживания заказа
	e.GET("/api/orders/:id/status", app.orderHandler.GetStatus)
	e.GET("/api/orders/:id/ws", app.wsHandler.Serve)

	// Админка
	e.POST("/api/admin/login", app.adminHandler.Login)
	admin := e.Group("/api/admin/orders")
	admin.Use(auth.JWTMiddleware(app.cfg.JWTSecret), auth.RequireRole(models.UserRoleAdmin))
	admin.GET("", app.adminHandler.ListOrders)
	admin.GET("/:id", app.adminHandler.GetOrder)
	admin.DELETE("/:id", app.adminHandler.DeleteOrder)

	app.echo = e
}

// Start запускает фоновые задачи и HTTP-сервер.
func (app *App) Start(ctx context.Context) error {
	if app.cfg.AdminLogin != "" && app.cfg.AdminPassword != "" {
		created, err := app.userService.EnsureAdmin(ctx, app.cfg.AdminLogin, app.cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			app.logger.WithField("login", app.cfg.AdminLogin).Info("admin user created")
		}
	}

	if app.wantWebhook {
		if err := app.telegram.SetWebhook(ctx, app.cfg.TelegramWebhookURL, app.webhookSecret); err != nil {
			// Кнопки не будут работать, но приём оплат продолжается.
			app.logger.WithError(err).Error("failed to register telegram webhook")
		}
	}

	if app.reminder != nil {
		app.reminder.Start(ctx)
		app.logger.WithField("after", app.cfg.ReminderAfter).Info("kitchen reminder worker started")
	}

	app.logger.WithField("address", app.cfg.RunAddress).Info("starting server")
	if err := app.echo.Start(app.cfg.RunAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.logger.Info("shutting down server")

	var errs []error
	if err := app.echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown server: %w", err))
	}

	app.hub.Close()

	if app.rabbit != nil {
		if err := app.rabbit.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	if app.otelShutdown != nil {
		if err := app.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush telemetry: %w", err))
		}
	}

	app.logger.Info("server gracefully stopped")
	return errors.Join(errs...)
}
