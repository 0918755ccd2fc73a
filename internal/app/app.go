package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DIMO-Network/server-garage/pkg/fibercommon"
	_ "github.com/fleetwatch/safety-alerts-api/docs" // Import Swagger docs
	"github.com/fleetwatch/safety-alerts-api/internal/clients/motive"
	"github.com/fleetwatch/safety-alerts-api/internal/clients/telegram"
	"github.com/fleetwatch/safety-alerts-api/internal/config"
	"github.com/fleetwatch/safety-alerts-api/internal/controllers/webhook"
	"github.com/fleetwatch/safety-alerts-api/internal/services/alertdispatcher"
	"github.com/fleetwatch/safety-alerts-api/internal/services/unitcache"
	"github.com/fleetwatch/safety-alerts-api/internal/services/unitresolver"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
)

const eventDetailTTL = 10 * time.Minute

// CreateServers wires the Motive and Telegram clients, the unit resolver, and
// the background alert dispatcher, then builds the fiber app on top of them.
// The returned dispatcher is started; callers should Wait on it during shutdown
// so queued alerts drain before the process exits.
func CreateServers(ctx context.Context, settings *config.Settings, logger zerolog.Logger) (*fiber.App, *alertdispatcher.Dispatcher, error) {
	motiveClient, err := motive.New(settings.MotiveAPIURL, settings.MotiveAPIKey, &http.Client{Timeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create motive client: %w", err)
	}

	cacheSize := settings.UnitCacheSize
	if cacheSize <= 0 {
		cacheSize = unitcache.DefaultCapacity
	}
	unitCache := unitcache.New(cacheSize)
	eventCache := motive.NewEventDetailCache(eventDetailTTL, eventDetailTTL)

	resolver := unitresolver.New(motiveClient, unitCache, eventCache, logger)

	telegramClient, err := telegram.New(settings.TelegramAPIURL, settings.TelegramBotToken, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	dispatcher := alertdispatcher.New(resolver, telegramClient, alertdispatcher.Config{
		ChatID:      settings.TelegramChatID,
		QueueSize:   settings.AlertQueueSize,
		WorkerCount: settings.AlertWorkerCount,
	}, logger)
	dispatcher.Start(ctx)

	app, err := CreateFiberApp(logger, dispatcher, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fiber app: %w", err)
	}
	return app, dispatcher, nil
}

// CreateFiberApp sets up the API routes.
func CreateFiberApp(logger zerolog.Logger, dispatcher webhook.AlertDispatcher, settings *config.Settings) (*fiber.App, error) {
	logger.Info().Msg("Starting Safety Alerts API...")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fibercommon.ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
	})
	app.Use(fibercommon.ContextLoggerMiddleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": settings.ServiceName,
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	webhookController := webhook.NewWebhookController(dispatcher, settings.WebhookSecret)
	logger.Info().Msg("Registering routes...")

	app.Post("/webhook/motive", webhookController.HandleMotiveEvent)

	return app, nil
}
