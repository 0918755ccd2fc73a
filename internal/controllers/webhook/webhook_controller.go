package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/fleetwatch/safety-alerts-api/internal/events"
	"github.com/fleetwatch/safety-alerts-api/internal/signature"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AlertDispatcher enqueues one accepted raw event for background processing.
type AlertDispatcher interface {
	Dispatch(raw json.RawMessage) error
}

// WebhookController handles inbound Motive webhook deliveries.
type WebhookController struct {
	dispatcher    AlertDispatcher
	webhookSecret string
}

// NewWebhookController creates a new WebhookController.
func NewWebhookController(dispatcher AlertDispatcher, webhookSecret string) *WebhookController {
	return &WebhookController{
		dispatcher:    dispatcher,
		webhookSecret: webhookSecret,
	}
}

// HandleMotiveEvent godoc
// @Summary      Receive Motive speeding events
// @Description  Verifies the HMAC signature over the raw body, filters and validates the payload (single object or batch), and queues qualifying speeding events for background alert delivery. Always responds promptly; enrichment and delivery happen after the response.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        X-KT-Webhook-Signature  header    string    true  "Hex HMAC-SHA1 signature of the raw body"
// @Success      200  {object}  Response  "Payload accepted or ignored"
// @Failure      400  "Invalid JSON payload"
// @Failure      401  "Invalid webhook signature"
// @Failure      500  "Internal server error"
// @Router       /webhook/motive [post]
func (w *WebhookController) HandleMotiveEvent(c *fiber.Ctx) error {
	logger := zerolog.Ctx(c.UserContext())

	// Signature verification runs on the raw bytes, before any parsing.
	body := c.Body()
	if err := signature.Verify(body, c.Get(signature.Header), w.webhookSecret); err != nil {
		return err
	}

	candidates, err := events.Split(body)
	if err != nil {
		return richerrors.Error{
			Code:        fiber.StatusBadRequest,
			ExternalMsg: "Invalid JSON payload",
			Err:         err,
		}
	}
	logger.Info().Int("candidates", len(candidates)).Msg("webhook payload received")

	accepted := make([]int64, 0, len(candidates))
	for _, raw := range candidates {
		action, ok := events.Action(raw)
		if !ok {
			logger.Warn().RawJSON("payload", raw).Msg("skipping non-object event payload")
			continue
		}
		if action != events.ActionSpeedingEventCreated {
			logger.Info().Str("action", action).Msg("event ignored: action not processed")
			continue
		}
		event, err := events.Parse(raw)
		if err != nil {
			logger.Error().Err(err).Msg("invalid payload structure for event")
			continue
		}
		if err := w.dispatcher.Dispatch(raw); err != nil {
			// Only this event is lost; the rest of the batch proceeds.
			logger.Error().Err(err).Int64("event_id", event.ID).Msg("failed to queue event for processing")
			continue
		}
		accepted = append(accepted, event.ID)
	}

	if len(accepted) == 0 {
		return c.Status(fiber.StatusOK).JSON(Response{
			Status: "ignored",
			Reason: "No qualifying 'speeding_event_created' events in payload",
		})
	}

	logger.Info().Ints64("event_ids", accepted).Msg("events queued for processing")
	return c.Status(fiber.StatusOK).JSON(Response{
		Status:   "accepted",
		EventIDs: accepted,
		Message:  fmt.Sprintf("%d event(s) queued for processing", len(accepted)),
	})
}
