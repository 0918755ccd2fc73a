// Package alertdispatcher consumes accepted speeding events in the
// background and delivers formatted alerts to the configured chat. Work is
// enqueued by the webhook controller and processed after the HTTP response
// has already been sent; there is no return channel to the request.
package alertdispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fleetwatch/safety-alerts-api/internal/clients/motive"
	"github.com/fleetwatch/safety-alerts-api/internal/events"
	"github.com/fleetwatch/safety-alerts-api/internal/services/unitresolver"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// KPHToMPH converts kilometers per hour to miles per hour.
const KPHToMPH = 0.621371

// minOverSpeedMPH suppresses alerts for violations below this converted
// amount, to cut notification noise from measurement jitter around the
// legal threshold.
const minOverSpeedMPH = 5.0

const (
	defaultQueueSize   = 256
	defaultWorkerCount = 4
)

// ErrQueueFull is returned by Dispatch when the work queue is saturated.
var ErrQueueFull = errors.New("alert queue is full")

// ErrShuttingDown is returned by Dispatch once shutdown has begun; a job
// enqueued during the drain could be stranded in the channel after the
// workers exit, which would break "accepted means queued".
var ErrShuttingDown = errors.New("alert dispatcher is shutting down")

// UnitResolver resolves vehicle enrichment data; both methods are best
// effort and never fail.
type UnitResolver interface {
	ResolveUnit(ctx context.Context, vehicleID int64) string
	FetchEventDetails(ctx context.Context, eventID int64) *motive.EventDetails
}

// Notifier delivers a formatted message to a chat destination.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Config holds dispatcher tuning knobs.
type Config struct {
	ChatID      string
	QueueSize   int
	WorkerCount int
}

// Dispatcher owns the in-process alert work queue and its worker pool.
type Dispatcher struct {
	resolver UnitResolver
	notifier Notifier
	chatID   string
	workers  int
	jobs     chan json.RawMessage
	wg       sync.WaitGroup
	logger   zerolog.Logger

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

// New creates a Dispatcher. Call Start before Dispatch.
func New(resolver UnitResolver, notifier Notifier, cfg Config, logger zerolog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	return &Dispatcher{
		resolver: resolver,
		notifier: notifier,
		chatID:   cfg.ChatID,
		workers:  cfg.WorkerCount,
		jobs:     make(chan json.RawMessage, cfg.QueueSize),
		logger:   logger,
	}
}

// Start launches the worker pool. Workers exit once ctx is canceled and the
// queued backlog is drained, so shutdown is deterministic. In-flight jobs
// are not canceled; each outbound call carries its own timeout.
func (d *Dispatcher) Start(ctx context.Context) {
	// Jobs outlive the request that enqueued them and must survive server
	// shutdown long enough to drain.
	jobCtx := context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, jobCtx)
	}
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch enqueues one raw event object for background processing. It never
// blocks the intake path: a saturated queue returns ErrQueueFull, a
// dispatcher past the start of shutdown returns ErrShuttingDown, and the
// caller drops only that event.
func (d *Dispatcher) Dispatch(raw json.RawMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrShuttingDown
	}
	select {
	case d.jobs <- raw:
		return nil
	default:
		return ErrQueueFull
	}
}

// markStopped flips the shutdown flag before any worker starts draining, so
// every job that made it into the channel is processed and no job can land
// behind the drain.
func (d *Dispatcher) markStopped() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
	})
}

func (d *Dispatcher) worker(ctx, jobCtx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case raw := <-d.jobs:
			d.run(jobCtx, raw)
		case <-ctx.Done():
			d.markStopped()
			for {
				select {
				case raw := <-d.jobs:
					d.run(jobCtx, raw)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, raw json.RawMessage) {
	logger := d.logger.With().Str("job_id", uuid.New().String()).Logger()
	if err := d.processAlert(logger.WithContext(ctx), raw); err != nil {
		logger.Error().Err(err).RawJSON("event", raw).Msg("alert processing failed")
	}
}

// processAlert re-validates the raw object, applies the over-speed
// threshold, resolves the unit name, and delivers the alert. Delivery
// failures are returned to the worker; no retry happens here.
func (d *Dispatcher) processAlert(ctx context.Context, raw json.RawMessage) error {
	logger := zerolog.Ctx(ctx)

	// Defensive re-validation: the dispatcher is decoupled from intake and
	// must not assume it runs in the same request lifetime.
	event, err := events.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid alert payload: %w", err)
	}

	limitMPH := event.MaxPostedSpeedLimitKPH * KPHToMPH
	speedMPH := event.MaxVehicleSpeedKPH * KPHToMPH
	overMPH := event.MaxOverSpeedKPH * KPHToMPH

	if overMPH < minOverSpeedMPH {
		logger.Info().
			Int64("event_id", event.ID).
			Float64("over_speed_mph", overMPH).
			Msg("alert suppressed below over-speed threshold")
		return nil
	}

	unit := d.resolver.ResolveUnit(ctx, event.VehicleID)
	unitDisplay := unit
	if unit == unitresolver.UnitUnknown {
		// Keep a traceable handle for operators even without a friendly name.
		unitDisplay = fmt.Sprintf("Unknown (ID: %d)", event.VehicleID)
	}

	message := composeMessage(unitDisplay, limitMPH, speedMPH, overMPH)
	if details := d.resolver.FetchEventDetails(ctx, event.ID); details != nil && details.Latitude != nil && details.Longitude != nil {
		message += fmt.Sprintf("\n<b>Location:</b> %.5f, %.5f", *details.Latitude, *details.Longitude)
	}

	if err := d.notifier.SendMessage(ctx, d.chatID, message); err != nil {
		return fmt.Errorf("failed to deliver alert for event %d (vehicle %d): %w", event.ID, event.VehicleID, err)
	}

	logger.Info().Int64("event_id", event.ID).Str("unit", unit).Msg("alert delivered")
	return nil
}

func composeMessage(unitDisplay string, limitMPH, speedMPH, overMPH float64) string {
	return "🚨 <b>SPEEDING ALERT</b>\n" +
		fmt.Sprintf("<b>Unit:</b> %s\n", unitDisplay) +
		fmt.Sprintf("<b>Route Limit:</b> %.1f mph\n", limitMPH) +
		fmt.Sprintf("<b>Current Speed:</b> %.1f mph\n", speedMPH) +
		fmt.Sprintf("<b>Violation:</b> +%.1f mph", overMPH)
}
