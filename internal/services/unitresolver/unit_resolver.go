// Package unitresolver turns Motive vehicle IDs into unit display names.
// Resolution is best effort: the external API being slow, wrong, or down
// must never block alert delivery, so every failure path degrades to the
// UnitUnknown sentinel instead of returning an error.
package unitresolver

import (
	"context"
	"net/http"
	"time"

	"github.com/fleetwatch/safety-alerts-api/internal/clients/motive"
	"github.com/fleetwatch/safety-alerts-api/internal/services/unitcache"
	"github.com/rs/zerolog"
)

// UnitUnknown is the sentinel unit name for vehicles whose unit could not be
// determined. It is also the cached value for confirmed-missing vehicles.
const UnitUnknown = "Unit Unknown"

// defaultFetchDelay is how long to wait before the first event-detail fetch.
// Events are not always queryable immediately after webhook delivery.
const defaultFetchDelay = 5 * time.Second

// VehicleAPI is the slice of the Motive client the resolver needs.
type VehicleAPI interface {
	GetVehicle(ctx context.Context, vehicleID int64) (*motive.Vehicle, error)
	GetSpeedingEvent(ctx context.Context, eventID int64) (*motive.EventDetails, error)
}

// Resolver resolves unit names through the cache, falling back to the API.
type Resolver struct {
	api        VehicleAPI
	cache      *unitcache.Cache
	eventCache *motive.EventDetailCache
	logger     zerolog.Logger

	// FetchDelay is the initial wait before an event-detail fetch.
	FetchDelay time.Duration
}

// New creates a Resolver.
func New(api VehicleAPI, cache *unitcache.Cache, eventCache *motive.EventDetailCache, logger zerolog.Logger) *Resolver {
	return &Resolver{
		api:        api,
		cache:      cache,
		eventCache: eventCache,
		logger:     logger,
		FetchDelay: defaultFetchDelay,
	}
}

// ResolveUnit returns the unit display name for a vehicle. It never fails:
// any lookup error resolves to UnitUnknown. A 404 is treated as a stable
// fact about the ID and cached; auth and transport failures are assumed
// transient and left uncached so a later event retries the lookup.
func (r *Resolver) ResolveUnit(ctx context.Context, vehicleID int64) string {
	if unit, ok := r.cache.Get(vehicleID); ok {
		r.logger.Debug().Int64("vehicle_id", vehicleID).Str("unit", unit).Msg("unit cache hit")
		return unit
	}

	vehicle, err := r.api.GetVehicle(ctx, vehicleID)
	if err != nil {
		switch code := motive.StatusCode(err); code {
		case http.StatusNotFound:
			r.logger.Warn().Int64("vehicle_id", vehicleID).Msg("vehicle not found, caching unknown unit")
			r.cache.Set(vehicleID, UnitUnknown)
		case http.StatusUnauthorized, http.StatusForbidden:
			r.logger.Error().Err(err).Int64("vehicle_id", vehicleID).Int("status", code).Msg("auth error fetching vehicle")
		default:
			r.logger.Error().Err(err).Int64("vehicle_id", vehicleID).Msg("failed to fetch vehicle")
		}
		return UnitUnknown
	}

	unit := vehicle.Number
	if unit == "" {
		unit = UnitUnknown
	}
	r.cache.Set(vehicleID, unit)
	r.logger.Info().Int64("vehicle_id", vehicleID).Str("unit", unit).Msg("fetched and cached vehicle unit")
	return unit
}

// FetchEventDetails retrieves the authoritative location/speed record for an
// event. It waits FetchDelay before the first attempt and retries a 404 once
// with doubled backoff, since the provider may not have indexed the event
// yet. Returns nil on any failure; it never raises.
func (r *Resolver) FetchEventDetails(ctx context.Context, eventID int64) *motive.EventDetails {
	if details, ok := r.eventCache.Get(eventID); ok {
		return details
	}

	delay := r.FetchDelay
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		details, err := r.api.GetSpeedingEvent(ctx, eventID)
		if err == nil {
			r.eventCache.Set(eventID, details)
			return details
		}
		if motive.StatusCode(err) != http.StatusNotFound {
			r.logger.Warn().Err(err).Int64("event_id", eventID).Msg("failed to fetch event details")
			return nil
		}
		r.logger.Debug().Int64("event_id", eventID).Msg("event not yet queryable, retrying")
		delay *= 2
	}

	r.logger.Warn().Int64("event_id", eventID).Msg("event details still not found after retry")
	return nil
}
