// Package motive is a thin HTTP client for the Motive fleet API.
package motive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Client calls the Motive REST API with an API-key credential.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new Client. A nil httpClient gets a default with a 10 second
// timeout; every outbound call is bounded by it.
func New(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Motive API URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    parsedURL.String(),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetVehicle fetches a vehicle record by its Motive ID. Non-2xx responses are
// returned as richerrors carrying the upstream status code so callers can
// tell a stable 404 from a transient auth or server failure.
func (c *Client) GetVehicle(ctx context.Context, vehicleID int64) (*Vehicle, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v1/vehicles/%d", vehicleID))
	if err != nil {
		return nil, err
	}

	// Motive nests the record under a "vehicle" wrapper; older payloads put
	// the fields at the top level.
	var wrapped struct {
		Vehicle *Vehicle `json:"vehicle"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Vehicle != nil {
		return wrapped.Vehicle, nil
	}

	var vehicle Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle response: %w", err)
	}
	return &vehicle, nil
}

// GetSpeedingEvent fetches the authoritative record for a speeding event.
// The response shape varies, so fields are extracted through an ordered list
// of fallback keys; anything that fails to coerce is simply absent.
func (c *Client) GetSpeedingEvent(ctx context.Context, eventID int64) (*EventDetails, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v1/speeding_events/%d", eventID))
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal speeding event response: %w", err)
	}
	if wrapped, ok := obj["speeding_event"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err == nil {
			obj = inner
		}
	}

	return &EventDetails{
		Latitude:      pickFloat(obj, "lat", "latitude"),
		Longitude:     pickFloat(obj, "lon", "lng", "longitude"),
		SpeedKPH:      pickFloat(obj, "max_vehicle_speed", "vehicle_speed", "speed"),
		SpeedLimitKPH: pickFloat(obj, "max_posted_speed_limit_in_kph", "posted_speed_limit", "speed_limit"),
		VehicleID:     pickInt(obj, "vehicle_id"),
	}, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, richerrors.Error{
			Code: resp.StatusCode,
			Err:  fmt.Errorf("motive API returned status %d for %s", resp.StatusCode, path),
		}
	}
	return body, nil
}

// StatusCode unwraps the upstream HTTP status from a client error, or 0 when
// the error was not an HTTP response (transport failure, bad payload).
func StatusCode(err error) int {
	if richErr, ok := richerrors.AsRichError(err); ok {
		return richErr.Code
	}
	return 0
}
