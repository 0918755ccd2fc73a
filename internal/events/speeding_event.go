// Package events defines the Motive speeding-event payload and the
// normalization helpers that turn a raw webhook body into validated events.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionSpeedingEventCreated is the only webhook action this service processes.
const ActionSpeedingEventCreated = "speeding_event_created"

// SpeedingEvent is a validated Motive speeding event. Immutable once parsed.
type SpeedingEvent struct {
	// Action is the webhook action type.
	Action string `json:"action"`
	// ID is the unique event identifier.
	ID int64 `json:"id"`
	// MaxOverSpeedKPH is the maximum speed over the posted limit, in km/h.
	MaxOverSpeedKPH float64 `json:"max_over_speed_in_kph"`
	// MaxPostedSpeedLimitKPH is the maximum posted speed limit, in km/h.
	MaxPostedSpeedLimitKPH float64 `json:"max_posted_speed_limit_in_kph"`
	// MaxVehicleSpeedKPH is the maximum recorded vehicle speed, in km/h.
	MaxVehicleSpeedKPH float64 `json:"max_vehicle_speed"`
	// DriverID identifies the driver in Motive.
	DriverID int64 `json:"driver_id"`
	// VehicleID identifies the vehicle in Motive.
	VehicleID int64 `json:"vehicle_id"`
	// Status is the optional event status.
	Status *string `json:"status"`
}

// wireEvent mirrors SpeedingEvent with pointer fields so that absent
// required fields are distinguishable from zero values.
type wireEvent struct {
	Action                 *string  `json:"action"`
	ID                     *int64   `json:"id"`
	MaxOverSpeedKPH        *float64 `json:"max_over_speed_in_kph"`
	MaxPostedSpeedLimitKPH *float64 `json:"max_posted_speed_limit_in_kph"`
	MaxVehicleSpeedKPH     *float64 `json:"max_vehicle_speed"`
	DriverID               *int64   `json:"driver_id"`
	VehicleID              *int64   `json:"vehicle_id"`
	Status                 *string  `json:"status"`
}

// Split breaks a webhook body into its event candidates. A top-level array
// yields its elements; anything else is treated as a single candidate.
// Returns an error only when the body is not valid JSON at all.
func Split(body []byte) ([]json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err == nil {
		return batch, nil
	}
	return []json.RawMessage{json.RawMessage(body)}, nil
}

// Action peeks at the action field of a raw candidate. The second return is
// false when the candidate is not a JSON object.
func Action(raw json.RawMessage) (string, bool) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", false
	}
	return head.Action, true
}

// Parse validates a raw candidate into a SpeedingEvent. All fields except
// status are required; a missing field fails the parse.
func Parse(raw json.RawMessage) (*SpeedingEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to parse speeding event: %w", err)
	}

	var missing []string
	if w.Action == nil {
		missing = append(missing, "action")
	}
	if w.ID == nil {
		missing = append(missing, "id")
	}
	if w.MaxOverSpeedKPH == nil {
		missing = append(missing, "max_over_speed_in_kph")
	}
	if w.MaxPostedSpeedLimitKPH == nil {
		missing = append(missing, "max_posted_speed_limit_in_kph")
	}
	if w.MaxVehicleSpeedKPH == nil {
		missing = append(missing, "max_vehicle_speed")
	}
	if w.DriverID == nil {
		missing = append(missing, "driver_id")
	}
	if w.VehicleID == nil {
		missing = append(missing, "vehicle_id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	return &SpeedingEvent{
		Action:                 *w.Action,
		ID:                     *w.ID,
		MaxOverSpeedKPH:        *w.MaxOverSpeedKPH,
		MaxPostedSpeedLimitKPH: *w.MaxPostedSpeedLimitKPH,
		MaxVehicleSpeedKPH:     *w.MaxVehicleSpeedKPH,
		DriverID:               *w.DriverID,
		VehicleID:              *w.VehicleID,
		Status:                 w.Status,
	}, nil
}
