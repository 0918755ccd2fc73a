package motive

import "encoding/json"

// Vehicle is the subset of the Motive vehicle record this service reads.
type Vehicle struct {
	// Number is the fleet's display name for the unit.
	Number string `json:"number"`
}

// EventDetails is the normalized authoritative record for a speeding event.
// Fields are nil when the provider response omits them or carries a value
// of an unexpected type.
type EventDetails struct {
	Latitude      *float64
	Longitude     *float64
	SpeedKPH      *float64
	SpeedLimitKPH *float64
	VehicleID     *int64
}

// pickFloat returns the first candidate key whose value decodes as a number.
// Candidates are evaluated in priority order; a type mismatch on one key
// falls through to the next.
func pickFloat(obj map[string]json.RawMessage, keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v
		}
	}
	return nil
}

func pickInt(obj map[string]json.RawMessage, keys ...string) *int64 {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var v int64
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v
		}
	}
	return nil
}
