package webhook

// Response is the body returned to the webhook sender. Motive only requires
// a prompt 2xx; the status field reports whether anything was queued.
type Response struct {
	// Status is "accepted" when at least one event was queued, "ignored" otherwise.
	Status string `json:"status"`
	// EventIDs lists the IDs of the events queued for processing.
	EventIDs []int64 `json:"event_ids,omitempty"`
	// Message provides a brief status message for the operation.
	Message string `json:"message,omitempty"`
	// Reason explains why a payload was ignored.
	Reason string `json:"reason,omitempty"`
}
