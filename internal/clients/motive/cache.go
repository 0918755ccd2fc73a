package motive

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// EventDetailCache keeps recently fetched speeding-event details for a short
// time so redelivered webhooks for the same event do not re-hit the API.
type EventDetailCache struct {
	cache *cache.Cache
}

// NewEventDetailCache creates a cache with the given entry TTL and janitor
// interval.
func NewEventDetailCache(defaultExpiration, cleanupInterval time.Duration) *EventDetailCache {
	return &EventDetailCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns cached details for the event, if any.
func (c *EventDetailCache) Get(eventID int64) (*EventDetails, bool) {
	v, found := c.cache.Get(strconv.FormatInt(eventID, 10))
	if !found {
		return nil, false
	}
	return v.(*EventDetails), true
}

// Set stores details for the event with the default TTL.
func (c *EventDetailCache) Set(eventID int64, details *EventDetails) {
	c.cache.Set(strconv.FormatInt(eventID, 10), details, 0)
}
