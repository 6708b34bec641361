package domain

import (
	"time"

	"github.com/google/uuid"
)

// DesignCreationEndpoint is the quota key for design creation requests.
const DesignCreationEndpoint = "/api/designs/"

// UsageCounter counts admitted requests per user, endpoint and calendar day.
// A new day starts a new counter at zero.
type UsageCounter struct {
	UserID   uuid.UUID
	Endpoint string
	Day      time.Time
	Count    int
}

// UsageDay truncates t to its UTC calendar day.
func UsageDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
