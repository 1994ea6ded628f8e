package models

import (
	"time"

	"github.com/mr1hm/go-quake-risk/internal/severity"
)

// Alert is an entry in the alert log, written once per earthquake that
// reached the configured severity.
type Alert struct {
	ID           string        `json:"id"`
	EarthquakeID string        `json:"earthquake_id"`
	Severity     severity.Tier `json:"severity"`
	Magnitude    float64       `json:"magnitude"`
	Location     string        `json:"location"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	CreatedAt    time.Time     `json:"created_at"`
}
