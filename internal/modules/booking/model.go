// README: Confirmed booking record written once per finished dialogue.
package booking

import (
	"errors"
	"time"

	"yahu/internal/types"
)

var ErrNotFound = errors.New("booking not found")

// Booking holds the finalized slot values of one confirmed trip request.
type Booking struct {
	ID types.ID `json:"id"`
	// Code is the short human-displayable booking number shown in chat.
	// Unique enough for display, not globally guaranteed unique.
	Code          int         `json:"code"`
	Pickup        string      `json:"pickup"`
	Destination   string      `json:"destination"`
	PickupTime    string      `json:"pickup_time"`
	CarType       string      `json:"car_type"`
	AudioPref     string      `json:"audio_pref"`
	Reciter       string      `json:"reciter,omitempty"`
	DistanceKm    float64     `json:"distance_km"`
	EstimatedFare types.Money `json:"estimated_fare"`
	CreatedAt     time.Time   `json:"created_at"`
}
