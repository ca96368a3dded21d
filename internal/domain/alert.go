package domain

import "time"

// PriceAlert is a user-created watch on one flight's price.
// Notified is carried for persistence compatibility; Check never sets it.
type PriceAlert struct {
	ID           string      `json:"id"`
	FlightID     string      `json:"flightId"`
	Flight       FlightOffer `json:"flight"`
	TargetPrice  float64     `json:"targetPrice"`
	CurrentPrice float64     `json:"currentPrice"` // Price when the alert was created
	CreatedAt    time.Time   `json:"createdAt"`
	Notified     bool        `json:"notified"`
}

// Matches reports whether a current price satisfies this alert
func (a PriceAlert) Matches(flightID string, currentPrice float64) bool {
	return a.FlightID == flightID && !a.Notified && currentPrice <= a.TargetPrice
}
