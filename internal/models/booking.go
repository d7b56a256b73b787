package models

import "encoding/json"

// BookingRequest routes to exactly one strategy via BookingType.
type BookingRequest struct {
	BookingType string          `json:"bookingType"`
	Payload     json.RawMessage `json:"payload"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
}

const (
	BookingStatusConfirmed     = "confirmed"
	BookingStatusPaymentFailed = "payment_failed"
)

// BookingResult is what a strategy returns. Payment carries the final
// transaction so callers can inspect the outcome state instead of parsing
// error channels.
type BookingResult struct {
	BookingID string              `json:"bookingId"`
	Status    string              `json:"status"`
	Message   string              `json:"message,omitempty"`
	Payment   *PaymentTransaction `json:"payment,omitempty"`
}
