package kafka

import (
	"time"

	"travel_booking/internal/models"
)

// FlightIndexedEvent is published after a submission lands in the record
// store. For Kafka partitioning the flight identifier is the message key.
type FlightIndexedEvent struct {
	RecordID    string    `json:"recordId"`
	FlightID    string    `json:"flightId"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	FlightDate  time.Time `json:"flightDate"`
	IsNewEntry  bool      `json:"isNewEntry"`
	IndexedAt   time.Time `json:"indexedAt"`
}

func NewFlightIndexedEvent(rec *models.FlightRecord, isNew bool) *FlightIndexedEvent {
	return &FlightIndexedEvent{
		RecordID:    rec.ID,
		FlightID:    rec.FlightID,
		Source:      rec.Source,
		Destination: rec.Destination,
		FlightDate:  rec.FlightDate,
		IsNewEntry:  isNew,
		IndexedAt:   rec.UpdatedAt,
	}
}

// BookingCompletedEvent is published once a booking strategy has driven its
// payment to VERIFIED.
type BookingCompletedEvent struct {
	BookingID     string    `json:"bookingId"`
	BookingType   string    `json:"bookingType"`
	CustomerID    string    `json:"customerId,omitempty"`
	FlightID      string    `json:"flightId,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transactionId"`
	CompletedAt   time.Time `json:"completedAt"`
}
