package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlightRecord is one flight-schedule row. ID is assigned on creation and
// never changes. FlightID is not unique, the same flight number appears
// across dates and legs.
type FlightRecord struct {
	ID            string          `json:"id" db:"id"`
	FlightID      string          `json:"flightId" db:"flight_id"`
	Source        string          `json:"source" db:"source"`
	Destination   string          `json:"destination" db:"destination"`
	FlightDate    time.Time       `json:"flightDate" db:"flight_date"`
	MaximumStops  int             `json:"maximumStops" db:"maximum_stops"`
	Partner       string          `json:"departner,omitempty" db:"partner"`
	SeatStructure json.RawMessage `json:"seatStructure,omitempty" db:"seat_structure"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// FlightSubmission is a candidate flight-data row for indexing.
type FlightSubmission struct {
	FlightID      string          `json:"flightId"`
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	FlightDate    time.Time       `json:"flightDate"`
	MaximumStops  int             `json:"maximumStops"`
	Partner       string          `json:"departner,omitempty"`
	SeatStructure json.RawMessage `json:"seatStructure,omitempty"`
}

// NaturalKey identifies a schedule row for insert-vs-update decisions:
// (flight id, source, destination, flight date).
func (s *FlightSubmission) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		s.FlightID, s.Source, s.Destination, s.FlightDate.UTC().Format("2006-01-02"))
}

// Matches reports whether rec carries the same natural key as the submission.
func (s *FlightSubmission) Matches(rec *FlightRecord) bool {
	return rec != nil &&
		rec.FlightID == s.FlightID &&
		rec.Source == s.Source &&
		rec.Destination == s.Destination &&
		rec.FlightDate.UTC().Format("2006-01-02") == s.FlightDate.UTC().Format("2006-01-02")
}

// UpsertResult is the outcome of indexing one submission.
type UpsertResult struct {
	Record     *FlightRecord `json:"record"`
	IsNewEntry bool          `json:"isNewEntry"`
	Message    string        `json:"message"`
}
