package models

import "time"

// FlightOffer is a priced, schedulable instance of a flight: a read
// projection over schedule records plus pricing and availability data owned
// by the pricing collaborator.
type FlightOffer struct {
	FlightID       string       `json:"flightId"`
	Airline        string       `json:"airline"`
	FlightNumber   string       `json:"flightNumber"`
	Source         string       `json:"source"`
	Destination    string       `json:"destination"`
	DepartureTime  time.Time    `json:"departureTime"`
	ArrivalTime    time.Time    `json:"arrivalTime"`
	Duration       string       `json:"duration"` // e.g. "2h30m"
	Stops          int          `json:"stops"`
	Price          float64      `json:"price"`
	Currency       string       `json:"currency"`
	AvailableSeats int          `json:"availableSeats"`
	AircraftType   string       `json:"aircraftType,omitempty"`
	ReturnFlight   *FlightOffer `json:"returnFlight,omitempty"`
}
