package handlers

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, fh *FlightHandler, bh *BookingHandler) {
	r.Route("/api/flights", func(r chi.Router) {
		r.Post("/", fh.SubmitFlight)
		r.Get("/search", fh.SearchFlights)
	})
	r.Post("/api/bookings", bh.CreateBooking)
}
