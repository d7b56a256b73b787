package handlers

import (
	"context"
	"net/http"

	"travel_booking/internal/models"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error)
}

type BookingHandler struct {
	dispatcher Dispatcher
}

func NewBookingHandler(dispatcher Dispatcher) *BookingHandler {
	return &BookingHandler{dispatcher: dispatcher}
}

// POST /api/bookings
// 200: booking result (confirmed or payment_failed, inspect "status")
// 400: invalid input
// 404: no strategy for the booking type
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
