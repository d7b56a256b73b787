package service

import (
	"context"
	"fmt"
	"strings"

	"travel_booking/internal/models"
)

var ErrUnsupportedBookingType = models.ErrUnsupportedBookingType

// BookingStrategy implements the booking workflow for one booking type.
type BookingStrategy interface {
	Book(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error)
}

// BookingDispatcher is a routing table from booking type to strategy.
// Register runs at startup only; once serving begins the table is read-only
// and Dispatch needs no locking.
type BookingDispatcher struct {
	strategies map[string]BookingStrategy
}

func NewBookingDispatcher() *BookingDispatcher {
	return &BookingDispatcher{strategies: make(map[string]BookingStrategy)}
}

// Register wires one strategy per booking type. A duplicate type is a
// configuration error and fails startup, not the first request.
func (d *BookingDispatcher) Register(bookingType string, s BookingStrategy) error {
	bt := normalizeBookingType(bookingType)
	if bt == "" {
		return fmt.Errorf("booking type is empty")
	}
	if s == nil {
		return fmt.Errorf("strategy for %q is nil", bt)
	}
	if _, exists := d.strategies[bt]; exists {
		return fmt.Errorf("strategy for %q already registered", bt)
	}
	d.strategies[bt] = s
	return nil
}

func (d *BookingDispatcher) Dispatch(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	s, ok := d.strategies[normalizeBookingType(req.BookingType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBookingType, req.BookingType)
	}
	return s.Book(ctx, req)
}

func normalizeBookingType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
