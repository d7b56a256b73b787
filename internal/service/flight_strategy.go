package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel_booking/internal/gateway"
	"travel_booking/internal/kafka"
	"travel_booking/internal/metrics"
	"travel_booking/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const BookingTypeFlight = "FLIGHT"

// EventRecorder stores a domain event for asynchronous publishing. The
// Postgres outbox repository implements it.
type EventRecorder interface {
	Record(ctx context.Context, topic string, payload json.RawMessage) error
}

// flightBookingPayload is the type-specific payload for FLIGHT bookings.
type flightBookingPayload struct {
	CustomerID string `json:"customerId"`
	FlightID   string `json:"flightId"`
	Passengers int    `json:"passengers"`
}

// FlightBookingStrategy books a flight: confirm the customer exists, then
// drive the payment through initiate and verify. The payment outcome rides
// on the result, so a declined card is a result, not an error.
type FlightBookingStrategy struct {
	payments  *PaymentCoordinator
	customers gateway.CustomerDirectory
	events    EventRecorder
	topic     string
	logger    *zap.Logger
}

func NewFlightBookingStrategy(
	payments *PaymentCoordinator,
	customers gateway.CustomerDirectory,
	events EventRecorder,
	bookingTopic string,
	logger *zap.Logger,
) *FlightBookingStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightBookingStrategy{
		payments:  payments,
		customers: customers,
		events:    events,
		topic:     bookingTopic,
		logger:    logger,
	}
}

func (s *FlightBookingStrategy) Book(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error) {
	payload, err := s.parsePayload(req)
	if err != nil {
		return nil, err
	}

	if s.customers != nil {
		if _, err := s.customers.GetByID(ctx, payload.CustomerID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown customer %q", ErrInvalidInput, payload.CustomerID)
			}
			return nil, fmt.Errorf("customer lookup: %w", err)
		}
	}

	bookingID := uuid.NewString()

	txn, err := s.payments.InitiatePayment(ctx, req.Amount, req.Currency, bookingID)
	if err != nil {
		return nil, err
	}
	if txn.State == models.PaymentFailed {
		metrics.IncBooking(BookingTypeFlight, models.BookingStatusPaymentFailed)
		return &models.BookingResult{
			BookingID: bookingID,
			Status:    models.BookingStatusPaymentFailed,
			Message:   "payment could not be initiated",
			Payment:   txn,
		}, nil
	}

	txn, err = s.payments.VerifyPayment(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	if txn.State != models.PaymentVerified {
		metrics.IncBooking(BookingTypeFlight, models.BookingStatusPaymentFailed)
		return &models.BookingResult{
			BookingID: bookingID,
			Status:    models.BookingStatusPaymentFailed,
			Message:   "payment was not verified",
			Payment:   txn,
		}, nil
	}

	s.recordCompleted(ctx, bookingID, payload, req, txn)

	metrics.IncBooking(BookingTypeFlight, models.BookingStatusConfirmed)
	s.logger.Info("flight booking confirmed",
		zap.String("booking_id", bookingID),
		zap.String("flight_id", payload.FlightID),
		zap.String("transaction_id", txn.ID))

	return &models.BookingResult{
		BookingID: bookingID,
		Status:    models.BookingStatusConfirmed,
		Message:   fmt.Sprintf("flight %s booked", payload.FlightID),
		Payment:   txn,
	}, nil
}

func (s *FlightBookingStrategy) parsePayload(req *models.BookingRequest) (*flightBookingPayload, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}

	var p flightBookingPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed flight payload: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(p.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.FlightID) == "" {
		return nil, fmt.Errorf("%w: flightId is required", ErrInvalidInput)
	}
	if p.Passengers <= 0 {
		p.Passengers = 1
	}
	return &p, nil
}

func (s *FlightBookingStrategy) recordCompleted(ctx context.Context, bookingID string, p *flightBookingPayload, req *models.BookingRequest, txn *models.PaymentTransaction) {
	if s.events == nil || s.topic == "" {
		return
	}
	ev := kafka.BookingCompletedEvent{
		BookingID:     bookingID,
		BookingType:   BookingTypeFlight,
		CustomerID:    p.CustomerID,
		FlightID:      p.FlightID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TransactionID: txn.ID,
		CompletedAt:   time.Now().UTC(),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("marshal booking event", zap.Error(err))
		return
	}
	if err := s.events.Record(ctx, s.topic, b); err != nil {
		s.logger.Warn("record booking event", zap.Error(err))
	}
}
