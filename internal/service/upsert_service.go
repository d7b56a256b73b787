package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"travel_booking/internal/cache"
	"travel_booking/internal/kafka"
	"travel_booking/internal/metrics"
	"travel_booking/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinels re-exported for handler error switches.
var (
	ErrInvalidInput = models.ErrInvalidInput
	ErrTimeout      = models.ErrTimeout
)

// FlightStore is the durable flight-record store the upserter and tests run
// against. The Postgres implementation lives in internal/repository.
type FlightStore interface {
	Put(ctx context.Context, rec *models.FlightRecord, event *models.OutboxMessage) error
	GetByID(ctx context.Context, id string) (*models.FlightRecord, error)
	FindByFlightID(ctx context.Context, flightID string) ([]*models.FlightRecord, error)
	ExistsByFlightID(ctx context.Context, flightID string) (bool, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]*models.FlightRecord, error)
}

// UpsertService decides insert vs update for flight-data submissions keyed
// by (flight id, source, destination, flight date).
type UpsertService struct {
	store  FlightStore
	topic  string
	cache  cache.Cache
	keys   keyedMutex
	now    func() time.Time
	logger *zap.Logger
}

func NewUpsertService(store FlightStore, flightTopic string, c cache.Cache, logger *zap.Logger) *UpsertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpsertService{
		store:  store,
		topic:  flightTopic,
		cache:  c,
		now:    time.Now,
		logger: logger,
	}
}

// Upsert indexes one submission. Resubmitting the same natural key updates
// the existing record in place and keeps its record id; only the mutable
// fields (maximum stops, partner, seat structure) are replaced.
func (s *UpsertService) Upsert(ctx context.Context, sub *models.FlightSubmission) (*models.UpsertResult, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	// Submissions for the same natural key serialize here; the
	// find-then-put below is a check-then-act sequence.
	unlock := s.keys.lock(sub.NaturalKey())
	defer unlock()

	existing, err := s.store.FindByFlightID(ctx, sub.FlightID)
	if err != nil {
		return nil, fmt.Errorf("find by flight id: %w", err)
	}

	var target *models.FlightRecord
	for _, rec := range existing {
		if sub.Matches(rec) {
			target = rec
			break
		}
	}

	now := s.now().UTC()
	isNew := target == nil

	if isNew {
		target = &models.FlightRecord{
			ID:            uuid.NewString(),
			FlightID:      sub.FlightID,
			Source:        sub.Source,
			Destination:   sub.Destination,
			FlightDate:    sub.FlightDate,
			MaximumStops:  sub.MaximumStops,
			Partner:       sub.Partner,
			SeatStructure: sub.SeatStructure,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	} else {
		target.MaximumStops = sub.MaximumStops
		target.Partner = sub.Partner
		target.SeatStructure = sub.SeatStructure
		target.UpdatedAt = now
	}

	event, err := s.indexedEvent(target, isNew)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, target, event); err != nil {
		return nil, fmt.Errorf("put flight record: %w", err)
	}

	result := &models.UpsertResult{
		Record:     target,
		IsNewEntry: isNew,
	}
	if isNew {
		result.Message = fmt.Sprintf("flight %s added", target.FlightID)
		metrics.IncFlightIndexed("added")
	} else {
		result.Message = fmt.Sprintf("flight %s updated", target.FlightID)
		metrics.IncFlightIndexed("updated")
	}

	s.invalidateSearches(ctx, target.Source, target.Destination)

	s.logger.Info("flight indexed",
		zap.String("record_id", target.ID),
		zap.String("flight_id", target.FlightID),
		zap.Bool("is_new", isNew))

	return result, nil
}

// invalidateSearches drops cached result pages for the route. Cache errors
// are logged and ignored.
func (s *UpsertService) invalidateSearches(ctx context.Context, source, destination string) {
	if s.cache == nil {
		return
	}
	setKey := cache.SearchKeysSetKey(source, destination)
	keys, err := s.cache.SMembers(ctx, setKey)
	if err != nil {
		s.logger.Warn("search cache invalidation", zap.Error(err))
		return
	}
	if err := s.cache.Del(ctx, append(keys, setKey)...); err != nil {
		s.logger.Warn("search cache invalidation", zap.Error(err))
	}
}

func (s *UpsertService) indexedEvent(rec *models.FlightRecord, isNew bool) (*models.OutboxMessage, error) {
	if s.topic == "" {
		return nil, nil
	}
	payload, err := json.Marshal(kafka.NewFlightIndexedEvent(rec, isNew))
	if err != nil {
		return nil, fmt.Errorf("marshal flight indexed event: %w", err)
	}
	return &models.OutboxMessage{Topic: s.topic, Payload: payload}, nil
}

func validateSubmission(sub *models.FlightSubmission) error {
	if sub == nil {
		return fmt.Errorf("%w: submission is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(sub.FlightID) == "" {
		return fmt.Errorf("%w: flightId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(sub.Source) == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidInput)
	}
	if strings.TrimSpace(sub.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if sub.FlightDate.IsZero() {
		return fmt.Errorf("%w: flightDate is required", ErrInvalidInput)
	}
	if sub.MaximumStops < 0 {
		return fmt.Errorf("%w: maximumStops must be >= 0", ErrInvalidInput)
	}
	return nil
}
