package repository

import (
	"context"
	"encoding/json"
	"sync"

	"travel_booking/internal/models"
)

// MemoryFlightStore keeps flight records in a map. It backs tests and local
// runs without Postgres; events that would go to the outbox table are
// appended to Events instead.
type MemoryFlightStore struct {
	mu      sync.RWMutex
	records map[string]*models.FlightRecord
	events  []*models.OutboxMessage
}

func NewMemoryFlightStore() *MemoryFlightStore {
	return &MemoryFlightStore{records: make(map[string]*models.FlightRecord)}
}

func (s *MemoryFlightStore) Put(ctx context.Context, rec *models.FlightRecord, event *models.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return storageErr("put flight", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.ID] = &cp
	if event != nil {
		s.events = append(s.events, event)
	}
	return nil
}

func (s *MemoryFlightStore) GetByID(ctx context.Context, id string) (*models.FlightRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get flight", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryFlightStore) FindByFlightID(ctx context.Context, flightID string) ([]*models.FlightRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("find flights", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*models.FlightRecord
	for _, rec := range s.records {
		if rec.FlightID == flightID {
			cp := *rec
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *MemoryFlightStore) ExistsByFlightID(ctx context.Context, flightID string) (bool, error) {
	recs, err := s.FindByFlightID(ctx, flightID)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func (s *MemoryFlightStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete flight", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryFlightStore) All(ctx context.Context) ([]*models.FlightRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("all flights", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.FlightRecord, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		res = append(res, &cp)
	}
	return res, nil
}

// Events returns recorded events in insertion order.
func (s *MemoryFlightStore) Events() []*models.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.OutboxMessage(nil), s.events...)
}

// Record lets the memory store double as an event recorder in tests.
func (s *MemoryFlightStore) Record(ctx context.Context, topic string, payload json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return storageErr("record event", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, &models.OutboxMessage{Topic: topic, Payload: payload})
	return nil
}
