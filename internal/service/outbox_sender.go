package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel_booking/internal/kafka"
	"travel_booking/internal/metrics"
	"travel_booking/internal/models"
	"travel_booking/internal/repository"

	"go.uber.org/zap"
)

type OutboxSender struct {
	repo          *repository.OutboxRepository
	producer      *kafka.Producer
	pollInterval  time.Duration
	batchSize     int
	retentionDays int
	maxRetries    int
	logger        *zap.Logger

	cleanupEvery time.Duration
}

func NewOutboxSender(
	repo *repository.OutboxRepository,
	producer *kafka.Producer,
	pollInterval time.Duration,
	batchSize int,
	retentionDays int,
	maxRetries int,
	logger *zap.Logger,
) *OutboxSender {
	if maxRetries <= 0 {
		maxRetries = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if retentionDays < 0 {
		retentionDays = 0
	}

	return &OutboxSender{
		repo:          repo,
		producer:      producer,
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		retentionDays: retentionDays,
		maxRetries:    maxRetries,
		logger:        logger,
		// cleanup runs much less often than the send loop
		cleanupEvery: 1 * time.Hour,
	}
}

// Start launches the background drain loop.
func (s *OutboxSender) Start(ctx context.Context) {
	go func() {
		s.logger.Info("outbox sender started")
		defer s.logger.Info("outbox sender stopped")

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		cleanupTicker := time.NewTicker(s.cleanupEvery)
		defer cleanupTicker.Stop()

		s.flushOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.flushOnce(ctx)
			case <-cleanupTicker.C:
				s.cleanupOnce(ctx)
			}
		}
	}()
}

func (s *OutboxSender) flushOnce(ctx context.Context) {
	msgs, err := s.repo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("outbox get pending failed", zap.Error(err))
		return
	}
	if len(msgs) == 0 {
		return
	}

	for _, m := range msgs {
		if err := s.sendOne(m); err != nil {
			// retry_count goes up and the error is stored; the repo flips
			// the row to failed once the limit is reached
			if err2 := s.repo.MarkAsFailed(ctx, m.MessageID, err.Error()); err2 != nil {
				s.logger.Error("outbox mark failed error", zap.Error(err2))
			}
			metrics.IncOutboxRetry()
			if m.RetryCount+1 >= s.maxRetries {
				metrics.IncOutboxFailed()
			}
			continue
		}
		if err := s.repo.MarkAsSent(ctx, m.MessageID); err != nil {
			s.logger.Error("outbox mark sent failed", zap.Error(err))
			continue
		}
		metrics.IncOutboxSent()
	}
}

func (s *OutboxSender) sendOne(m *models.OutboxMessage) error {
	if m == nil {
		return fmt.Errorf("outbox message is nil")
	}
	if m.Topic == "" {
		return fmt.Errorf("outbox topic is empty")
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("outbox payload is empty")
	}

	metrics.ObserveOutboxLagSeconds(time.Since(m.CreatedAt).Seconds())

	start := time.Now()
	defer func() { metrics.ObserveOutboxProcessing(time.Since(start)) }()

	return s.producer.SendEvent(m.Topic, extractEventKey(m.Payload), m.Payload)
}

func (s *OutboxSender) cleanupOnce(ctx context.Context) {
	n, err := s.repo.CleanupOldMessages(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("outbox cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("outbox cleanup", zap.Int("deleted", n))
	}
}

// extractEventKey picks the Kafka partition key out of the payload: the
// flight identifier for index events, the booking id for booking events.
func extractEventKey(payload []byte) string {
	var probe struct {
		FlightID  string `json:"flightId"`
		BookingID string `json:"bookingId"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	if probe.FlightID != "" {
		return probe.FlightID
	}
	return probe.BookingID
}
