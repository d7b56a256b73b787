package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"travel_booking/internal/gateway"
	"travel_booking/internal/metrics"
	"travel_booking/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidState   = models.ErrInvalidState
	ErrAmountExceeded = models.ErrAmountExceeded
)

// PaymentCoordinator drives a payment through initiate -> verify/fail ->
// optional refund. It keeps an in-memory view of each transaction but the
// gateway stays authoritative: a verify answer overwrites the local state.
//
// The coordinator never retries gateway calls on its own; callers check the
// returned state and re-issue, which keeps retries safe without
// idempotency keys.
type PaymentCoordinator struct {
	gw     gateway.PaymentGateway
	mu     sync.RWMutex
	txns   map[string]*models.PaymentTransaction
	locks  keyedMutex
	now    func() time.Time
	logger *zap.Logger
}

func NewPaymentCoordinator(gw gateway.PaymentGateway, logger *zap.Logger) *PaymentCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentCoordinator{
		gw:     gw,
		txns:   make(map[string]*models.PaymentTransaction),
		now:    time.Now,
		logger: logger,
	}
}

// InitiatePayment always hands back a transaction to inspect: a gateway
// error yields a terminal FAILED transaction instead of an error return.
func (c *PaymentCoordinator) InitiatePayment(ctx context.Context, amount float64, currency, correlation string) (*models.PaymentTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}

	now := c.now().UTC()
	txn := &models.PaymentTransaction{
		Amount:      amount,
		Currency:    currency,
		Correlation: correlation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := c.gw.Initiate(ctx, amount, currency)
	if err != nil {
		// no gateway id exists, assign a local one so the failure is addressable
		txn.ID = uuid.NewString()
		txn.State = models.PaymentFailed
		c.logger.Warn("payment initiate failed",
			zap.String("transaction_id", txn.ID),
			zap.String("correlation", correlation),
			zap.Error(err))
	} else {
		txn.ID = res.TransactionID
		txn.State = models.PaymentInitiated
	}

	metrics.IncPaymentState(string(txn.State))

	c.mu.Lock()
	c.txns[txn.ID] = txn
	c.mu.Unlock()

	return c.snapshot(txn.ID), nil
}

// VerifyPayment is idempotent: once a transaction is terminal, repeated
// calls return that state without touching the gateway again. Only a
// definitive gateway answer moves the state; a still-pending one leaves
// the transaction INITIATED.
func (c *PaymentCoordinator) VerifyPayment(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	unlock := c.locks.lock(transactionID)
	defer unlock()

	txn := c.get(transactionID)
	if txn == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, models.ErrNotFound)
	}
	if txn.State.Terminal() {
		return c.snapshot(transactionID), nil
	}

	status, err := c.gw.Verify(ctx, transactionID)
	if err != nil {
		// unavailable/timeout: state stays INITIATED, caller re-verifies
		if errors.Is(err, models.ErrGatewayUnavailable) || errors.Is(err, models.ErrTimeout) {
			return nil, fmt.Errorf("verify payment: %w", err)
		}
		c.setState(transactionID, models.PaymentFailed)
		return c.snapshot(transactionID), nil
	}

	switch {
	case strings.EqualFold(status, gateway.StatusVerified):
		c.setState(transactionID, models.PaymentVerified)
	case strings.EqualFold(status, gateway.StatusInitiated):
		// still processing on the gateway side; the transaction stays
		// INITIATED and a later verify consults the gateway again
	default:
		c.setState(transactionID, models.PaymentFailed)
	}

	return c.snapshot(transactionID), nil
}

// RefundPayment is only legal on a VERIFIED transaction and for at most the
// original amount.
func (c *PaymentCoordinator) RefundPayment(ctx context.Context, transactionID string, amount float64) (*models.PaymentTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrInvalidInput)
	}

	unlock := c.locks.lock(transactionID)
	defer unlock()

	txn := c.get(transactionID)
	if txn == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, models.ErrNotFound)
	}
	if txn.State != models.PaymentVerified {
		return nil, fmt.Errorf("%w: refund requires VERIFIED, transaction is %s", ErrInvalidState, txn.State)
	}
	if amount > txn.Amount {
		return nil, fmt.Errorf("%w: %.2f > %.2f", ErrAmountExceeded, amount, txn.Amount)
	}

	if _, err := c.gw.Refund(ctx, transactionID, amount); err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}

	c.mu.Lock()
	txn = c.txns[transactionID]
	txn.State = models.PaymentRefunded
	txn.RefundedAmount = amount
	txn.UpdatedAt = c.now().UTC()
	c.mu.Unlock()

	metrics.IncPaymentState(string(models.PaymentRefunded))
	c.logger.Info("payment refunded",
		zap.String("transaction_id", transactionID),
		zap.Float64("amount", amount))

	return c.snapshot(transactionID), nil
}

// GetTransaction returns the coordinator's current view.
func (c *PaymentCoordinator) GetTransaction(transactionID string) (*models.PaymentTransaction, error) {
	if t := c.snapshot(transactionID); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("transaction %s: %w", transactionID, models.ErrNotFound)
}

func (c *PaymentCoordinator) get(id string) *models.PaymentTransaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.txns[id]
}

func (c *PaymentCoordinator) snapshot(id string) *models.PaymentTransaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	txn, ok := c.txns[id]
	if !ok {
		return nil
	}
	cp := *txn
	return &cp
}

func (c *PaymentCoordinator) setState(id string, state models.PaymentState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	txn, ok := c.txns[id]
	if !ok {
		return
	}
	txn.State = state
	txn.UpdatedAt = c.now().UTC()
	metrics.IncPaymentState(string(state))
}
