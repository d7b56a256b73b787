package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"travel_booking/internal/gateway"
	"travel_booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaymentGateway struct {
	initErr      error
	verifyStatus string
	verifyErr    error
	refundErr    error

	initiateCalls int
	verifyCalls   int
	refundCalls   int
}

func (g *stubPaymentGateway) Initiate(ctx context.Context, amount float64, currency string) (*gateway.InitiateResult, error) {
	g.initiateCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.InitiateResult{
		TransactionID: fmt.Sprintf("txn-%d", g.initiateCalls),
		Status:        gateway.StatusInitiated,
	}, nil
}

func (g *stubPaymentGateway) Verify(ctx context.Context, transactionID string) (string, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return "", g.verifyErr
	}
	if g.verifyStatus == "" {
		return gateway.StatusVerified, nil
	}
	return g.verifyStatus, nil
}

func (g *stubPaymentGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	g.refundCalls++
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return gateway.StatusRefunded, nil
}

func TestInitiatePayment(t *testing.T) {
	gw := &stubPaymentGateway{}
	c := NewPaymentCoordinator(gw, nil)

	txn, err := c.InitiatePayment(context.Background(), 100, "INR", "booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, txn.State)
	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, "booking-1", txn.Correlation)
}

func TestInitiatePaymentGatewayErrorYieldsFailedTransaction(t *testing.T) {
	gw := &stubPaymentGateway{initErr: models.ErrGatewayUnavailable}
	c := NewPaymentCoordinator(gw, nil)

	txn, err := c.InitiatePayment(context.Background(), 100, "INR", "booking-1")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, models.PaymentFailed, txn.State)
	assert.NotEmpty(t, txn.ID)
}

func TestInitiatePaymentValidation(t *testing.T) {
	c := NewPaymentCoordinator(&stubPaymentGateway{}, nil)

	_, err := c.InitiatePayment(context.Background(), 0, "INR", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.InitiatePayment(context.Background(), 10, " ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	gw := &stubPaymentGateway{}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)

	verified, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, verified.State)
	assert.Equal(t, 1, gw.verifyCalls)

	// terminal state answers locally, no second gateway call
	again, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, again.State)
	assert.Equal(t, 1, gw.verifyCalls)
}

func TestVerifyPaymentDeclined(t *testing.T) {
	gw := &stubPaymentGateway{verifyStatus: gateway.StatusDeclined}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)

	res, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, res.State)
}

func TestVerifyPaymentGatewayUnavailableLeavesStateOpen(t *testing.T) {
	gw := &stubPaymentGateway{verifyErr: models.ErrGatewayUnavailable}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)

	_, err = c.VerifyPayment(ctx, txn.ID)
	assert.ErrorIs(t, err, models.ErrGatewayUnavailable)

	// still INITIATED, a later verify can succeed
	gw.verifyErr = nil
	res, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, res.State)
}

func TestVerifyPaymentPendingGatewayLeavesStateOpen(t *testing.T) {
	gw := &stubPaymentGateway{verifyStatus: gateway.StatusInitiated}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)

	// the gateway has not settled yet, the transaction must not go terminal
	pending, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, pending.State)

	// once the gateway settles, the next verify picks the answer up
	gw.verifyStatus = gateway.StatusVerified
	res, err := c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, res.State)
	assert.Equal(t, 2, gw.verifyCalls)
}

func TestVerifyPaymentUnknownTransaction(t *testing.T) {
	c := NewPaymentCoordinator(&stubPaymentGateway{}, nil)

	_, err := c.VerifyPayment(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRefundRequiresVerifiedState(t *testing.T) {
	gw := &stubPaymentGateway{}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)

	// INITIATED -> refund is illegal
	_, err = c.RefundPayment(ctx, txn.ID, 50)
	assert.ErrorIs(t, err, ErrInvalidState)

	// FAILED -> refund is illegal
	failed, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)
	gw.verifyStatus = gateway.StatusDeclined
	_, err = c.VerifyPayment(ctx, failed.ID)
	require.NoError(t, err)
	_, err = c.RefundPayment(ctx, failed.ID, 50)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Zero(t, gw.refundCalls)
}

func TestRefundHappyPathAndAmountCheck(t *testing.T) {
	gw := &stubPaymentGateway{}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)
	_, err = c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)

	// more than the original amount is rejected, state unchanged
	_, err = c.RefundPayment(ctx, txn.ID, 100.01)
	assert.ErrorIs(t, err, ErrAmountExceeded)
	cur, err := c.GetTransaction(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, cur.State)

	refunded, err := c.RefundPayment(ctx, txn.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.State)
	assert.Equal(t, 100.0, refunded.RefundedAmount)

	// REFUNDED is terminal
	_, err = c.RefundPayment(ctx, txn.ID, 10)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRefundGatewayErrorLeavesStateVerified(t *testing.T) {
	gw := &stubPaymentGateway{refundErr: errors.New("boom")}
	c := NewPaymentCoordinator(gw, nil)
	ctx := context.Background()

	txn, err := c.InitiatePayment(ctx, 100, "INR", "")
	require.NoError(t, err)
	_, err = c.VerifyPayment(ctx, txn.ID)
	require.NoError(t, err)

	_, err = c.RefundPayment(ctx, txn.ID, 50)
	require.Error(t, err)

	cur, err := c.GetTransaction(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, cur.State)
}
