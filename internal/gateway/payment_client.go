package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway-side payment states.
const (
	StatusInitiated = "initiated"
	StatusVerified  = "verified"
	StatusDeclined  = "declined"
	StatusRefunded  = "refunded"
)

type InitiateResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// PaymentGateway is the external payment collaborator. The gateway owns the
// authoritative transaction state; Verify answers win on disagreement.
type PaymentGateway interface {
	Initiate(ctx context.Context, amount float64, currency string) (*InitiateResult, error)
	Verify(ctx context.Context, transactionID string) (string, error)
	Refund(ctx context.Context, transactionID string, amount float64) (string, error)
}

type HTTPPaymentGateway struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPPaymentGateway(baseURL string, timeout time.Duration) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

func (g *HTTPPaymentGateway) Initiate(ctx context.Context, amount float64, currency string) (*InitiateResult, error) {
	req := map[string]any{"amount": amount, "currency": currency}

	var res InitiateResult
	err := doJSON(ctx, g.hc, http.MethodPost, g.baseURL+"/payments", req, &res)
	if err != nil {
		return nil, err
	}
	if res.TransactionID == "" {
		return nil, fmt.Errorf("gateway returned no transaction id")
	}
	return &res, nil
}

func (g *HTTPPaymentGateway) Verify(ctx context.Context, transactionID string) (string, error) {
	var res struct {
		Status string `json:"status"`
	}
	u := g.baseURL + "/payments/" + url.PathEscape(transactionID)
	if err := doJSON(ctx, g.hc, http.MethodGet, u, nil, &res); err != nil {
		if IsRejection(err) {
			return StatusDeclined, nil
		}
		return "", err
	}
	return res.Status, nil
}

func (g *HTTPPaymentGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	req := map[string]any{"amount": amount}

	var res struct {
		Status string `json:"status"`
	}
	u := g.baseURL + "/payments/" + url.PathEscape(transactionID) + "/refunds"
	if err := doJSON(ctx, g.hc, http.MethodPost, u, req, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}
