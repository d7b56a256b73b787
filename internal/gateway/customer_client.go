package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type CustomerProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// CustomerDirectory is the customer-profile service, consumed read-only.
// Lookups miss with models.ErrNotFound.
type CustomerDirectory interface {
	GetByID(ctx context.Context, id string) (*CustomerProfile, error)
	GetByUsername(ctx context.Context, username string) (*CustomerProfile, error)
	GetByEmail(ctx context.Context, email string) (*CustomerProfile, error)
	GetByPhone(ctx context.Context, phone string) (*CustomerProfile, error)
}

type HTTPCustomerClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPCustomerClient(baseURL string, timeout time.Duration) *HTTPCustomerClient {
	return &HTTPCustomerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

func (c *HTTPCustomerClient) GetByID(ctx context.Context, id string) (*CustomerProfile, error) {
	var p CustomerProfile
	u := c.baseURL + "/customers/" + url.PathEscape(id)
	if err := doJSON(ctx, c.hc, http.MethodGet, u, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPCustomerClient) GetByUsername(ctx context.Context, username string) (*CustomerProfile, error) {
	return c.lookup(ctx, "username", username)
}

func (c *HTTPCustomerClient) GetByEmail(ctx context.Context, email string) (*CustomerProfile, error) {
	return c.lookup(ctx, "email", email)
}

func (c *HTTPCustomerClient) GetByPhone(ctx context.Context, phone string) (*CustomerProfile, error) {
	return c.lookup(ctx, "phone", phone)
}

func (c *HTTPCustomerClient) lookup(ctx context.Context, field, value string) (*CustomerProfile, error) {
	q := url.Values{}
	q.Set(field, value)

	var p CustomerProfile
	if err := doJSON(ctx, c.hc, http.MethodGet, c.baseURL+"/customers?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
