package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel_booking/internal/models"
)

// OfferSource is the pricing/availability collaborator: the candidate offer
// universe for a route and date.
type OfferSource interface {
	ListOffers(ctx context.Context, source, destination string, date time.Time) ([]models.FlightOffer, error)
}

type HTTPPricingClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPPricingClient(baseURL string, timeout time.Duration) *HTTPPricingClient {
	return &HTTPPricingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

func (c *HTTPPricingClient) ListOffers(ctx context.Context, source, destination string, date time.Time) ([]models.FlightOffer, error) {
	q := url.Values{}
	q.Set("source", source)
	q.Set("destination", destination)
	q.Set("date", date.UTC().Format("2006-01-02"))

	var res struct {
		Offers []models.FlightOffer `json:"offers"`
	}
	if err := doJSON(ctx, c.hc, http.MethodGet, c.baseURL+"/offers?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return res.Offers, nil
}
