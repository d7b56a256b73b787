package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel_booking/internal/gateway"
	"travel_booking/internal/models"
	"travel_booking/internal/repository"
	"travel_booking/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeOfferSource projects offers from the record store the way the pricing
// collaborator would, one offer per stored schedule row on the route.
type storeOfferSource struct {
	store *repository.MemoryFlightStore
}

func (s *storeOfferSource) ListOffers(ctx context.Context, source, destination string, date time.Time) ([]models.FlightOffer, error) {
	recs, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	var offers []models.FlightOffer
	for _, rec := range recs {
		if rec.Source != source || rec.Destination != destination {
			continue
		}
		offers = append(offers, models.FlightOffer{
			FlightID:      rec.FlightID,
			Airline:       rec.Partner,
			Source:        rec.Source,
			Destination:   rec.Destination,
			DepartureTime: rec.FlightDate,
			Duration:      "2h10m",
			Stops:         rec.MaximumStops,
			Price:         4999,
			Currency:      "INR",
		})
	}
	return offers, nil
}

type paymentGatewayOK struct{}

func (paymentGatewayOK) Initiate(ctx context.Context, amount float64, currency string) (*gateway.InitiateResult, error) {
	return &gateway.InitiateResult{TransactionID: "txn-1", Status: gateway.StatusInitiated}, nil
}

func (paymentGatewayOK) Verify(ctx context.Context, transactionID string) (string, error) {
	return gateway.StatusVerified, nil
}

func (paymentGatewayOK) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	return gateway.StatusRefunded, nil
}

type singleCustomerDirectory struct{ id string }

func (d singleCustomerDirectory) GetByID(ctx context.Context, id string) (*gateway.CustomerProfile, error) {
	if id == d.id {
		return &gateway.CustomerProfile{ID: id}, nil
	}
	return nil, models.ErrNotFound
}

func (d singleCustomerDirectory) GetByUsername(ctx context.Context, username string) (*gateway.CustomerProfile, error) {
	return nil, models.ErrNotFound
}

func (d singleCustomerDirectory) GetByEmail(ctx context.Context, email string) (*gateway.CustomerProfile, error) {
	return nil, models.ErrNotFound
}

func (d singleCustomerDirectory) GetByPhone(ctx context.Context, phone string) (*gateway.CustomerProfile, error) {
	return nil, models.ErrNotFound
}

func newTestRouter(t *testing.T) (chi.Router, *repository.MemoryFlightStore) {
	t.Helper()

	store := repository.NewMemoryFlightStore()
	upserter := service.NewUpsertService(store, "flight_indexed", nil, nil)
	searcher := service.NewSearchService(&storeOfferSource{store: store}, 20, nil, 0, nil)

	payments := service.NewPaymentCoordinator(paymentGatewayOK{}, nil)
	strategy := service.NewFlightBookingStrategy(payments, singleCustomerDirectory{id: "cust-1"}, store, "booking_completed", nil)
	dispatcher := service.NewBookingDispatcher()
	require.NoError(t, dispatcher.Register(service.BookingTypeFlight, strategy))

	r := chi.NewRouter()
	RegisterRoutes(r, NewFlightHandler(upserter, searcher), NewBookingHandler(dispatcher))
	return r, store
}

func doRequest(t *testing.T, r chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubmitSearchBookFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	flightDate := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")

	submission := map[string]any{
		"flightId":     "AI202",
		"source":       "DEL",
		"destination":  "BOM",
		"flightDate":   flightDate,
		"maximumStops": 0,
		"departner":    "AirIndia",
	}

	// first submission creates
	rec := doRequest(t, r, http.MethodPost, "/api/flights", submission)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID         string `json:"id"`
		IsNewEntry bool   `json:"isNewEntry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsNewEntry)
	assert.NotEmpty(t, created.ID)

	// resubmission with changed mutable fields updates in place
	submission["maximumStops"] = 1
	rec = doRequest(t, r, http.MethodPost, "/api/flights", submission)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		ID           string `json:"id"`
		IsNewEntry   bool   `json:"isNewEntry"`
		MaximumStops int    `json:"maximumStops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.IsNewEntry)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 1, updated.MaximumStops)

	// the indexed flight is searchable on its route
	target := fmt.Sprintf("/api/flights/search?src=DEL&destination=BOM&startDate=%s&sortBy=STOPS", flightDate)
	rec = doRequest(t, r, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page models.SearchResultPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.TotalResults)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, "AI202", page.Offers[0].FlightID)

	// booking the flight confirms through the payment flow
	booking := map[string]any{
		"bookingType": "FLIGHT",
		"amount":      4999,
		"currency":    "INR",
		"payload":     map[string]any{"customerId": "cust-1", "flightId": "AI202"},
	}
	rec = doRequest(t, r, http.MethodPost, "/api/bookings", booking)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.BookingStatusConfirmed, result.Status)
	require.NotNil(t, result.Payment)
	assert.Equal(t, models.PaymentVerified, result.Payment.State)
}

func TestSubmitFlightRejectsBadInput(t *testing.T) {
	r, store := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing flightId", map[string]any{"source": "DEL", "destination": "BOM", "flightDate": "2030-06-01"}},
		{"blank source", map[string]any{"flightId": "AI202", "source": " ", "destination": "BOM", "flightDate": "2030-06-01"}},
		{"bad date", map[string]any{"flightId": "AI202", "source": "DEL", "destination": "BOM", "flightDate": "junk"}},
		{"negative stops", map[string]any{"flightId": "AI202", "source": "DEL", "destination": "BOM", "flightDate": "2030-06-01", "maximumStops": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodPost, "/api/flights", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	recs, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSearchFlightsParamValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name   string
		target string
	}{
		{"missing startDate", "/api/flights/search?src=DEL&destination=BOM"},
		{"bad startDate", "/api/flights/search?src=DEL&destination=BOM&startDate=junk"},
		{"missing src", "/api/flights/search?destination=BOM&startDate=2030-06-01"},
		{"bad sort key", "/api/flights/search?src=DEL&destination=BOM&startDate=2030-06-01&sortBy=FARE"},
		{"bad stops list", "/api/flights/search?src=DEL&destination=BOM&startDate=2030-06-01&maximumStops=0,x"},
		{"bad page", "/api/flights/search?src=DEL&destination=BOM&startDate=2030-06-01&page=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodGet, tc.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSearchFlightsEmptyRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	target := "/api/flights/search?src=DEL&destination=GOI&startDate=" +
		time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	rec := doRequest(t, r, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.SearchResultPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Zero(t, page.TotalResults)
	assert.Zero(t, page.CurrentPage)
	assert.Zero(t, page.TotalPages)
	assert.Empty(t, page.Offers)
}

func TestCreateBookingUnsupportedType(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"bookingType": "CRUISE",
		"amount":      100,
		"currency":    "INR",
		"payload":     map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestCreateBookingUnknownCustomer(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"bookingType": "FLIGHT",
		"amount":      100,
		"currency":    "INR",
		"payload":     map[string]any{"customerId": "cust-404", "flightId": "AI202"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}
