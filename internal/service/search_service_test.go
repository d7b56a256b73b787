package service

import (
	"context"
	"testing"
	"time"

	"travel_booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOfferSource struct {
	offers []models.FlightOffer
	err    error
	calls  int
}

func (s *stubOfferSource) ListOffers(ctx context.Context, source, destination string, date time.Time) ([]models.FlightOffer, error) {
	s.calls++
	return s.offers, s.err
}

func offer(flightID, airline string, stops int, price float64, dep time.Time, duration string) models.FlightOffer {
	return models.FlightOffer{
		FlightID:      flightID,
		Airline:       airline,
		Source:        "DEL",
		Destination:   "BOM",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(2 * time.Hour),
		Duration:      duration,
		Stops:         stops,
		Price:         price,
		Currency:      "INR",
	}
}

func searchFixture(offers []models.FlightOffer, pageSize int) (*SearchService, *stubOfferSource) {
	src := &stubOfferSource{offers: offers}
	svc := NewSearchService(src, pageSize, nil, 0, nil)
	return svc, src
}

func futureCriteria() *models.SearchCriteria {
	return &models.SearchCriteria{
		Source:      "DEL",
		Destination: "BOM",
		StartDate:   time.Now().UTC().AddDate(0, 0, 7),
	}
}

func TestSearchValidation(t *testing.T) {
	svc, src := searchFixture(nil, 0)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.SearchCriteria)
	}{
		{"blank source", func(c *models.SearchCriteria) { c.Source = " " }},
		{"blank destination", func(c *models.SearchCriteria) { c.Destination = "" }},
		{"too far in the past", func(c *models.SearchCriteria) { c.StartDate = time.Now().UTC().AddDate(0, 0, -3) }},
		{"negative stop count", func(c *models.SearchCriteria) { c.StopCounts = []int{0, -1} }},
		{"bad sort key", func(c *models.SearchCriteria) { c.SortBy = "FARE" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := futureCriteria()
			tc.mutate(c)
			_, err := svc.Search(ctx, c)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// rejected before the collaborator is consulted
	assert.Zero(t, src.calls)
}

func TestSearchAcceptsSameDay(t *testing.T) {
	svc, _ := searchFixture(nil, 0)

	c := futureCriteria()
	c.StartDate = time.Now().UTC()
	_, err := svc.Search(context.Background(), c)
	assert.NoError(t, err)
}

func TestSearchFiltersPartnersAndStops(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	svc, _ := searchFixture([]models.FlightOffer{
		offer("AI202", "Air India", 0, 5000, dep, "2h"),
		offer("6E55", "IndiGo", 1, 4000, dep, "3h"),
		offer("UK910", "Vistara", 2, 4500, dep, "4h"),
		offer("AI605", "Air India", 1, 5500, dep, "2h30m"),
	}, 0)

	c := futureCriteria()
	c.Partners = []string{"Air India", "IndiGo"}
	c.StopCounts = []int{1}

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalResults)
	for _, o := range res.Offers {
		assert.Equal(t, 1, o.Stops)
		assert.Contains(t, []string{"Air India", "IndiGo"}, o.Airline)
	}
}

func TestSearchSortByPriceWithTieBreak(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	svc, _ := searchFixture([]models.FlightOffer{
		offer("UK910", "Vistara", 0, 4000, dep, "2h"),
		offer("AI202", "Air India", 0, 4000, dep, "2h"),
		offer("6E55", "IndiGo", 0, 3500, dep, "2h"),
	}, 0)

	c := futureCriteria()
	c.SortBy = models.SortByPrice

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, res.Offers, 3)

	assert.Equal(t, "6E55", res.Offers[0].FlightID)
	// equal prices fall back to flight identifier ascending
	assert.Equal(t, "AI202", res.Offers[1].FlightID)
	assert.Equal(t, "UK910", res.Offers[2].FlightID)
}

func TestSearchSortByDuration(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	svc, _ := searchFixture([]models.FlightOffer{
		offer("A1", "X", 0, 1, dep, "3h15m"),
		offer("B2", "X", 0, 1, dep, "1h45m"),
		offer("C3", "X", 0, 1, dep, "not-a-duration"),
		offer("D4", "X", 0, 1, dep, "2h 30m"),
	}, 0)

	c := futureCriteria()
	c.SortBy = models.SortByDuration

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, res.Offers, 4)

	assert.Equal(t, "B2", res.Offers[0].FlightID)
	assert.Equal(t, "D4", res.Offers[1].FlightID)
	assert.Equal(t, "A1", res.Offers[2].FlightID)
	// unparsable duration sorts last
	assert.Equal(t, "C3", res.Offers[3].FlightID)
}

func TestSearchSortByStops(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	svc, _ := searchFixture([]models.FlightOffer{
		offer("A1", "X", 2, 1, dep, "2h"),
		offer("B2", "X", 0, 9, dep, "2h"),
		offer("C3", "X", 1, 5, dep, "2h"),
	}, 0)

	c := futureCriteria()
	c.SortBy = models.SortByStops

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)

	stops := make([]int, 0, len(res.Offers))
	for _, o := range res.Offers {
		stops = append(stops, o.Stops)
	}
	assert.Equal(t, []int{0, 1, 2}, stops)
}

func TestSearchPagination(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	offers := make([]models.FlightOffer, 0, 45)
	for i := 0; i < 45; i++ {
		offers = append(offers, offer(fmtFlightID(i), "X", 0, float64(100+i), dep, "2h"))
	}
	svc, _ := searchFixture(offers, 20)

	c := futureCriteria()
	c.Page = 2
	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 45, res.TotalResults)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 2, res.CurrentPage)
	assert.Len(t, res.Offers, 20)

	// page beyond the end clamps to the last valid page
	c.Page = 99
	res, err = svc.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 3, res.CurrentPage)
	assert.Len(t, res.Offers, 5)
}

func TestSearchLeavesCriteriaUntouched(t *testing.T) {
	dep := time.Now().UTC().AddDate(0, 0, 7)
	svc, _ := searchFixture([]models.FlightOffer{
		offer("AI202", "Air India", 0, 5000, dep, "2h"),
	}, 0)

	c := futureCriteria()
	c.SortBy = ""
	c.Page = 0

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentPage)

	// defaulting happens internally, not by writing into the criteria
	assert.Empty(t, c.SortBy)
	assert.Zero(t, c.Page)
}

func TestSearchEmptyResult(t *testing.T) {
	svc, _ := searchFixture(nil, 20)

	res, err := svc.Search(context.Background(), futureCriteria())
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalResults)
	assert.Equal(t, 0, res.CurrentPage)
	assert.Equal(t, 0, res.TotalPages)
	assert.Empty(t, res.Offers)
}

func fmtFlightID(i int) string {
	return string(rune('A'+i/10)) + string(rune('0'+i%10))
}
