package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"travel_booking/internal/cache"
	"travel_booking/internal/gateway"
	"travel_booking/internal/metrics"
	"travel_booking/internal/models"

	"go.uber.org/zap"
)

const DefaultPageSize = 20

// SearchService filters, ranks and paginates the offer universe for a
// route. It never mutates stored state.
type SearchService struct {
	offers   gateway.OfferSource
	pageSize int
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewSearchService(offers gateway.OfferSource, pageSize int, c cache.Cache, ttl time.Duration, logger *zap.Logger) *SearchService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		offers:   offers,
		pageSize: pageSize,
		cache:    c,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *SearchService) Search(ctx context.Context, c *models.SearchCriteria) (*models.SearchResultPage, error) {
	if err := s.validate(c); err != nil {
		return nil, err
	}

	// defaults land on a copy; the caller's criteria stay untouched
	crit := *c
	if crit.SortBy == "" {
		crit.SortBy = models.SortByPrice
	}
	if crit.Page < 1 {
		crit.Page = 1
	}
	c = &crit

	var cacheKey string
	if s.cache != nil {
		cacheKey = cache.SearchKey(c)
		if b, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var page models.SearchResultPage
			if err := json.Unmarshal(b, &page); err == nil {
				metrics.IncRedisHit()
				return &page, nil
			}
		}
		metrics.IncRedisMiss()
	}

	universe, err := s.offers.ListOffers(ctx, c.Source, c.Destination, c.StartDate)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	filtered := filterOffers(universe, c)
	sortOffers(filtered, c.SortBy)
	page := paginate(filtered, c.Page, s.pageSize)

	metrics.IncSearch(page.TotalResults)

	if s.cache != nil {
		if b, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, cacheKey, b, s.ttl); err != nil {
				s.logger.Warn("cache search page", zap.Error(err))
			}
			setKey := cache.SearchKeysSetKey(c.Source, c.Destination)
			_ = s.cache.SAdd(ctx, setKey, cacheKey)
			_ = s.cache.Expire(ctx, setKey, s.ttl)
		}
	}

	return page, nil
}

func (s *SearchService) validate(c *models.SearchCriteria) error {
	if c == nil {
		return fmt.Errorf("%w: criteria is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: src is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}
	// same-day searches stay valid for the whole day regardless of time-of-day
	earliest := s.now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	if c.StartDate.UTC().Before(earliest) {
		return fmt.Errorf("%w: startDate must not be more than one day in the past", ErrInvalidInput)
	}
	for _, n := range c.StopCounts {
		if n < 0 {
			return fmt.Errorf("%w: stop counts must be >= 0", ErrInvalidInput)
		}
	}
	if c.SortBy != "" && !c.SortBy.Valid() {
		return fmt.Errorf("%w: sortBy must be one of PRICE, TIME, DURATION, STOPS", ErrInvalidInput)
	}
	return nil
}

// filterOffers keeps an offer iff its airline is in the partner list (empty
// list = any) and its stop count is in the stop list (empty list = any).
func filterOffers(offers []models.FlightOffer, c *models.SearchCriteria) []models.FlightOffer {
	partnerSet := make(map[string]struct{}, len(c.Partners))
	for _, p := range c.Partners {
		partnerSet[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	stopSet := make(map[int]struct{}, len(c.StopCounts))
	for _, n := range c.StopCounts {
		stopSet[n] = struct{}{}
	}

	res := make([]models.FlightOffer, 0, len(offers))
	for _, o := range offers {
		if len(partnerSet) > 0 {
			if _, ok := partnerSet[strings.ToLower(o.Airline)]; !ok {
				continue
			}
		}
		if len(stopSet) > 0 {
			if _, ok := stopSet[o.Stops]; !ok {
				continue
			}
		}
		res = append(res, o)
	}
	return res
}

// sortOffers orders ascending by the requested key, ties broken by flight
// identifier so the ranking is deterministic.
func sortOffers(offers []models.FlightOffer, key models.SortKey) {
	less := func(a, b *models.FlightOffer) bool {
		switch key {
		case models.SortByTime:
			if !a.DepartureTime.Equal(b.DepartureTime) {
				return a.DepartureTime.Before(b.DepartureTime)
			}
		case models.SortByDuration:
			da, db := parsedDuration(a.Duration), parsedDuration(b.Duration)
			if da != db {
				return da < db
			}
		case models.SortByStops:
			if a.Stops != b.Stops {
				return a.Stops < b.Stops
			}
		default: // PRICE
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		}
		return a.FlightID < b.FlightID
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return less(&offers[i], &offers[j])
	})
}

// parsedDuration turns "2h 30m" into a sortable magnitude; unparsable
// durations sort last.
func parsedDuration(s string) time.Duration {
	d, err := time.ParseDuration(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if err != nil {
		return time.Duration(1<<63 - 1)
	}
	return d
}

// paginate clamps out-of-range pages to the last valid page. An empty
// result reports page 0 of 0.
func paginate(offers []models.FlightOffer, page, pageSize int) *models.SearchResultPage {
	total := len(offers)
	if total == 0 {
		return &models.SearchResultPage{
			Offers:       []models.FlightOffer{},
			TotalResults: 0,
			CurrentPage:  0,
			TotalPages:   0,
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return &models.SearchResultPage{
		Offers:       offers[start:end],
		TotalResults: total,
		CurrentPage:  page,
		TotalPages:   totalPages,
	}
}
