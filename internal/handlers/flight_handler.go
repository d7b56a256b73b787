package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travel_booking/internal/models"
)

// Upserter and Searcher describe the service-layer methods the flight
// handlers need.
type Upserter interface {
	Upsert(ctx context.Context, sub *models.FlightSubmission) (*models.UpsertResult, error)
}

type Searcher interface {
	Search(ctx context.Context, c *models.SearchCriteria) (*models.SearchResultPage, error)
}

type FlightHandler struct {
	upserter Upserter
	searcher Searcher
}

func NewFlightHandler(upserter Upserter, searcher Searcher) *FlightHandler {
	return &FlightHandler{
		upserter: upserter,
		searcher: searcher,
	}
}

type flightSubmissionRequest struct {
	FlightID      string          `json:"flightId"`
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	FlightDate    string          `json:"flightDate"`
	MaximumStops  int             `json:"maximumStops"`
	Partner       string          `json:"departner"`
	SeatStructure json.RawMessage `json:"seatStructure"`
}

type flightSubmissionResponse struct {
	ID            string          `json:"id"`
	FlightID      string          `json:"flightId"`
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	FlightDate    string          `json:"flightDate"`
	MaximumStops  int             `json:"maximumStops"`
	Partner       string          `json:"departner,omitempty"`
	SeatStructure json.RawMessage `json:"seatStructure,omitempty"`
	Message       string          `json:"message"`
	IsNewEntry    bool            `json:"isNewEntry"`
}

// POST /api/flights
// 201: new record indexed
// 200: existing record updated
// 400: invalid input
func (h *FlightHandler) SubmitFlight(w http.ResponseWriter, r *http.Request) {
	var req flightSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	date, err := parseDate(req.FlightDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flightDate, expected YYYY-MM-DD or RFC3339")
		return
	}

	res, err := h.upserter.Upsert(r.Context(), &models.FlightSubmission{
		FlightID:      strings.TrimSpace(req.FlightID),
		Source:        strings.TrimSpace(req.Source),
		Destination:   strings.TrimSpace(req.Destination),
		FlightDate:    date,
		MaximumStops:  req.MaximumStops,
		Partner:       strings.TrimSpace(req.Partner),
		SeatStructure: req.SeatStructure,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.IsNewEntry {
		status = http.StatusCreated
	}

	rec := res.Record
	writeJSON(w, status, flightSubmissionResponse{
		ID:            rec.ID,
		FlightID:      rec.FlightID,
		Source:        rec.Source,
		Destination:   rec.Destination,
		FlightDate:    rec.FlightDate.UTC().Format("2006-01-02"),
		MaximumStops:  rec.MaximumStops,
		Partner:       rec.Partner,
		SeatStructure: rec.SeatStructure,
		Message:       res.Message,
		IsNewEntry:    res.IsNewEntry,
	})
}

// GET /api/flights/search?src=&destination=&startDate=&departner=&maximumStops=&sortBy=&page=
// 200: { "offers": [...], "totalResults": n, "currentPage": p, "totalPages": t }
// 400: invalid params
func (h *FlightHandler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	startRaw := strings.TrimSpace(q.Get("startDate"))
	if startRaw == "" {
		writeError(w, http.StatusBadRequest, "startDate is required")
		return
	}
	startDate, err := parseDate(startRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD or RFC3339")
		return
	}

	stops, err := parseIntList(q.Get("maximumStops"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "maximumStops must be a comma-separated list of integers")
		return
	}

	page := 1
	if pageRaw := strings.TrimSpace(q.Get("page")); pageRaw != "" {
		n, err := strconv.Atoi(pageRaw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	sortBy := models.SortKey(strings.ToUpper(strings.TrimSpace(q.Get("sortBy"))))
	if sortBy == "" {
		sortBy = models.SortByPrice
	}

	res, err := h.searcher.Search(r.Context(), &models.SearchCriteria{
		Source:      strings.TrimSpace(q.Get("src")),
		Destination: strings.TrimSpace(q.Get("destination")),
		StartDate:   startDate,
		Partners:    parseList(q.Get("departner")),
		StopCounts:  stops,
		SortBy:      sortBy,
		Page:        page,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func parseIntList(s string) ([]int, error) {
	parts := parseList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	res := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}
