package models

import "time"

type SortKey string

const (
	SortByPrice    SortKey = "PRICE"
	SortByTime     SortKey = "TIME"
	SortByDuration SortKey = "DURATION"
	SortByStops    SortKey = "STOPS"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByPrice, SortByTime, SortByDuration, SortByStops:
		return true
	}
	return false
}

// SearchCriteria describes one flight search. Empty Partners/StopCounts
// means "any". Page is 1-based; out-of-range pages clamp to the last one.
type SearchCriteria struct {
	Source      string    `json:"src"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	Partners    []string  `json:"departner,omitempty"`
	StopCounts  []int     `json:"maximumStops,omitempty"`
	SortBy      SortKey   `json:"sortBy"`
	Page        int       `json:"page"`
}

// SearchResultPage is one page of ranked offers. When TotalResults is zero
// both CurrentPage and TotalPages are zero.
type SearchResultPage struct {
	Offers       []FlightOffer `json:"offers"`
	TotalResults int           `json:"totalResults"`
	CurrentPage  int           `json:"currentPage"`
	TotalPages   int           `json:"totalPages"`
}
