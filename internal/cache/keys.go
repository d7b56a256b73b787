package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"travel_booking/internal/models"
)

// Search result pages:
// search:{src}:{dst}:{date}:p={partners}:s={stops}:sort={key}:page={n}
// Partner and stop lists are normalized (sorted, lower-cased) so criteria
// that differ only in list order share a key.
func SearchKey(c *models.SearchCriteria) string {
	src := url.PathEscape(strings.ToUpper(strings.TrimSpace(c.Source)))
	dst := url.PathEscape(strings.ToUpper(strings.TrimSpace(c.Destination)))
	date := c.StartDate.UTC().Format("2006-01-02")

	partners := make([]string, 0, len(c.Partners))
	for _, p := range c.Partners {
		partners = append(partners, strings.ToLower(strings.TrimSpace(p)))
	}
	sort.Strings(partners)

	stops := make([]string, 0, len(c.StopCounts))
	for _, n := range c.StopCounts {
		stops = append(stops, strconv.Itoa(n))
	}
	sort.Strings(stops)

	page := c.Page
	if page < 1 {
		page = 1
	}

	return fmt.Sprintf("search:%s:%s:%s:p=%s:s=%s:sort=%s:page=%d",
		src, dst, date,
		strings.Join(partners, ","),
		strings.Join(stops, ","),
		c.SortBy, page)
}

// Set of cached search keys per route, for invalidation without SCAN.
func SearchKeysSetKey(source, destination string) string {
	src := url.PathEscape(strings.ToUpper(strings.TrimSpace(source)))
	dst := url.PathEscape(strings.ToUpper(strings.TrimSpace(destination)))
	return fmt.Sprintf("search:%s:%s:keys", src, dst)
}
