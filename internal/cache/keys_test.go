package cache

import (
	"testing"
	"time"

	"travel_booking/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSearchKeyNormalizesListOrder(t *testing.T) {
	date := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	a := SearchKey(&models.SearchCriteria{
		Source:      "del",
		Destination: "BOM",
		StartDate:   date,
		Partners:    []string{"AirIndia", "indigo"},
		StopCounts:  []int{1, 0},
		SortBy:      models.SortByPrice,
		Page:        1,
	})
	b := SearchKey(&models.SearchCriteria{
		Source:      "DEL",
		Destination: "bom",
		StartDate:   date,
		Partners:    []string{"Indigo", " airindia "},
		StopCounts:  []int{0, 1},
		SortBy:      models.SortByPrice,
		Page:        1,
	})

	assert.Equal(t, a, b)
	assert.Equal(t, "search:DEL:BOM:2030-06-01:p=airindia,indigo:s=0,1:sort=PRICE:page=1", a)
}

func TestSearchKeyVariesByCriteria(t *testing.T) {
	date := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	base := models.SearchCriteria{
		Source:      "DEL",
		Destination: "BOM",
		StartDate:   date,
		SortBy:      models.SortByPrice,
		Page:        1,
	}

	byStops := base
	byStops.SortBy = models.SortByStops
	page2 := base
	page2.Page = 2

	assert.NotEqual(t, SearchKey(&base), SearchKey(&byStops))
	assert.NotEqual(t, SearchKey(&base), SearchKey(&page2))
}

func TestSearchKeysSetKey(t *testing.T) {
	assert.Equal(t, "search:DEL:BOM:keys", SearchKeysSetKey(" del ", "bom"))
}
