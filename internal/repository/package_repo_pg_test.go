package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery_Defaults(t *testing.T) {
	query, _, err := buildSearchQuery(TripFilter{Today: time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "travel_packages"`)
	assert.Contains(t, query, `"is_visible" IS TRUE`)
	assert.Contains(t, query, `"end_date" >=`)
	assert.Contains(t, query, `ORDER BY "start_date" ASC`)
}

func TestBuildSearchQuery_Filters(t *testing.T) {
	query, args, err := buildSearchQuery(TripFilter{
		Search:         "rome",
		Category:       "city",
		DiscountedOnly: true,
		Sort:           SortByPriceDesc,
		IncludeEnded:   true,
		IncludeHidden:  true,
		Today:          time.Now(),
	})
	require.NoError(t, err)

	// обе колонки есть в SELECT, поэтому проверяем именно условия WHERE
	assert.NotContains(t, query, `"is_visible" IS TRUE`)
	assert.NotContains(t, query, `"end_date" >=`)
	assert.Contains(t, query, `"name" ILIKE`)
	assert.Contains(t, query, `"package_type" =`)
	assert.Contains(t, query, `"discounted_price_cents" IS NOT NULL`)
	assert.Contains(t, query, `ORDER BY CASE WHEN "discounted_price_cents" IS NOT NULL AND "discount_end_date" >= `)
	assert.Contains(t, query, `ELSE "base_price_cents" END DESC`)
	assert.Contains(t, args, "%rome%")
	assert.Contains(t, args, "city")
}

func TestBuildSearchQuery_Sorts(t *testing.T) {
	today := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		sort TripSort
		want string
	}{
		{SortByDate, `ORDER BY "start_date" ASC, "id" ASC`},
		{SortByDateDesc, `ORDER BY "start_date" DESC, "id" ASC`},
		{SortByRoomsAsc, `ORDER BY "available_rooms" ASC, "id" ASC`},
		{SortByRoomsDesc, `ORDER BY "available_rooms" DESC, "id" ASC`},
		{SortByName, `ORDER BY "name" ASC, "id" ASC`},
		{SortByPriceAsc, `ELSE "base_price_cents" END ASC, "id" ASC`},
	}
	for _, tc := range cases {
		t.Run(string(tc.sort), func(t *testing.T) {
			query, _, err := buildSearchQuery(TripFilter{Sort: tc.sort, Today: today})
			require.NoError(t, err)
			assert.Contains(t, query, tc.want)
		})
	}
}

func TestBuildSearchQuery_PriceSortBindsToday(t *testing.T) {
	today := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)

	query, args, err := buildSearchQuery(TripFilter{Sort: SortByPriceAsc, Today: today, IncludeHidden: true, IncludeEnded: true})
	require.NoError(t, err)

	assert.Contains(t, query, `"discount_end_date" >= $`)
	// booking_deadline в WHERE и скидка в ORDER BY
	assert.Len(t, args, 2)
	for _, a := range args {
		bound, ok := a.(time.Time)
		require.True(t, ok)
		assert.True(t, bound.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	}
}
