package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var ref = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestBuildHistogram(t *testing.T) {
	items := []Datum{
		{CreatedAt: at(2025, time.March, 1), Fields: map[string]any{"total": decimal.RequireFromString("10.10")}},
		{CreatedAt: at(2025, time.March, 14), Fields: map[string]any{"total": decimal.RequireFromString("20.20")}},
		{CreatedAt: at(2024, time.December, 31), Fields: map[string]any{"total": 5}},
		{CreatedAt: at(2024, time.October, 2), Fields: map[string]any{"total": "n/a"}},
		{CreatedAt: at(2024, time.September, 30), Fields: map[string]any{"total": 99}},
		{CreatedAt: at(2024, time.August, 1)},
		{CreatedAt: at(2025, time.April, 1), Fields: map[string]any{"total": 7}},
		{},
	}

	cases := []struct {
		name   string
		length int
		items  []Datum
		field  string
		want   []float64
	}{
		{"empty", 6, nil, "", []float64{0, 0, 0, 0, 0, 0}},
		{"single this month", 6, items[:1], "", []float64{0, 0, 0, 0, 0, 1}},
		{"single this month sum", 6, items[:1], "total", []float64{0, 0, 0, 0, 0, 10.1}},
		{"counts across year boundary", 6, items, "", []float64{1, 0, 1, 0, 0, 2}},
		{"sums default non numeric to zero", 6, items, "total", []float64{0, 0, 5, 0, 0, 30.3}},
		{"missing field sums to zero", 3, items[:2], "discount", []float64{0, 0, 0}},
		{"seven months back is dropped", 6, items[5:6], "", []float64{0, 0, 0, 0, 0, 0}},
		{"twelve month window", 12, items, "", []float64{0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 2}},
		{"zero length", 0, items, "", []float64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildHistogram(tc.length, tc.items, ref, tc.field))
		})
	}
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 5000.0, PercentChange(50, 0))
	assert.Equal(t, 50.0, PercentChange(150, 100))
	assert.Equal(t, -50.0, PercentChange(100, 200))
	assert.Equal(t, 33.0, PercentChange(4, 3))
	assert.Equal(t, 0.0, PercentChange(0, 0))
}

func TestCategoryDistribution(t *testing.T) {
	shares := CategoryDistribution([]CategoryCount{{"Shirts", 2}, {"Trousers", 1}, {"Hats", 0}}, 3)
	assert.Equal(t, []CategoryShare{{"Shirts", 67}, {"Trousers", 33}, {"Hats", 0}}, shares)

	// not normalised when products sit outside every category
	shares = CategoryDistribution([]CategoryCount{{"Shirts", 1}}, 4)
	assert.Equal(t, 25, shares[0].Percent)

	// an empty catalog is floored rather than dividing by zero
	shares = CategoryDistribution([]CategoryCount{{"Shirts", 0}}, 0)
	assert.Equal(t, 0, shares[0].Percent)
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, []string{"October", "November", "December", "January", "February", "March"}, MonthLabels(6, ref))
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), windowStart(ref, 6))
}
