// Package analytics builds the admin dashboard: month-bucketed histograms,
// month over month change and category shares.
package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Datum is one created record fed into a histogram. Fields holds the values
// a sum-mode histogram may add up.
type Datum struct {
	CreatedAt time.Time
	Fields    map[string]any
}

// BuildHistogram buckets items by calendar month relative to ref. Bucket
// length-1 is ref's month and bucket 0 is length-1 months earlier; items
// outside that window are dropped. With an empty field each item counts 1,
// otherwise the item's field value is added, 0 when missing or not numeric.
func BuildHistogram(length int, items []Datum, ref time.Time, field string) []float64 {
	if length <= 0 {
		return []float64{}
	}
	buckets := make([]decimal.Decimal, length)
	refMonths := ref.Year()*12 + int(ref.Month())
	for _, it := range items {
		if it.CreatedAt.IsZero() {
			continue
		}
		created := it.CreatedAt.In(ref.Location())
		diff := refMonths - (created.Year()*12 + int(created.Month()))
		if diff < 0 || diff >= length {
			continue
		}
		idx := length - diff - 1
		if field == "" {
			buckets[idx] = buckets[idx].Add(decimal.NewFromInt(1))
			continue
		}
		buckets[idx] = buckets[idx].Add(numeric(it.Fields[field]))
	}

	out := make([]float64, length)
	for i, b := range buckets {
		out[i] = b.InexactFloat64()
	}
	return out
}

func numeric(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	default:
		return decimal.Zero
	}
}

// PercentChange is the whole-number change from previous to current. A zero
// previous yields current*100 rather than a real percentage.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return current * 100
	}
	return math.Round((current - previous) / previous * 100)
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CategoryShare struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// CategoryDistribution reports each category's share of total products as a
// rounded percentage. Shares are not normalised to sum to 100; total is
// floored at 1.
func CategoryDistribution(categories []CategoryCount, total int) []CategoryShare {
	if total < 1 {
		total = 1
	}
	out := make([]CategoryShare, 0, len(categories))
	for _, c := range categories {
		pct := math.Round(float64(c.Count) / float64(total) * 100)
		out = append(out, CategoryShare{Name: c.Name, Percent: int(pct)})
	}
	return out
}

// MonthLabels names the n calendar months ending with ref's, oldest first.
func MonthLabels(n int, ref time.Time) []string {
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, ref.Location()).Month().String())
	}
	return out
}

// windowStart is the first instant of the oldest month in an n-month window.
func windowStart(ref time.Time, n int) time.Time {
	return time.Date(ref.Year(), ref.Month()-time.Month(n-1), 1, 0, 0, 0, 0, ref.Location())
}
