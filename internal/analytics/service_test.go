package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/cache"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func intPtr(v int) *int { return &v }

func sampleSource() *MemorySource {
	mk := func(id int, created time.Time, total string, status order.Status) order.Order {
		return order.Order{
			ID:             id,
			CreatedAt:      created,
			Total:          decimal.RequireFromString(total),
			DiscountAmount: decimal.RequireFromString("1.00"),
			Status:         status,
			Items:          order.Lines{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}},
		}
	}
	return &MemorySource{
		Orders: []order.Order{
			mk(1, at(2025, time.March, 2), "100.00", order.StatusPending),
			mk(2, at(2025, time.March, 10), "50.00", order.StatusDelivered),
			mk(3, at(2025, time.February, 20), "100.00", order.StatusShipped),
			mk(4, at(2024, time.November, 5), "30.00", order.StatusDelivered),
			mk(5, at(2023, time.January, 5), "10.00", order.StatusProcessing),
		},
		Users: []time.Time{at(2025, time.March, 3), at(2025, time.March, 4), at(2025, time.January, 1)},
		Products: []product.Product{
			{ID: 1, CategoryID: intPtr(1), CreatedAt: at(2025, time.March, 1), Colors: []product.Variant{{ColorName: "Red", Stock: 2}}},
			{ID: 2, CategoryID: intPtr(1), CreatedAt: at(2025, time.February, 1), Colors: []product.Variant{{ColorName: "Blue", Stock: 0}}},
			{ID: 3, CategoryID: intPtr(2), CreatedAt: at(2024, time.June, 1)},
		},
		Categories: []category.Category{{ID: 1, Name: "Shirts"}, {ID: 2, Name: "Hats"}, {ID: 3, Name: "Socks"}},
	}
}

func newTestService(src Source, c cache.JSON) *Service {
	svc := NewService(src, c, time.Minute, zerolog.Nop())
	svc.now = func() time.Time { return ref }
	return svc
}

func TestStats_Composition(t *testing.T) {
	svc := newTestService(sampleSource(), cache.Noop{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ChangePercent{Revenue: 50, Product: 0, User: 200, Order: 100}, stats.ChangePercent)
	assert.Equal(t, 3, stats.Count.Products)
	assert.Equal(t, 3, stats.Count.Users)
	assert.Equal(t, 5, stats.Count.Orders)
	assert.Equal(t, "290", stats.Count.Revenue.String())
	assert.Equal(t, []float64{0, 1, 0, 0, 1, 2}, stats.Chart.Orders)
	assert.Equal(t, []float64{0, 30, 0, 0, 100, 150}, stats.Chart.Revenue)
	assert.Equal(t, []CategoryShare{{"Shirts", 67}, {"Hats", 33}, {"Socks", 0}}, stats.CategoryCount)

	require.Len(t, stats.LatestTransaction, 4)
	assert.Equal(t, 2, stats.LatestTransaction[0].ID)
	assert.Equal(t, 2, stats.LatestTransaction[0].ItemCount)
}

func TestPieBarLine(t *testing.T) {
	svc := newTestService(sampleSource(), cache.Noop{})
	ctx := context.Background()

	pie, err := svc.Pie(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusCount{Processing: 1, Shipped: 1, Delivered: 2}, pie.StatusCount)
	assert.Equal(t, StockCount{InStock: 1, OutOfStock: 2}, pie.StockCount)
	assert.Equal(t, CategoryCount{Name: "Shirts", Count: 2}, pie.CategoryCount[0])

	bar, err := svc.Bar(ctx)
	require.NoError(t, err)
	assert.Equal(t, "March", bar.Months[5])
	assert.Equal(t, []float64{0, 1, 0, 0, 1, 2}, bar.Orders)

	line, err := svc.Line(ctx)
	require.NoError(t, err)
	assert.Len(t, line.Months, 12)
	assert.Equal(t, "April", line.Months[0])
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 2}, line.Users)
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1}, line.Products)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 2}, line.Discount)
}

type countingSource struct {
	*MemorySource
	calls int
}

func (c *countingSource) Totals(ctx context.Context) (Totals, error) {
	c.calls++
	return c.MemorySource.Totals(ctx)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, ...string) error { return nil }

func TestStats_CachedUntilExpiry(t *testing.T) {
	src := &countingSource{MemorySource: sampleSource()}
	svc := newTestService(src, cache.NewMemory())
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.Chart, second.Chart)
	assert.True(t, first.Count.Revenue.Equal(second.Count.Revenue))

	// a failing cache degrades to recomputing
	svc = newTestService(src, brokenCache{})
	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
