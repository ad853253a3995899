package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// Order datum fields.
const (
	FieldTotal    = "total"
	FieldDiscount = "discount"
)

type Totals struct {
	Products int             `json:"product"`
	Users    int             `json:"user"`
	Orders   int             `json:"order"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Processing int `json:"processing"`
	Shipped    int `json:"shipped"`
	Delivered  int `json:"delivered"`
}

type StockCount struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// Source loads the raw figures the dashboard is composed from.
type Source interface {
	OrdersSince(ctx context.Context, since time.Time) ([]Datum, error)
	UsersSince(ctx context.Context, since time.Time) ([]Datum, error)
	ProductsSince(ctx context.Context, since time.Time) ([]Datum, error)
	Totals(ctx context.Context) (Totals, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	StatusCounts(ctx context.Context) (StatusCount, error)
	StockCounts(ctx context.Context) (StockCount, error)
	LatestOrders(ctx context.Context, n int) ([]order.Summary, error)
}

// MemorySource answers from fixed slices.
type MemorySource struct {
	Orders     []order.Order
	Users      []time.Time
	Products   []product.Product
	Categories []category.Category
}

func orderDatum(o order.Order) Datum {
	return Datum{CreatedAt: o.CreatedAt, Fields: map[string]any{FieldTotal: o.Total, FieldDiscount: o.DiscountAmount}}
}

func (m *MemorySource) OrdersSince(_ context.Context, since time.Time) ([]Datum, error) {
	out := make([]Datum, 0)
	for _, o := range m.Orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, orderDatum(o))
		}
	}
	return out, nil
}

func (m *MemorySource) UsersSince(_ context.Context, since time.Time) ([]Datum, error) {
	out := make([]Datum, 0)
	for _, t := range m.Users {
		if !t.Before(since) {
			out = append(out, Datum{CreatedAt: t})
		}
	}
	return out, nil
}

func (m *MemorySource) ProductsSince(_ context.Context, since time.Time) ([]Datum, error) {
	out := make([]Datum, 0)
	for _, p := range m.Products {
		if !p.CreatedAt.Before(since) {
			out = append(out, Datum{CreatedAt: p.CreatedAt})
		}
	}
	return out, nil
}

func (m *MemorySource) Totals(_ context.Context) (Totals, error) {
	t := Totals{Products: len(m.Products), Users: len(m.Users), Orders: len(m.Orders)}
	for _, o := range m.Orders {
		t.Revenue = t.Revenue.Add(o.Total)
	}
	return t, nil
}

func (m *MemorySource) CategoryCounts(_ context.Context) ([]CategoryCount, error) {
	out := make([]CategoryCount, 0, len(m.Categories))
	for _, c := range m.Categories {
		n := 0
		for _, p := range m.Products {
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				n++
			}
		}
		out = append(out, CategoryCount{Name: c.Name, Count: n})
	}
	return out, nil
}

func (m *MemorySource) StatusCounts(_ context.Context) (StatusCount, error) {
	var sc StatusCount
	for _, o := range m.Orders {
		switch o.Status {
		case order.StatusProcessing:
			sc.Processing++
		case order.StatusShipped:
			sc.Shipped++
		case order.StatusDelivered:
			sc.Delivered++
		}
	}
	return sc, nil
}

func (m *MemorySource) StockCounts(_ context.Context) (StockCount, error) {
	var sc StockCount
	for _, p := range m.Products {
		if p.TotalStock() > 0 {
			sc.InStock++
		} else {
			sc.OutOfStock++
		}
	}
	return sc, nil
}

func (m *MemorySource) LatestOrders(_ context.Context, n int) ([]order.Summary, error) {
	sorted := append([]order.Order(nil), m.Orders...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]order.Summary, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, o.Summary())
	}
	return out, nil
}
