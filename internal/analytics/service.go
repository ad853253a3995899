package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/cache"
	"github.com/wichananm65/storefront-backend/internal/order"
	"golang.org/x/sync/errgroup"
)

const latestTransactions = 4

type ChangePercent struct {
	Revenue float64 `json:"revenue"`
	Product float64 `json:"product"`
	User    float64 `json:"user"`
	Order   float64 `json:"order"`
}

type Chart struct {
	Orders  []float64 `json:"orders"`
	Revenue []float64 `json:"revenue"`
}

type Stats struct {
	CategoryCount     []CategoryShare `json:"categoryCount"`
	ChangePercent     ChangePercent   `json:"changePercent"`
	Count             Totals          `json:"count"`
	Chart             Chart           `json:"chart"`
	LatestTransaction []order.Summary `json:"latestTransaction"`
}

type Pie struct {
	CategoryCount []CategoryCount `json:"categoryCount"`
	StatusCount   StatusCount     `json:"statusCount"`
	StockCount    StockCount      `json:"stockCount"`
}

type Bar struct {
	Months  []string  `json:"months"`
	Orders  []float64 `json:"orders"`
	Revenue []float64 `json:"revenue"`
}

type Line struct {
	Months   []string  `json:"months"`
	Users    []float64 `json:"users"`
	Products []float64 `json:"products"`
	Discount []float64 `json:"discount"`
	Revenue  []float64 `json:"revenue"`
}

type Service struct {
	src   Source
	cache cache.JSON
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(src Source, c cache.JSON, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{src: src, cache: c, ttl: ttl, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// cached serves key from the cache or computes and stores it. Cache errors
// only cost a recomputation.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context, time.Time) (T, error)) (T, error) {
	var out T
	hit, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("analytics cache read failed")
	} else if hit {
		return out, nil
	}

	out, err = load(ctx, s.now())
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return cached(ctx, s, "analytics:stats", s.loadStats)
}

func (s *Service) Pie(ctx context.Context) (Pie, error) {
	return cached(ctx, s, "analytics:pie", s.loadPie)
}

func (s *Service) Bar(ctx context.Context) (Bar, error) {
	return cached(ctx, s, "analytics:bar", s.loadBar)
}

func (s *Service) Line(ctx context.Context) (Line, error) {
	return cached(ctx, s, "analytics:line", s.loadLine)
}

func (s *Service) loadStats(ctx context.Context, ref time.Time) (Stats, error) {
	var (
		orders, users, products []Datum
		totals                  Totals
		categories              []CategoryCount
		latest                  []order.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.src.OrdersSince(gctx, windowStart(ref, 6))
		return err
	})
	g.Go(func() (err error) {
		users, err = s.src.UsersSince(gctx, windowStart(ref, 2))
		return err
	})
	g.Go(func() (err error) {
		products, err = s.src.ProductsSince(gctx, windowStart(ref, 2))
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.src.Totals(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.src.CategoryCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		latest, err = s.src.LatestOrders(gctx, latestTransactions)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	// two-bucket histograms are [last month, this month]
	orderCounts := BuildHistogram(2, orders, ref, "")
	revenue := BuildHistogram(2, orders, ref, FieldTotal)
	userCounts := BuildHistogram(2, users, ref, "")
	productCounts := BuildHistogram(2, products, ref, "")

	return Stats{
		CategoryCount: CategoryDistribution(categories, totals.Products),
		ChangePercent: ChangePercent{
			Revenue: PercentChange(revenue[1], revenue[0]),
			Product: PercentChange(productCounts[1], productCounts[0]),
			User:    PercentChange(userCounts[1], userCounts[0]),
			Order:   PercentChange(orderCounts[1], orderCounts[0]),
		},
		Count: totals,
		Chart: Chart{
			Orders:  BuildHistogram(6, orders, ref, ""),
			Revenue: BuildHistogram(6, orders, ref, FieldTotal),
		},
		LatestTransaction: latest,
	}, nil
}

func (s *Service) loadPie(ctx context.Context, _ time.Time) (Pie, error) {
	var p Pie
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.CategoryCount, err = s.src.CategoryCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		p.StatusCount, err = s.src.StatusCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		p.StockCount, err = s.src.StockCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Pie{}, err
	}
	return p, nil
}

func (s *Service) loadBar(ctx context.Context, ref time.Time) (Bar, error) {
	orders, err := s.src.OrdersSince(ctx, windowStart(ref, 6))
	if err != nil {
		return Bar{}, err
	}
	return Bar{
		Months:  MonthLabels(6, ref),
		Orders:  BuildHistogram(6, orders, ref, ""),
		Revenue: BuildHistogram(6, orders, ref, FieldTotal),
	}, nil
}

func (s *Service) loadLine(ctx context.Context, ref time.Time) (Line, error) {
	since := windowStart(ref, 12)
	var orders, users, products []Datum
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.src.OrdersSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.src.UsersSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.src.ProductsSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return Line{}, err
	}
	return Line{
		Months:   MonthLabels(12, ref),
		Users:    BuildHistogram(12, users, ref, ""),
		Products: BuildHistogram(12, products, ref, ""),
		Discount: BuildHistogram(12, orders, ref, FieldDiscount),
		Revenue:  BuildHistogram(12, orders, ref, FieldTotal),
	}, nil
}
