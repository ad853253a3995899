package analytics

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type PostgresSource struct {
	db *sql.DB
}

const (
	ordersSinceQuery   = `SELECT created_at, total, discount_amount FROM orders WHERE created_at >= $1`
	usersSinceQuery    = `SELECT created_at FROM users WHERE created_at >= $1`
	productsSinceQuery = `SELECT created_at FROM products WHERE created_at >= $1`
	totalsQuery        = `
		SELECT (SELECT COUNT(*) FROM products),
		       (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM orders),
		       (SELECT COALESCE(SUM(total), 0) FROM orders)
	`
	categoryCountsQuery = `
		SELECT c.name, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name
	`
	statusCountsQuery = `SELECT status, COUNT(*) FROM orders GROUP BY status`
	stockCountsQuery  = `
		SELECT COUNT(*) FILTER (WHERE stock > 0), COUNT(*) FILTER (WHERE stock = 0)
		FROM (
			SELECT p.id, COALESCE(SUM(v.stock), 0) AS stock
			FROM products p
			LEFT JOIN product_variants v ON v.product_id = p.id
			GROUP BY p.id
		) t
	`
	latestOrdersQuery = `SELECT id, discount_amount, total, items, status FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`
)

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) OrdersSince(ctx context.Context, since time.Time) ([]Datum, error) {
	rows, err := s.db.QueryContext(ctx, ordersSinceQuery, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Datum, 0)
	for rows.Next() {
		var (
			created         time.Time
			total, discount decimal.Decimal
		)
		if err := rows.Scan(&created, &total, &discount); err != nil {
			return nil, err
		}
		out = append(out, Datum{CreatedAt: created, Fields: map[string]any{FieldTotal: total, FieldDiscount: discount}})
	}
	return out, rows.Err()
}

func (s *PostgresSource) UsersSince(ctx context.Context, since time.Time) ([]Datum, error) {
	return s.createdSince(ctx, usersSinceQuery, since)
}

func (s *PostgresSource) ProductsSince(ctx context.Context, since time.Time) ([]Datum, error) {
	return s.createdSince(ctx, productsSinceQuery, since)
}

func (s *PostgresSource) createdSince(ctx context.Context, query string, since time.Time) ([]Datum, error) {
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Datum, 0)
	for rows.Next() {
		var created time.Time
		if err := rows.Scan(&created); err != nil {
			return nil, err
		}
		out = append(out, Datum{CreatedAt: created})
	}
	return out, rows.Err()
}

func (s *PostgresSource) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, totalsQuery).Scan(&t.Products, &t.Users, &t.Orders, &t.Revenue)
	return t, err
}

func (s *PostgresSource) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, categoryCountsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresSource) StatusCounts(ctx context.Context) (StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, statusCountsQuery)
	if err != nil {
		return StatusCount{}, err
	}
	defer rows.Close()

	var sc StatusCount
	for rows.Next() {
		var (
			status order.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCount{}, err
		}
		switch status {
		case order.StatusProcessing:
			sc.Processing = n
		case order.StatusShipped:
			sc.Shipped = n
		case order.StatusDelivered:
			sc.Delivered = n
		}
	}
	return sc, rows.Err()
}

func (s *PostgresSource) StockCounts(ctx context.Context) (StockCount, error) {
	var sc StockCount
	err := s.db.QueryRowContext(ctx, stockCountsQuery).Scan(&sc.InStock, &sc.OutOfStock)
	return sc, err
}

func (s *PostgresSource) LatestOrders(ctx context.Context, n int) ([]order.Summary, error) {
	rows, err := s.db.QueryContext(ctx, latestOrdersQuery, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]order.Summary, 0, n)
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.DiscountAmount, &o.Total, &o.Items, &o.Status); err != nil {
			return nil, err
		}
		out = append(out, o.Summary())
	}
	return out, rows.Err()
}
