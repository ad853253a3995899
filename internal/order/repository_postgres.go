package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wichananm65/storefront-backend/internal/database"
	"github.com/wichananm65/storefront-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	orderColumns = `id, user_id, items, shipping, subtotal, tax, discount, discount_amount, total, coupon_code, payment_method, status, payment_status, paid_at, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (user_id, items, shipping, subtotal, tax, discount, discount_amount, total, coupon_code, payment_method, status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`
	getOrderQuery     = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	lockOrderQuery    = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	deleteOrderQuery  = `DELETE FROM orders WHERE id = $1`
	listByUserQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	listOrdersQuery   = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	listLatestQuery   = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`
	updateStatusQuery = `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2 AND status = $3 RETURNING ` + orderColumns
	markPaidQuery     = `UPDATE orders SET payment_status = $1, paid_at = $2, updated_at = now() WHERE id = $3 RETURNING ` + orderColumns
	orderExistsQuery  = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
	reviewedItems     = `
		SELECT jsonb_agg(CASE WHEN (elem->>'productId')::int = $2
			THEN jsonb_set(elem, '{reviewed}', to_jsonb($3::boolean)) ELSE elem END ORDER BY pos)
		FROM jsonb_array_elements(items) WITH ORDINALITY AS t(elem, pos)
	`
	unreviewedLine   = `items @> jsonb_build_array(jsonb_build_object('productId', $2::int, 'reviewed', false))`
	// SKIP LOCKED sends a concurrent claim to the next eligible order or to
	// no row at all.
	claimReviewQuery = `
		UPDATE orders
		SET items = (` + reviewedItems + `), updated_at = now()
		WHERE id = (
			SELECT id FROM orders
			WHERE user_id = $1 AND status = 'Delivered' AND ` + unreviewedLine + `
			ORDER BY created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND ` + unreviewedLine + `
		RETURNING ` + orderColumns + `
	`
	releaseReviewQuery = `UPDATE orders SET items = (` + reviewedItems + `), updated_at = now() WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanOrder(s rowScanner) (Order, error) {
	var (
		o      Order
		status string
		paid   string
		paidAt sql.NullTime
	)
	err := s.Scan(&o.ID, &o.UserID, &o.Items, &o.Shipping, &o.Subtotal, &o.Tax, &o.Discount, &o.DiscountAmount,
		&o.Total, &o.CouponCode, &o.PaymentMethod, &status, &paid, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.PaymentStatus = PaymentStatus(paid)
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	return o, nil
}

// Place locks and decrements every variant, then inserts the order, in
// one transaction.
func (r *PostgresRepository) Place(ctx context.Context, o Order) (Order, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := product.ReserveTx(ctx, tx, o.Items.StockLines()); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, insertOrderQuery,
			o.UserID, o.Items, o.Shipping, o.Subtotal, o.Tax, o.Discount, o.DiscountAmount, o.Total,
			o.CouponCode, o.PaymentMethod, string(o.Status), string(o.PaymentStatus),
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, id int) (Order, error) {
	var o Order
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if o, err = scanOrder(tx.QueryRowContext(ctx, lockOrderQuery, id)); err != nil {
			return err
		}
		if err := product.ReleaseTx(ctx, tx, o.Items.StockLines()); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, deleteOrderQuery, id)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	return r.query(ctx, listByUserQuery, userID)
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Order, error) {
	if limit > 0 {
		return r.query(ctx, listLatestQuery, limit)
	}
	return r.query(ctx, listOrdersQuery)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, from, to Status) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateStatusQuery, string(to), id, string(from)))
	if !errors.Is(err, ErrNotFound) {
		return o, err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, orderExistsQuery, id).Scan(&exists); err != nil {
		return Order{}, err
	}
	if exists {
		return Order{}, ErrStatusChanged
	}
	return Order{}, ErrNotFound
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, id int, at time.Time) (Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, markPaidQuery, string(PaymentPaid), at, id))
}

func (r *PostgresRepository) ClaimReview(ctx context.Context, userID, productID int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, claimReviewQuery, userID, productID, true))
	if errors.Is(err, ErrNotFound) {
		return Order{}, ErrNotReviewable
	}
	return o, err
}

func (r *PostgresRepository) ReleaseReview(ctx context.Context, orderID, productID int) error {
	res, err := r.db.ExecContext(ctx, releaseReviewQuery, orderID, productID, false)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
