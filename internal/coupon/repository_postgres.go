package coupon

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	couponColumns     = `id, code, discount, expiry_date, is_active, created_at`
	listCouponsQuery  = `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`
	getCouponQuery    = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	getByCodeQuery    = `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	insertCouponQuery = `INSERT INTO coupons (code, discount, expiry_date, is_active) VALUES ($1,$2,$3,$4) RETURNING id, created_at`
	updateCouponQuery = `UPDATE coupons SET code = $1, discount = $2, expiry_date = $3, is_active = $4 WHERE id = $5 RETURNING created_at`
	deleteCouponQuery = `DELETE FROM coupons WHERE id = $1`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanCoupon(s rowScanner) (Coupon, error) {
	var c Coupon
	err := s.Scan(&c.ID, &c.Code, &c.Discount, &c.ExpiryDate, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Coupon{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Coupon, error) {
	rows, err := r.db.QueryContext(ctx, listCouponsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Coupon, error) {
	return scanCoupon(r.db.QueryRowContext(ctx, getCouponQuery, id))
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (Coupon, error) {
	return scanCoupon(r.db.QueryRowContext(ctx, getByCodeQuery, code))
}

func (r *PostgresRepository) Create(ctx context.Context, c Coupon) (Coupon, error) {
	err := r.db.QueryRowContext(ctx, insertCouponQuery, c.Code, c.Discount, c.ExpiryDate, c.IsActive).Scan(&c.ID, &c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return Coupon{}, ErrCodeExists
	}
	return c, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int, c Coupon) (Coupon, error) {
	err := r.db.QueryRowContext(ctx, updateCouponQuery, c.Code, c.Discount, c.ExpiryDate, c.IsActive, id).Scan(&c.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Coupon{}, ErrNotFound
	case database.IsUniqueViolation(err):
		return Coupon{}, ErrCodeExists
	case err != nil:
		return Coupon{}, err
	}
	c.ID = id
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteCouponQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
