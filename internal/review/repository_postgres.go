package review

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertReviewQuery = `
		INSERT INTO reviews (product_id, user_id, user_name, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`
	listReviewsQuery  = `SELECT id, product_id, user_id, user_name, rating, comment, created_at FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`
	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1 AND product_id = $2`
	averageQuery      = `SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rv Review) (Review, error) {
	err := r.db.QueryRowContext(ctx, insertReviewQuery, rv.ProductID, rv.UserID, rv.UserName, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID int) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Review, 0)
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, productID, reviewID int) error {
	res, err := r.db.ExecContext(ctx, deleteReviewQuery, reviewID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Average(ctx context.Context, productID int) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx, averageQuery, productID).Scan(&avg)
	return avg, err
}
