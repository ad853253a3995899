package banner

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	bannerColumns     = `id, slot, title, heading, description, link, photos, created_at, updated_at`
	listBySlotQuery   = `SELECT ` + bannerColumns + ` FROM banners WHERE slot = $1 ORDER BY created_at DESC, id DESC`
	getBannerQuery    = `SELECT ` + bannerColumns + ` FROM banners WHERE id = $1`
	insertBannerQuery = `
		INSERT INTO banners (slot, title, heading, description, link, photos)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at
	`
	updateBannerQuery = `
		UPDATE banners SET title = $1, heading = $2, description = $3, link = $4, photos = $5, updated_at = now()
		WHERE id = $6
		RETURNING slot, created_at, updated_at
	`
	deleteBannerQuery = `DELETE FROM banners WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBanner(row rowScanner) (Banner, error) {
	var b Banner
	err := row.Scan(&b.ID, &b.Slot, &b.Title, &b.Heading, &b.Description, &b.Link, &b.Photos, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *PostgresRepository) ListBySlot(ctx context.Context, slot Slot) ([]Banner, error) {
	rows, err := r.db.QueryContext(ctx, listBySlotQuery, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Banner, 0)
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Banner, error) {
	b, err := scanBanner(r.db.QueryRowContext(ctx, getBannerQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Banner{}, ErrNotFound
	}
	return b, err
}

func (r *PostgresRepository) Create(ctx context.Context, b Banner) (Banner, error) {
	err := r.db.QueryRowContext(ctx, insertBannerQuery, b.Slot, b.Title, b.Heading, b.Description, b.Link, b.Photos).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Banner{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Update(ctx context.Context, b Banner) (Banner, error) {
	err := r.db.QueryRowContext(ctx, updateBannerQuery, b.Title, b.Heading, b.Description, b.Link, b.Photos, b.ID).
		Scan(&b.Slot, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Banner{}, ErrNotFound
	}
	if err != nil {
		return Banner{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteBannerQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
