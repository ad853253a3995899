package address

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository stores addresses with a foreign key to users; the
// shipping fields live in one jsonb column.
type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns     = `id, user_id, name, details, created_at, updated_at`
	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, name, details)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at
	`
	updateAddressQuery = `
		UPDATE addresses
		SET name = $3, details = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Details, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	err := r.db.QueryRowContext(ctx, insertAddressQuery, a.UserID, a.Name, a.Details).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	err := r.db.QueryRowContext(ctx, updateAddressQuery, a.UserID, a.ID, a.Name, a.Details).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
