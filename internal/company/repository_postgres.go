package company

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	companyColumns     = `id, logo, address, phone, email, facebook, twitter, instagram, linkedin, created_at, updated_at`
	listCompanyQuery   = `SELECT ` + companyColumns + ` FROM company_info ORDER BY id`
	getCompanyQuery    = `SELECT ` + companyColumns + ` FROM company_info WHERE id = $1`
	insertCompanyQuery = `
		INSERT INTO company_info (logo, address, phone, email, facebook, twitter, instagram, linkedin)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at
	`
	updateCompanyQuery = `
		UPDATE company_info SET logo = $1, address = $2, phone = $3, email = $4,
			facebook = $5, twitter = $6, instagram = $7, linkedin = $8, updated_at = now()
		WHERE id = $9
		RETURNING created_at, updated_at
	`
	deleteCompanyQuery = `DELETE FROM company_info WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Logo, &c.Address, &c.Phone, &c.Email, &c.Facebook, &c.Twitter, &c.Instagram, &c.Linkedin, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.db.QueryContext(ctx, listCompanyQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Company, error) {
	c, err := scanCompany(r.db.QueryRowContext(ctx, getCompanyQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) Create(ctx context.Context, c Company) (Company, error) {
	err := r.db.QueryRowContext(ctx, insertCompanyQuery, c.Logo, c.Address, c.Phone, c.Email, c.Facebook, c.Twitter, c.Instagram, c.Linkedin).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Company) (Company, error) {
	err := r.db.QueryRowContext(ctx, updateCompanyQuery, c.Logo, c.Address, c.Phone, c.Email, c.Facebook, c.Twitter, c.Instagram, c.Linkedin, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteCompanyQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
