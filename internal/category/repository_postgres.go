package category

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
	listCategoriesQuery = `SELECT id, name, slug, photos, created_at FROM categories ORDER BY name`
	getCategoryQuery    = `SELECT id, name, slug, photos, created_at FROM categories WHERE id = $1`
	listSubsQuery       = `SELECT id, category_id, name, slug FROM subcategories ORDER BY category_id, id`
	listSubsOfQuery     = `SELECT id, category_id, name, slug FROM subcategories WHERE category_id = $1 ORDER BY id`
	insertCategoryQuery = `INSERT INTO categories (name, slug, photos) VALUES ($1,$2,$3) RETURNING id, created_at`
	updateCategoryQuery = `UPDATE categories SET name = $1, slug = $2, photos = $3 WHERE id = $4 RETURNING created_at`
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1`
	insertSubQuery      = `INSERT INTO subcategories (category_id, name, slug) VALUES ($1,$2,$3) RETURNING id`
	updateSubQuery      = `UPDATE subcategories SET category_id = $1, name = $2, slug = $3 WHERE id = $4 AND category_id = $5`
	deleteSubQuery      = `DELETE FROM subcategories WHERE id = $1 AND category_id = $2`
	categoryExistsQuery = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	pos := map[int]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Photos, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Subcategories = []Subcategory{}
		pos[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs, err := r.querySubs(ctx, listSubsQuery)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if i, ok := pos[s.CategoryID]; ok {
			out[i].Subcategories = append(out[i].Subcategories, s)
		}
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, getCategoryQuery, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Photos, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	c.Subcategories, err = r.querySubs(ctx, listSubsOfQuery, id)
	return c, err
}

func (r *PostgresRepository) querySubs(ctx context.Context, query string, args ...any) ([]Subcategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Subcategory, 0)
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	err := r.db.QueryRowContext(ctx, insertCategoryQuery, c.Name, c.Slug, c.Photos).Scan(&c.ID, &c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return Category{}, ErrSlugExists
	}
	if err != nil {
		return Category{}, err
	}
	if c.Subcategories == nil {
		c.Subcategories = []Subcategory{}
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, c Category) (Category, error) {
	err := r.db.QueryRowContext(ctx, updateCategoryQuery, c.Name, c.Slug, c.Photos, id).Scan(&c.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Category{}, ErrNotFound
	case database.IsUniqueViolation(err):
		return Category{}, ErrSlugExists
	case err != nil:
		return Category{}, err
	}
	c.ID = id
	c.Subcategories, err = r.querySubs(ctx, listSubsOfQuery, id)
	return c, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AddSubcategory(ctx context.Context, sub Subcategory) (Subcategory, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, categoryExistsQuery, sub.CategoryID).Scan(&exists); err != nil {
		return Subcategory{}, err
	}
	if !exists {
		return Subcategory{}, ErrNotFound
	}
	if err := r.db.QueryRowContext(ctx, insertSubQuery, sub.CategoryID, sub.Name, sub.Slug).Scan(&sub.ID); err != nil {
		return Subcategory{}, err
	}
	return sub, nil
}

func (r *PostgresRepository) UpdateSubcategory(ctx context.Context, categoryID, subID int, sub Subcategory) (Subcategory, error) {
	if sub.CategoryID != categoryID {
		var exists bool
		if err := r.db.QueryRowContext(ctx, categoryExistsQuery, sub.CategoryID).Scan(&exists); err != nil {
			return Subcategory{}, err
		}
		if !exists {
			return Subcategory{}, ErrNotFound
		}
	}
	res, err := r.db.ExecContext(ctx, updateSubQuery, sub.CategoryID, sub.Name, sub.Slug, subID, categoryID)
	if err != nil {
		return Subcategory{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Subcategory{}, ErrSubNotFound
	}
	sub.ID = subID
	return sub, nil
}

func (r *PostgresRepository) DeleteSubcategory(ctx context.Context, categoryID, subID int) error {
	res, err := r.db.ExecContext(ctx, deleteSubQuery, subID, categoryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubNotFound
	}
	return nil
}
