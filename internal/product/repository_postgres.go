package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	productColumns = `p.id, p.name, p.description, p.price, p.category_id, p.subcategory_id, p.average_rating, p.created_at, p.updated_at`

	getProductByIDQuery   = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	getProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1::int[])`

	listVariantsQuery = `
		SELECT product_id, color_name, color_image, photos, sizes, seam_sizes, stock
		FROM product_variants
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id, position
	`
	insertProductQuery = `
		INSERT INTO products (name, description, price, category_id, subcategory_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1, description = $2, price = $3, category_id = $4, subcategory_id = $5, updated_at = now()
		WHERE id = $6
		RETURNING created_at, updated_at, average_rating
	`
	insertVariantQuery = `
		INSERT INTO product_variants (product_id, color_name, color_image, photos, sizes, seam_sizes, stock, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	deleteVariantsQuery = `DELETE FROM product_variants WHERE product_id = $1`
	deleteProductQuery  = `DELETE FROM products WHERE id = $1`
	categoryOfQuery     = `SELECT category_id FROM products WHERE id = $1`
	similarQuery        = `SELECT ` + productColumns + ` FROM products p WHERE p.category_id = $1 AND p.id <> $2 ORDER BY p.created_at DESC LIMIT $3`
	lowStockQuery       = `
		SELECT ` + productColumns + `
		FROM products p
		WHERE COALESCE((SELECT SUM(v.stock) FROM product_variants v WHERE v.product_id = p.id), 0) <= $1
		ORDER BY p.id
	`
	setRatingQuery = `UPDATE products SET average_rating = $1 WHERE id = $2`

	lockVariantQuery = `
		SELECT v.stock, p.name
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.product_id = $1 AND v.color_name = $2
		FOR UPDATE OF v
	`
	takeStockQuery    = `UPDATE product_variants SET stock = stock - $1 WHERE product_id = $2 AND color_name = $3`
	restoreStockQuery = `UPDATE product_variants SET stock = stock + $1 WHERE product_id = $2 AND color_name = $3`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) (Page, error) {
	where, args := buildWhere(f)
	query := `SELECT ` + productColumns + `, COUNT(*) OVER() FROM products p` + where + orderBy(f.Sort)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	page := Page{Products: make([]Product, 0)}
	for rows.Next() {
		var total int
		p, err := scanProduct(rows, &total)
		if err != nil {
			return Page{}, err
		}
		page.Total = total
		page.Products = append(page.Products, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	if err := r.attachVariants(ctx, r.db, page.Products); err != nil {
		return Page{}, err
	}
	return page, nil
}

func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		add("p.name ILIKE '%%' || $%d || '%%'", kw)
	}
	if len(f.CategoryIDs) > 0 {
		add("p.category_id = ANY($%d::int[])", pq.Array(f.CategoryIDs))
	}
	if len(f.Colors) > 0 {
		add("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.color_name = ANY($%d::text[]))", pq.Array(f.Colors))
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(mode string) string {
	switch mode {
	case SortPriceAsc:
		return " ORDER BY p.price ASC, p.id"
	case SortPriceDesc:
		return " ORDER BY p.price DESC, p.id"
	case SortRating:
		return " ORDER BY p.average_rating DESC, p.id"
	default:
		return " ORDER BY p.created_at DESC, p.id DESC"
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id), nil)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	list := []Product{p}
	if err := r.attachVariants(ctx, r.db, list); err != nil {
		return Product{}, err
	}
	return list[0], nil
}

func (r *PostgresRepository) GetMany(ctx context.Context, ids []int) (map[int]Product, error) {
	out := make(map[int]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.queryProducts(ctx, getProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, insertProductQuery, p.Name, p.Description, p.Price, p.CategoryID, p.SubcategoryID).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return insertVariants(ctx, tx, p.ID, p.Colors)
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	p.ID = id
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, updateProductQuery, p.Name, p.Description, p.Price, p.CategoryID, p.SubcategoryID, id).
			Scan(&p.CreatedAt, &p.UpdatedAt, &p.AverageRating)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteVariantsQuery, id); err != nil {
			return err
		}
		return insertVariants(ctx, tx, id, p.Colors)
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func insertVariants(ctx context.Context, tx *sql.Tx, productID int, colors []Variant) error {
	for i, v := range colors {
		if _, err := tx.ExecContext(ctx, insertVariantQuery,
			productID, v.ColorName, v.ColorImage, v.Photos, pq.Array(nonNil(v.Sizes)), pq.Array(nonNil(v.SeamSizes)), v.Stock, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Similar(ctx context.Context, id int, limit int) ([]Product, error) {
	var categoryID sql.NullInt64
	err := r.db.QueryRowContext(ctx, categoryOfQuery, id).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !categoryID.Valid {
		return []Product{}, nil
	}
	return r.queryProducts(ctx, similarQuery, categoryID.Int64, id, limit)
}

func (r *PostgresRepository) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	return r.queryProducts(ctx, lowStockQuery, threshold)
}

func (r *PostgresRepository) SetRating(ctx context.Context, id int, avg float64) error {
	res, err := r.db.ExecContext(ctx, setRatingQuery, avg, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Reserve(ctx context.Context, lines []StockLine) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return ReserveTx(ctx, tx, lines)
	})
}

func (r *PostgresRepository) Release(ctx context.Context, lines []StockLine) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return ReleaseTx(ctx, tx, lines)
	})
}

// ReserveTx locks each variant row, checks it can cover the quantity and
// decrements it. Callers own the transaction so stock and the order that
// consumes it commit together.
func ReserveTx(ctx context.Context, tx *sql.Tx, lines []StockLine) error {
	for _, l := range mergeLines(lines) {
		var stock int
		var name string
		err := tx.QueryRowContext(ctx, lockVariantQuery, l.ProductID, l.ColorName).Scan(&stock, &name)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("color %q not found for product %d", l.ColorName, l.ProductID)
		}
		if err != nil {
			return err
		}
		if stock < l.Quantity {
			return &apperr.InsufficientStockError{ProductName: name, Available: stock, Requested: l.Quantity}
		}
		if _, err := tx.ExecContext(ctx, takeStockQuery, l.Quantity, l.ProductID, l.ColorName); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx returns quantities to stock. Variants removed from the catalog
// since are skipped.
func ReleaseTx(ctx context.Context, tx *sql.Tx, lines []StockLine) error {
	for _, l := range mergeLines(lines) {
		if _, err := tx.ExecContext(ctx, restoreStockQuery, l.Quantity, l.ProductID, l.ColorName); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, r.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) attachVariants(ctx context.Context, q querier, ps []Product) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]int, len(ps))
	pos := make(map[int]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
		pos[p.ID] = i
		ps[i].Colors = []Variant{}
	}
	rows, err := q.QueryContext(ctx, listVariantsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var productID int
		var v Variant
		if err := rows.Scan(&productID, &v.ColorName, &v.ColorImage, &v.Photos, pq.Array(&v.Sizes), pq.Array(&v.SeamSizes), &v.Stock); err != nil {
			return err
		}
		if i, ok := pos[productID]; ok {
			ps[i].Colors = append(ps[i].Colors, v)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner, total *int) (Product, error) {
	p := Product{}
	var categoryID, subcategoryID sql.NullInt64
	dest := []any{&p.ID, &p.Name, &p.Description, &p.Price, &categoryID, &subcategoryID, &p.AverageRating, &p.CreatedAt, &p.UpdatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := scanner.Scan(dest...); err != nil {
		return Product{}, err
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		p.CategoryID = &id
	}
	if subcategoryID.Valid {
		id := int(subcategoryID.Int64)
		p.SubcategoryID = &id
	}
	return p, nil
}
