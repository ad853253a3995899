package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var productCols = []string{"id", "name", "description", "price", "category_id", "subcategory_id", "average_rating", "created_at", "updated_at"}
var variantCols = []string{"product_id", "color_name", "color_image", "photos", "sizes", "seam_sizes", "stock"}

func TestGetByID_LoadsVariants(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("FROM products p WHERE p.id = \\$1").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(5, "Denim Jacket", "d", "59.90", 2, nil, 4.5, now, now))
	mock.ExpectQuery("FROM product_variants").WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(variantCols).
			AddRow(5, "Blue", nil, []byte(`[{"publicId":"products/1","url":"https://img/1"}]`), "{S,M}", "{30,32}", 3).
			AddRow(5, "Black", nil, []byte(`[]`), "{L}", "{}", 0))

	p, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Denim Jacket" || p.Price.String() != "59.9" {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.CategoryID == nil || *p.CategoryID != 2 || p.SubcategoryID != nil {
		t.Fatalf("unexpected category refs %v %v", p.CategoryID, p.SubcategoryID)
	}
	if len(p.Colors) != 2 || p.Colors[0].Stock != 3 || len(p.Colors[0].SeamSizes) != 2 {
		t.Fatalf("unexpected variants %+v", p.Colors)
	}
	if u := p.PrimaryPhoto(); u == nil || *u != "https://img/1" {
		t.Fatalf("unexpected primary photo %v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products p WHERE p.id").WithArgs(9).WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReserve_InsufficientStockRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF v").WithArgs(1, "Red").
		WillReturnRows(sqlmock.NewRows([]string{"stock", "name"}).AddRow(5, "Tee"))
	mock.ExpectExec("UPDATE product_variants SET stock = stock -").WithArgs(2, 1, "Red").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE OF v").WithArgs(2, "Blue").
		WillReturnRows(sqlmock.NewRows([]string{"stock", "name"}).AddRow(2, "Hoodie"))
	mock.ExpectRollback()

	err = repo.Reserve(context.Background(), []StockLine{
		{ProductID: 2, ColorName: "Blue", Quantity: 3},
		{ProductID: 1, ColorName: "Red", Quantity: 2},
	})
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.ProductName != "Hoodie" || stockErr.Available != 2 || stockErr.Requested != 3 {
		t.Fatalf("unexpected error detail %+v", stockErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestList_BuildsFilterQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	cols := append(append([]string{}, productCols...), "count")
	mock.ExpectQuery("p.name ILIKE .* ORDER BY p.price ASC, p.id LIMIT \\$3").
		WithArgs("tee", sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Tee", "", "10", 1, nil, 0.0, now, now, 7))
	mock.ExpectQuery("FROM product_variants").WillReturnRows(sqlmock.NewRows(variantCols))

	page, err := repo.List(context.Background(), Filter{Keyword: "tee", Colors: []string{"Red"}, Sort: SortPriceAsc, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 7 || len(page.Products) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
