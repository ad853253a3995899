package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresSource_CountsAndLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	src := NewPostgresSource(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Pending", 4).AddRow("Shipped", 2).AddRow("Delivered", 7))
	sc, err := src.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc != (StatusCount{Processing: 0, Shipped: 2, Delivered: 7}) {
		t.Fatalf("unexpected status counts %+v", sc)
	}

	mock.ExpectQuery("FROM orders ORDER BY created_at DESC").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "discount_amount", "total", "items", "status"}).
			AddRow(9, "2.50", "47.50", []byte(`[{"productId":1,"quantity":2},{"productId":3,"quantity":1}]`), "Processing"))
	latest, err := src.LatestOrders(ctx, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != 9 || latest[0].ItemCount != 2 || latest[0].Amount.String() != "47.5" {
		t.Fatalf("unexpected latest orders %+v", latest)
	}

	since := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM orders WHERE created_at >=").WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "total", "discount_amount"}).
			AddRow(time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), "100.00", "0"))
	orders, err := src.OrdersSince(ctx, since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := BuildHistogram(6, orders, ref, FieldTotal); got[5] != 100 {
		t.Fatalf("unexpected revenue histogram %v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
