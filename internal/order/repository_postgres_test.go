package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

func sampleOrder() Order {
	return Order{
		UserID:        3,
		Items:         Lines{{ProductID: 1, Name: "Oxford Shirt", Quantity: 2, Price: decimal.NewFromInt(40), ColorName: "White"}},
		Shipping:      shipping(),
		Subtotal:      decimal.NewFromInt(80),
		Total:         decimal.NewFromInt(80),
		PaymentMethod: PaymentMethodPaypal,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
	}
}

func TestPostgresPlace_ReservesAndInsertsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM product_variants v`).
		WithArgs(1, "White").
		WillReturnRows(sqlmock.NewRows([]string{"stock", "name"}).AddRow(5, "Oxford Shirt"))
	mock.ExpectExec(`UPDATE product_variants SET stock = stock - \$1`).
		WithArgs(2, 1, "White").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))
	mock.ExpectCommit()

	o, err := NewPostgresRepository(db).Place(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, 11, o.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlace_ShortStockRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM product_variants v`).
		WithArgs(1, "White").
		WillReturnRows(sqlmock.NewRows([]string{"stock", "name"}).AddRow(1, "Oxford Shirt"))
	mock.ExpectRollback()

	_, err = NewPostgresRepository(db).Place(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStatus_DistinguishesMissingFromChanged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(updateStatusQuery)).
		WithArgs("Processing", 4, "Pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(orderExistsQuery)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = NewPostgresRepository(db).UpdateStatus(context.Background(), 4, StatusPending, StatusProcessing)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClaimReview_NoEligibleLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs(3, 7, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresRepository(db).ClaimReview(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrNotReviewable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReleaseReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(releaseReviewQuery)).
		WithArgs(2, 7, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(releaseReviewQuery)).
		WithArgs(9, 7, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.ReleaseReview(context.Background(), 2, 7))
	assert.ErrorIs(t, repo.ReleaseReview(context.Background(), 9, 7), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
