package coupon

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

func TestPostgresGetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expiry := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(getByCodeQuery)).
		WithArgs("SAVE20").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount", "expiry_date", "is_active", "created_at"}).
			AddRow(4, "SAVE20", "20", expiry, true, expiry.Add(-720*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(getByCodeQuery)).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount", "expiry_date", "is_active", "created_at"}))

	repo := NewPostgresRepository(db)
	c, err := repo.GetByCode(context.Background(), "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, 4, c.ID)
	assert.True(t, c.Discount.Equal(decimal.NewFromInt(20)))
	assert.True(t, c.ExpiryDate.Equal(expiry))

	_, err = repo.GetByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DuplicateCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(insertCouponQuery)).
		WithArgs("SAVE20", sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = NewPostgresRepository(db).Create(context.Background(), Coupon{Code: "SAVE20", Discount: decimal.NewFromInt(20), ExpiryDate: time.Now(), IsActive: true})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteCouponQuery)).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewPostgresRepository(db).Delete(context.Background(), 9), apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
