package address

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getAddressQuery)).
		WithArgs(4, 11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "details", "created_at", "updated_at"}))

	_, err = NewPostgresRepository(db).Get(context.Background(), 4, 11)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList_DecodesDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	details := []byte(`{"fullName":"A","address":"1 Road","city":"C","state":"S","zipCode":"1","phoneNumber":"2","email":"a@b.c"}`)
	mock.ExpectQuery(regexp.QuoteMeta(listAddressesQuery)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "details", "created_at", "updated_at"}).
			AddRow(1, 4, "Home", details, now, now))

	list, err := NewPostgresRepository(db).List(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1 Road", list[0].Details.Address)
	assert.Empty(t, list[0].Details.Missing())
	require.NoError(t, mock.ExpectationsWereMet())
}
