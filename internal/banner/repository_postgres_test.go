package banner

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

var bannerRowColumns = []string{"id", "slot", "title", "heading", "description", "link", "photos", "created_at", "updated_at"}

func TestPostgresListBySlot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(listBySlotQuery)).
		WithArgs("hero").
		WillReturnRows(sqlmock.NewRows(bannerRowColumns).
			AddRow(2, "hero", "Autumn", "", "", "/autumn", []byte(`[{"publicId":"banners/a","url":"https://img.test/banners/a"}]`), now, now))

	items, err := NewPostgresRepository(db).ListBySlot(context.Background(), SlotHero)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, SlotHero, items[0].Slot)
	assert.Equal(t, "Autumn", items[0].Title)
	assert.Equal(t, []string{"banners/a"}, items[0].Photos.PublicIDs())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getBannerQuery)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(bannerRowColumns))

	_, err = NewPostgresRepository(db).GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_KeepsSlot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(updateBannerQuery)).
		WithArgs("New", "", "", "", sqlmock.AnyArg(), 2).
		WillReturnRows(sqlmock.NewRows([]string{"slot", "created_at", "updated_at"}).AddRow("third", now, now.Add(time.Hour)))

	b, err := NewPostgresRepository(db).Update(context.Background(), Banner{ID: 2, Title: "New", Photos: imagestore.Images{}})
	require.NoError(t, err)
	assert.Equal(t, SlotThird, b.Slot)
	require.NoError(t, mock.ExpectationsWereMet())
}
