package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var userCols = []string{"id", "name", "email", "password", "role", "avatar_id", "avatar_url", "created_at", "updated_at"}

func TestPostgresGetByEmail_ScansAvatar(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(4, "Ann", "a@example.com", "$2a$hash", "admin", "avatars/img-1", "https://img/1", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 4 || u.Role != "admin" || u.Avatar == nil || u.Avatar.PublicID != "avatars/img-1" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ann", "a@example.com", "hash", "user").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.Create(context.Background(), User{Name: "Ann", Email: "a@example.com", Password: "hash", Role: "user"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPostgresGetByID_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs(9).WillReturnRows(sqlmock.NewRows(userCols))
	_, err = NewPostgresRepository(db).GetByID(context.Background(), 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
