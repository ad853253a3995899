package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/storefront-backend/internal/database"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns         = `id, name, email, password, role, avatar_id, avatar_url, created_at, updated_at`
	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	insertUserQuery     = `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1,
			role = $2,
			avatar_id = $3,
			avatar_url = $4,
			updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRowContext(ctx, insertUserQuery, user.Name, user.Email, user.Password, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user User) (User, error) {
	var avatarID, avatarURL sql.NullString
	if user.Avatar != nil {
		avatarID = sql.NullString{String: user.Avatar.PublicID, Valid: true}
		avatarURL = sql.NullString{String: user.Avatar.URL, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, updateUserQuery, user.Name, user.Role, avatarID, avatarURL, user.ID).
		Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, user.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		user      User
		avatarID  sql.NullString
		avatarURL sql.NullString
	)
	err := scanner.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &avatarID, &avatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	if avatarID.Valid || avatarURL.Valid {
		user.Avatar = &imagestore.Image{PublicID: avatarID.String, URL: avatarURL.String}
	}
	return user, nil
}
