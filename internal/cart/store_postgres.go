package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/storefront-backend/internal/database"
)

type PostgresStore struct {
	db *sql.DB
}

const (
	loadContainerQuery   = `SELECT items, version FROM line_item_containers WHERE user_id = $1 AND kind = $2`
	insertContainerQuery = `
        INSERT INTO line_item_containers (user_id, kind, items, version)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (user_id, kind) DO NOTHING
    `
	updateContainerQuery = `
        UPDATE line_item_containers
        SET items = $3, version = version + 1, updated_at = now()
        WHERE user_id = $1 AND kind = $2 AND version = $4
    `
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, userID int, kind Kind) (Container, error) {
	c := Container{UserID: userID, Kind: kind, Items: Items{}}
	err := s.db.QueryRowContext(ctx, loadContainerQuery, userID, string(kind)).Scan(&c.Items, &c.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return Container{}, err
	}
	return c, nil
}

func (s *PostgresStore) Save(ctx context.Context, c Container) (Container, error) {
	return save(ctx, s.db, c)
}

func (s *PostgresStore) SaveAll(ctx context.Context, cs ...Container) ([]Container, error) {
	out := make([]Container, 0, len(cs))
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, c := range cs {
			saved, err := save(ctx, tx, c)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// save inserts a first version or updates the row only if nobody else
// saved since c was loaded.
func save(ctx context.Context, db execer, c Container) (Container, error) {
	var (
		res sql.Result
		err error
	)
	if c.Version == 0 {
		res, err = db.ExecContext(ctx, insertContainerQuery, c.UserID, string(c.Kind), c.Items)
	} else {
		res, err = db.ExecContext(ctx, updateContainerQuery, c.UserID, string(c.Kind), c.Items, c.Version)
	}
	if err != nil {
		return Container{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Container{}, err
	}
	if n == 0 {
		return Container{}, ErrStale
	}
	c.Version++
	return c, nil
}
