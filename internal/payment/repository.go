package payment

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	List(ctx context.Context) ([]Payment, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Payment
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now().UTC()
	r.items = append(r.items, p)
	return p, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Payment{}, r.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertPaymentQuery = `
		INSERT INTO payments (order_id, payment_id, payer_id, status, amount, currency)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`
	listPaymentsQuery = `SELECT id, order_id, payment_id, payer_id, status, amount, currency, created_at FROM payments ORDER BY created_at DESC, id DESC`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p Payment) (Payment, error) {
	err := r.db.QueryRowContext(ctx, insertPaymentQuery, p.OrderID, p.PaymentID, p.PayerID, p.Status, p.Amount, p.Currency).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, listPaymentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.PaymentID, &p.PayerID, &p.Status, &p.Amount, &p.Currency, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
