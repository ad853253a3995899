package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrStale reports that the container changed between load and save.
var ErrStale = errors.New("container was modified concurrently")

// Store persists containers with optimistic locking: a save succeeds only
// when the stored version still equals the loaded one.
type Store interface {
	// Load returns an empty container with version 0 when none exists yet.
	Load(ctx context.Context, userID int, kind Kind) (Container, error)
	Save(ctx context.Context, c Container) (Container, error)
	// SaveAll writes every container or none of them.
	SaveAll(ctx context.Context, cs ...Container) ([]Container, error)
}

type storeKey struct {
	userID int
	kind   Kind
}

type InMemoryStore struct {
	mu   sync.Mutex
	data map[storeKey]Container
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: map[storeKey]Container{}}
}

func (s *InMemoryStore) Load(_ context.Context, userID int, kind Kind) (Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[storeKey{userID, kind}]
	if !ok {
		return Container{UserID: userID, Kind: kind, Items: Items{}}, nil
	}
	return c.clone(), nil
}

func (s *InMemoryStore) Save(ctx context.Context, c Container) (Container, error) {
	out, err := s.SaveAll(ctx, c)
	if err != nil {
		return Container{}, err
	}
	return out[0], nil
}

func (s *InMemoryStore) SaveAll(_ context.Context, cs ...Container) ([]Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		if s.data[storeKey{c.UserID, c.Kind}].Version != c.Version {
			return nil, ErrStale
		}
	}
	out := make([]Container, 0, len(cs))
	for _, c := range cs {
		c = c.clone()
		c.Version++
		s.data[storeKey{c.UserID, c.Kind}] = c
		out = append(out, c.clone())
	}
	return out, nil
}
