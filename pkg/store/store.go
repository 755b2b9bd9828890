package store

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

var ErrNotFound = errors.New("order not found")

// Store indexes resting orders by order ID.
// The engine uses it to resolve cancel(order_id) without scanning the books.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]*model.Order),
	}
}

func (s *Store) Add(o *model.Order) {
	s.mu.Lock()
	s.orders[o.ID()] = o
	s.mu.Unlock()
}

func (s *Store) Get(id string) (*model.Order, error) {
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.WithStack(ErrNotFound)
	}
	return o, nil
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	_, ok := s.orders[id]
	s.mu.RUnlock()
	return ok
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return errors.WithStack(ErrNotFound)
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
