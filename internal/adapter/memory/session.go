package memory

import (
	"context"
	"strconv"
	"sync"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]domain.CartState
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string]domain.CartState{}}
}

func (c *CartStore) Load(_ context.Context, sessionID string) (domain.CartState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.carts[sessionID].Clone(), nil
}

func (c *CartStore) Update(_ context.Context, sessionID string, fn func(*domain.CartState) error) (domain.CartState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.carts[sessionID].Clone()
	if err := fn(&st); err != nil {
		return domain.CartState{}, err
	}
	if st.IsEmpty() {
		delete(c.carts, sessionID)
	} else {
		c.carts[sessionID] = st
	}
	return st.Clone(), nil
}

func (c *CartStore) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, sessionID)
	return nil
}

type IdempotencyStore struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *IdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if _, done := s.values[k]; !done {
		delete(s.locks, k)
	}
	return nil
}

func (s *IdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *IdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

type StatusCache struct {
	mu sync.Mutex
	m  map[string]domain.Status
}

func NewStatusCache() *StatusCache {
	return &StatusCache{m: map[string]domain.Status{}}
}

func (c *StatusCache) SetStatus(_ context.Context, orderID int64, status domain.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[strconv.FormatInt(orderID, 10)] = status
	return nil
}

func (c *StatusCache) GetStatus(_ context.Context, orderID int64) (domain.Status, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.m[strconv.FormatInt(orderID, 10)]
	return st, ok, nil
}

var (
	_ usecase.CartStore        = (*CartStore)(nil)
	_ usecase.IdempotencyStore = (*IdempotencyStore)(nil)
	_ usecase.OrderCache       = (*StatusCache)(nil)
)
