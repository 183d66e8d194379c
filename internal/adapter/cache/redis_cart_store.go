package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const cartMaxRetries = 5

var ErrCartContention = errors.New("cart update conflicted too many times")

// RedisCartStore keeps one JSON document per session under cart:<sid>.
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

func decodeCart(raw []byte) (domain.CartState, error) {
	var st domain.CartState
	if len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.CartState{}, fmt.Errorf("decode cart: %w", err)
	}
	return st, nil
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (domain.CartState, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartState{}, nil
	}
	if err != nil {
		return domain.CartState{}, err
	}
	return decodeCart(raw)
}

// Update runs fn under WATCH so a concurrent write from another tab aborts
// the EXEC and the whole read-modify-write is retried.
func (s *RedisCartStore) Update(ctx context.Context, sessionID string, fn func(*domain.CartState) error) (domain.CartState, error) {
	key := cartKey(sessionID)
	var out domain.CartState

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		st, err := decodeCart(raw)
		if err != nil {
			return err
		}
		if err := fn(&st); err != nil {
			return err
		}
		body, err := json.Marshal(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if st.IsEmpty() {
				p.Del(ctx, key)
				return nil
			}
			p.Set(ctx, key, body, s.ttl)
			return nil
		})
		if err == nil {
			out = st
		}
		return err
	}

	for i := 0; i < cartMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.CartState{}, err
	}
	return domain.CartState{}, ErrCartContention
}

func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

var _ usecase.CartStore = (*RedisCartStore)(nil)
