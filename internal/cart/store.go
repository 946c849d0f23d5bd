package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps one cart per session id. Get on an unknown key returns an empty cart.
type Store interface {
	Get(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	cart      Cart
	expiresAt time.Time
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[key]
	if !ok {
		return New(), nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.carts, key)
		return New(), nil
	}
	c := Cart{Lines: append([]Item{}, e.cart.Lines...)}
	return &c, nil
}

// Save stores c until ttl elapses. A non-positive ttl keeps it indefinitely.
func (s *MemoryStore) Save(_ context.Context, key string, c *Cart, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{cart: Cart{Lines: append([]Item{}, c.Lines...)}}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.carts[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

// RedisStore keeps carts as JSON values under "cart:<session id>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "cart:"}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Cart, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(), nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, c *Cart, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.prefix+key, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
