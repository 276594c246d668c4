package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned when a callback presents an unknown, expired
// or already-consumed state nonce.
var ErrStateNotFound = errors.New("oauth state not found")

// StateStore holds OAuth handshake state nonces. This is the only
// server-side session state in the system, and it lives exactly as long as
// the handshake: nonces expire on a TTL and are consumed on first use.
type StateStore interface {
	Put(ctx context.Context, state, provider string) error
	// Consume returns the provider the state was issued for and deletes it.
	Consume(ctx context.Context, state string) (string, error)
}

type memoryStateStore struct {
	c *cache.Cache
}

// NewMemoryStateStore is the single-instance store, used when no redis URL
// is configured.
func NewMemoryStateStore(ttl time.Duration) StateStore {
	return &memoryStateStore{c: cache.New(ttl, 2*ttl)}
}

func (s *memoryStateStore) Put(_ context.Context, state, provider string) error {
	s.c.SetDefault(state, provider)
	return nil
}

func (s *memoryStateStore) Consume(_ context.Context, state string) (string, error) {
	v, ok := s.c.Get(state)
	if !ok {
		return "", ErrStateNotFound
	}
	s.c.Delete(state)
	return v.(string), nil
}

type redisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore shares handshake state across instances.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) StateStore {
	return &redisStateStore{client: client, ttl: ttl}
}

func (s *redisStateStore) Put(ctx context.Context, state, provider string) error {
	if err := s.client.Set(ctx, stateKey(state), provider, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

func (s *redisStateStore) Consume(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateNotFound
		}
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return provider, nil
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
