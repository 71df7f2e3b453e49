package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"github.com/go-redis/redis/v8"
)

// ErrNoRedirect means the session has no pending payment URL.
var ErrNoRedirect = errors.New("no pending payment redirect")

// RedirectStore persists the last-issued payment gateway URL per session,
// so a reload during the countdown window can still reach the gateway.
type RedirectStore interface {
	Save(ctx context.Context, sessionID, url string) error
	Get(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

const redirectKeyPrefix = "checkout:redirect:"

// RedisRedirectStore keeps pending redirect URLs in Redis with a TTL, the
// server-side analogue of the browser's well-known localStorage key.
type RedisRedirectStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRedirectStore(cfg *config.RedisConfig, ttl time.Duration) *RedisRedirectStore {
	return &RedisRedirectStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		ttl: ttl,
	}
}

func (s *RedisRedirectStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisRedirectStore) Save(ctx context.Context, sessionID, url string) error {
	return s.client.Set(ctx, redirectKeyPrefix+sessionID, url, s.ttl).Err()
}

func (s *RedisRedirectStore) Get(ctx context.Context, sessionID string) (string, error) {
	url, err := s.client.Get(ctx, redirectKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoRedirect
		}
		return "", err
	}
	return url, nil
}

func (s *RedisRedirectStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, redirectKeyPrefix+sessionID).Err()
}

func (s *RedisRedirectStore) Close() error {
	return s.client.Close()
}

// MemoryRedirectStore is an in-process RedirectStore for tests and local
// development without Redis.
type MemoryRedirectStore struct {
	mu   sync.Mutex
	urls map[string]string
}

func NewMemoryRedirectStore() *MemoryRedirectStore {
	return &MemoryRedirectStore{urls: make(map[string]string)}
}

func (s *MemoryRedirectStore) Save(_ context.Context, sessionID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[sessionID] = url
	return nil
}

func (s *MemoryRedirectStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.urls[sessionID]
	if !ok {
		return "", ErrNoRedirect
	}
	return url, nil
}

func (s *MemoryRedirectStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.urls, sessionID)
	return nil
}
