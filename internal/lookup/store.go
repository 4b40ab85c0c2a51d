package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const ns = "studiodesk:v1"

func KeyEnum(name string) string {
	return fmt.Sprintf("%s:enum:%s", ns, name)
}

// Store holds cached lookup values with a per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, values []string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type entry struct {
	values  []string
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expires) {
		return nil, false, nil
	}
	return append([]string(nil), e.values...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, values []string, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry{values: append([]string(nil), values...), expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
	return nil
}

// RedisStore keeps lookup values as JSON strings in Redis so every API
// instance shares one cache.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{rdb: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, values []string, ttl time.Duration) error {
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, string(b), ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	const op = "lookup.NewRedisClient"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := client.Ping(ctxPing).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}
