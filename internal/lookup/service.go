package lookup

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"studiodesk/internal/domain"
	"studiodesk/internal/repository"
)

const DefaultTTL = 12 * time.Hour

var ErrUnknownEnum = errors.New("unknown enumeration")

// Source loads enumeration values from the database.
type Source interface {
	Values(ctx context.Context, name string) ([]string, error)
}

type Options struct {
	ForceRefresh bool
	TTL          time.Duration
}

// Service serves enum lookups from a TTL cache. When the source fails the
// built-in values are served and cached in its place.
type Service struct {
	source Source
	store  Store
	ttl    time.Duration
	sf     singleflight.Group
}

func NewService(source Source, store Store, ttl time.Duration) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{source: source, store: store, ttl: ttl}
}

func (s *Service) EnumValues(ctx context.Context, name string, opts Options) ([]string, error) {
	if domain.DefaultEnumValues(name) == nil {
		return nil, ErrUnknownEnum
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}
	key := KeyEnum(name)

	if !opts.ForceRefresh {
		if v, ok := s.cached(ctx, key); ok {
			return v, nil
		}
	}

	vAny, _, _ := s.sf.Do(key, func() (any, error) {
		if !opts.ForceRefresh {
			if v, ok := s.cached(ctx, key); ok {
				return v, nil
			}
		}
		values := s.load(ctx, name)
		if err := s.store.Set(ctx, key, values, ttl); err != nil {
			log.Printf("lookup_cache_set_failed enum=%s error=%v", name, err)
		}
		return values, nil
	})

	values, _ := vAny.([]string)
	return append([]string(nil), values...), nil
}

// Invalidate drops the cached values of the named enumerations.
func (s *Service) Invalidate(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, KeyEnum(n))
	}
	return s.store.Del(ctx, keys...)
}

func (s *Service) cached(ctx context.Context, key string) ([]string, bool) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("lookup_cache_get_failed key=%s error=%v", key, err)
		return nil, false
	}
	return v, ok
}

func (s *Service) load(ctx context.Context, name string) []string {
	values, err := s.source.Values(ctx, name)
	if err != nil {
		log.Printf("lookup_source_failed enum=%s schema=%t error=%v fallback=builtin", name, repository.IsSchemaError(err), err)
		return domain.DefaultEnumValues(name)
	}
	if len(values) == 0 {
		return domain.DefaultEnumValues(name)
	}
	return values
}
