package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore keeps everything in a ttlcache. Used for tests and for dev
// runs where no store path is configured.
type MemoryStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()
	return &MemoryStore{cache: cache}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, ErrKeyNotFound
	}
	return item.Value(), nil
}

func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64 = 1
	if item := s.cache.Get(key); item != nil {
		current, err := strconv.ParseInt(string(item.Value()), 10, 64)
		if err == nil {
			next = current + 1
		}
		remaining := ttlcache.NoTTL
		if exp := item.ExpiresAt(); !exp.IsZero() {
			remaining = time.Until(exp)
			if remaining <= 0 {
				remaining = time.Second
			}
		}
		s.cache.Set(key, []byte(strconv.FormatInt(next, 10)), remaining)
		return next, nil
	}

	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(key, []byte("1"), ttl)
	return next, nil
}

func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
