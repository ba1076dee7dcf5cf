package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// FetchFunc produces a fresh value for a cache key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type envelope[T any] struct {
	Value     T     `json:"value"`
	FetchedAt int64 `json:"fetched_at"` // unix milliseconds
}

// Store is a typed, namespaced, stale-tolerant view over a backend Service.
//
// Entries are kept for the process lifetime (no backend expiration);
// freshness is decided against the envelope's fetch timestamp, so an
// expired entry can still be served when the upstream is down.
type Store[T any] struct {
	backend Service
	ns      string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a stale-tolerant store under the given namespace.
func NewStore[T any](backend Service, namespace string) *Store[T] {
	return &Store[T]{
		backend: backend,
		ns:      namespace,
		locks:   make(map[string]*sync.Mutex),
	}
}

// GetOrRefresh returns the cached value when it is younger than ttl,
// otherwise invokes fetch. A failed fetch falls back to the previous
// value, whatever its age; the freshness timestamp is left untouched
// so the next call retries the upstream immediately. The error is
// non-nil only when fetch fails and no prior value exists; the caller
// is expected to Seed a fallback in that case.
//
// Refreshes of the same key are serialized; different keys do not contend.
func (s *Store[T]) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	env, ok := s.load(ctx, key)
	if ok && time.Since(time.UnixMilli(env.FetchedAt)) < ttl {
		return env.Value, nil
	}

	value, err := fetch(ctx)
	if err == nil {
		// A backend write failure is not fatal: the fresh value is
		// still returned, it just won't survive as a stale fallback.
		_ = s.store(ctx, key, value, time.Now())
		return value, nil
	}

	if ok {
		return env.Value, nil
	}

	var zero T
	return zero, fmt.Errorf("fetch %s/%s: %w", s.ns, key, err)
}

// Seed stores a fallback value as if it had just been fetched, so the
// next GetOrRefresh within ttl serves it without touching the upstream.
func (s *Store[T]) Seed(ctx context.Context, key string, value T) error {
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store(ctx, key, value, time.Now()); err != nil {
		return fmt.Errorf("seed %s/%s: %w", s.ns, key, err)
	}
	return nil
}

func (s *Store[T]) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *Store[T]) load(ctx context.Context, key string) (envelope[T], bool) {
	var raw string
	if err := s.backend.Get(ctx, s.wrapKey(key), &raw); err != nil {
		return envelope[T]{}, false
	}

	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope[T]{}, false
	}
	return env, true
}

func (s *Store[T]) store(ctx context.Context, key string, value T, fetchedAt time.Time) error {
	b, err := json.Marshal(envelope[T]{Value: value, FetchedAt: fetchedAt.UnixMilli()})
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, s.wrapKey(key), string(b), 0)
}

func (s *Store[T]) wrapKey(key string) string {
	return s.ns + ":" + key
}
