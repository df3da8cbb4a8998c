// Package idempotency remembers the response of a mutating request under a
// client-supplied key so a retried request is answered without repeating the
// side effect.
package idempotency

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInFlight means another request with the same key has not finished.
	ErrInFlight = errors.New("idempotency: request with this key is still in progress")
	ErrNotFound = errors.New("idempotency: key not found")
)

type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store interface {
	// Begin reserves key. It returns the stored response when the key already
	// completed, ErrInFlight when it is reserved but not completed.
	Begin(ctx context.Context, key string) (*Response, error)
	Complete(ctx context.Context, key string, resp Response) error
	// Abandon releases a reservation so the client can retry.
	Abandon(ctx context.Context, key string) error
}

const pendingMarker = "pending"

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "idem:"}
}

func (s *RedisStore) Begin(ctx context.Context, key string) (*Response, error) {
	k := s.prefix + key
	ok, err := s.rdb.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as fresh
		return s.Begin(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if string(raw) == pendingMarker {
		return nil, ErrInFlight
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return &resp, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, raw, s.ttl).Err()
}

func (s *RedisStore) Abandon(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

// NewRedisClient connects to addr and pings it. It returns nil when the
// server cannot be reached; callers fall back to MemoryStore.
func NewRedisClient(addr, password string, db int, useTLS bool) *redis.Client {
	if addr == "" {
		return nil
	}
	var tlsConf *tls.Config
	if useTLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  password,
		DB:        db,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// MemoryStore is a process-local Store for single-instance deployments and
// tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	resp    *Response
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStore) Begin(_ context.Context, key string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		if e.resp == nil {
			return nil, ErrInFlight
		}
		r := *e.resp
		return &r, nil
	}
	s.entries[key] = memoryEntry{expires: now.Add(s.ttl)}
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{resp: &resp, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Abandon(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
