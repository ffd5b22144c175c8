// Package deeplink turns /join/<pin> URLs into a staged, one-shot PIN. The
// resolver never submits attendance itself; it only seeds the PIN input for
// the next check-in by the same profile.
package deeplink

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var joinPath = regexp.MustCompile(`^/join/(\d{6})$`)

// ParsePath extracts the PIN from a /join/<pin> path. The second return is
// false when the path is not a well-formed join link.
func ParsePath(path string) (string, bool) {
	m := joinPath.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Stager holds at most one pending PIN per profile. Take consumes it: a
// staged PIN is returned exactly once.
type Stager interface {
	Stage(ctx context.Context, profileID, pin string) error
	// Take returns the staged PIN and clears it, or "" when none is pending.
	Take(ctx context.Context, profileID string) (string, error)
}

// RedisStager stages PINs in Redis with a TTL so abandoned links expire.
type RedisStager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStager builds a stager over an existing client.
func NewRedisStager(client *redis.Client, ttl time.Duration) *RedisStager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStager{client: client, ttl: ttl}
}

func stageKey(profileID string) string { return "pending_pin:" + profileID }

// Stage records the PIN for the profile, replacing any prior pending one.
func (s *RedisStager) Stage(ctx context.Context, profileID, pin string) error {
	return s.client.Set(ctx, stageKey(profileID), pin, s.ttl).Err()
}

// Take consumes the pending PIN via GETDEL.
func (s *RedisStager) Take(ctx context.Context, profileID string) (string, error) {
	pin, err := s.client.GetDel(ctx, stageKey(profileID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return pin, err
}

// MemStager is an in-process stager for dev/testing. Entries never expire.
type MemStager struct {
	mu      sync.Mutex
	pending map[string]string
}

// NewMemStager creates an empty stager.
func NewMemStager() *MemStager {
	return &MemStager{pending: make(map[string]string)}
}

// Stage records the PIN for the profile.
func (s *MemStager) Stage(_ context.Context, profileID, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[profileID] = pin
	return nil
}

// Take consumes the pending PIN.
func (s *MemStager) Take(_ context.Context, profileID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pin := s.pending[profileID]
	delete(s.pending, profileID)
	return pin, nil
}
