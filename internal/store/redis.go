package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the shared client behind the change feed and the deep-link
// PIN staging.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects with short timeouts so a dead broker fails the request
// instead of hanging it. Feed subscribers hold their own blocking
// connections, unaffected by these.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy reports whether the broker answers a ping; /healthz folds this
// into the readiness verdict.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
