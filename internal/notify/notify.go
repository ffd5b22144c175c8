package notify

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Table names carried on the feed.
const (
	TableSessions   = "active_sessions"
	TableAttendance = "attendance"
)

// Row operations.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Notification signals that a row changed. It carries no payload; consumers
// re-fetch the affected state. Key scopes the notification: the department
// for sessions, the session id for attendance.
type Notification struct {
	Table string
	Op    string
	Key   string
}

// Feed is the abstraction over different change-feed backends.
type Feed interface {
	Publish(ctx context.Context, n Notification) error
	// Subscribe delivers notifications for (table, key) until ctx is
	// cancelled, at which point the returned channel is closed.
	Subscribe(ctx context.Context, table, key string) (<-chan Notification, error)
}

// InMemory is a channel-backed feed for dev/testing and single-process runs.
type InMemory struct {
	mu   sync.Mutex
	subs map[string][]chan Notification
}

// NewInMemory creates an in-process feed.
func NewInMemory() *InMemory {
	return &InMemory{subs: make(map[string][]chan Notification)}
}

// Publish fans the notification out to current subscribers. Sends never
// block: a subscriber with a full buffer already has a pending notification,
// and re-fetch-on-notify coalesces them.
func (f *InMemory) Publish(ctx context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[channelName(n.Table, n.Key)] {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Subscribe registers a scoped subscriber torn down when ctx is cancelled.
func (f *InMemory) Subscribe(ctx context.Context, table, key string) (<-chan Notification, error) {
	name := channelName(table, key)
	ch := make(chan Notification, 16)

	f.mu.Lock()
	f.subs[name] = append(f.subs[name], ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[name]
		for i, c := range subs {
			if c == ch {
				f.subs[name] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// RedisFeed carries notifications over Redis PUBLISH/SUBSCRIBE so every
// connected process sees them.
type RedisFeed struct {
	client *redis.Client
}

// NewRedisFeed builds a feed over an existing redis client.
func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

// Publish sends the op on the scoped channel.
func (f *RedisFeed) Publish(ctx context.Context, n Notification) error {
	return f.client.Publish(ctx, channelName(n.Table, n.Key), n.Op).Err()
}

// Subscribe streams notifications from the scoped channel until ctx ends.
func (f *RedisFeed) Subscribe(ctx context.Context, table, key string) (<-chan Notification, error) {
	sub := f.client.Subscribe(ctx, channelName(table, key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Notification, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				n := Notification{Table: table, Op: msg.Payload, Key: key}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func channelName(table, key string) string {
	return "feed:" + table + ":" + key
}
