package webhook

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard remembers accepted event IDs.
// Seen records id for ttl and reports whether it had already been recorded.
// Forget drops id again so that a redelivery of an event whose processing
// failed is accepted.
type ReplayGuard interface {
	Seen(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, id string) error
}

type replayEntry struct {
	id        string
	expiresAt time.Time
}

// MemoryReplayGuard is an in-process ReplayGuard bounded by capacity.
// When full, the least recently recorded ID is forgotten first.
// Safe for concurrent use.
type MemoryReplayGuard struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
	now      func() time.Time
}

// NewMemoryReplayGuard creates a guard remembering at most capacity IDs.
// Non-positive capacity defaults to 10000.
func NewMemoryReplayGuard(capacity int) *MemoryReplayGuard {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryReplayGuard{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Seen implements ReplayGuard.
func (g *MemoryReplayGuard) Seen(_ context.Context, id string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if elem, ok := g.items[id]; ok {
		entry := elem.Value.(*replayEntry)
		if now.Before(entry.expiresAt) {
			return true, nil
		}
		entry.expiresAt = now.Add(ttl)
		g.order.MoveToFront(elem)
		return false, nil
	}

	g.items[id] = g.order.PushFront(&replayEntry{id: id, expiresAt: now.Add(ttl)})
	for g.order.Len() > g.capacity {
		oldest := g.order.Back()
		g.order.Remove(oldest)
		delete(g.items, oldest.Value.(*replayEntry).id)
	}
	return false, nil
}

// Forget implements ReplayGuard.
func (g *MemoryReplayGuard) Forget(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if elem, ok := g.items[id]; ok {
		g.order.Remove(elem)
		delete(g.items, id)
	}
	return nil
}

// Len returns the number of remembered IDs, expired ones included.
func (g *MemoryReplayGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order.Len()
}

// RedisReplayGuard shares accepted event IDs between processes through Redis.
type RedisReplayGuard struct {
	client redis.Cmdable
	prefix string
}

// NewRedisReplayGuard creates a guard storing keys as prefix+id.
// An empty prefix defaults to "magpie:webhook:".
func NewRedisReplayGuard(client redis.Cmdable, prefix string) *RedisReplayGuard {
	if prefix == "" {
		prefix = "magpie:webhook:"
	}
	return &RedisReplayGuard{client: client, prefix: prefix}
}

// Seen implements ReplayGuard with an atomic SET NX.
func (g *RedisReplayGuard) Seen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+id, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, errors.Join(ErrReplayStore, err)
	}
	return !ok, nil
}

// Forget implements ReplayGuard with DEL.
func (g *RedisReplayGuard) Forget(ctx context.Context, id string) error {
	if err := g.client.Del(ctx, g.prefix+id).Err(); err != nil {
		return errors.Join(ErrReplayStore, err)
	}
	return nil
}
