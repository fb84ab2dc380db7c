package usage

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 24 * time.Hour

// RedisCounterStore keeps session counters in Redis. Keys expire with the
// session TTL, which is the only way a counter ever resets.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(addr string) *RedisCounterStore {
	return &RedisCounterStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func sessionKey(sessionID string) string {
	return "session_generations:" + sessionID
}

func (s *RedisCounterStore) Get(ctx context.Context, sessionID string) (int, error) {
	used, err := s.client.Get(ctx, sessionKey(sessionID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return used, nil
}

func (s *RedisCounterStore) Increment(ctx context.Context, sessionID string) (int, error) {
	key := sessionKey(sessionID)
	used, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Refresh the TTL so the counter lives as long as the session stays
	// active, not 24h from the first generation.
	s.client.Expire(ctx, key, sessionTTL)
	return int(used), nil
}

func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

// MemoryCounterStore is the single-node fallback and the test double.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]int)}
}

func (s *MemoryCounterStore) Get(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[sessionID], nil
}

func (s *MemoryCounterStore) Increment(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[sessionID]++
	return s.counters[sessionID], nil
}
