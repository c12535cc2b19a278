package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, sid string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, sid string) (uint, error)
	Destroy(ctx context.Context, sid string) error
}

type RedisStore struct {
	Client *redis.Client
}

func redisKey(sid string) string { return "session:" + sid }

func (s *RedisStore) Save(ctx context.Context, sid string, userID uint, ttl time.Duration) error {
	return s.Client.Set(ctx, redisKey(sid), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, sid string) (uint, error) {
	val, err := s.Client.Get(ctx, redisKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return uint(id), nil
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	return s.Client.Del(ctx, redisKey(sid)).Err()
}

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore is the fallback when Redis is unavailable, and the store used
// by the tests. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, sid string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memoryEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, sid string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sid]
	if !ok {
		return 0, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, sid)
		return 0, ErrNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
