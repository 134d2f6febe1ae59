package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore tracks live login sessions by id.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type memorySession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart and are not shared between instances.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return uuid.Nil, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemorySessionStore) DeleteUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemorySessionStore) Close() error {
	return nil
}

// RedisSessionStore keeps sessions in redis so several server instances
// share them. Each session is a key with a TTL; a per-user set indexes the
// sessions for account deletion.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore connects using a redis:// URL and pings the server.
func NewRedisSessionStore(ctx context.Context, url string) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisSessionStore{rdb: rdb}, nil
}

func sessionKey(sessionID string) string {
	return "notevault:session:" + sessionID
}

func userSessionsKey(userID uuid.UUID) string {
	return "notevault:user_sessions:" + userID.String()
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), userID.String(), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (uuid.UUID, error) {
	val, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	val, err := s.rdb.GetDel(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if userID, err := uuid.Parse(val); err == nil {
		s.rdb.SRem(ctx, userSessionsKey(userID), sessionID)
	}
	return nil
}

func (s *RedisSessionStore) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
