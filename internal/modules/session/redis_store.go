// README: Redis-backed session store (external cache variant, native key TTL).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:%s"

// RedisStore keeps sessions as JSON values with a rolling idle TTL.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	sess.ID = uuid.NewString()
	sess.LastActive = time.Now()
	return s.write(ctx, sess)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.redis.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	// Rolling TTL: reading a session keeps it alive.
	_ = s.redis.Expire(ctx, sessionKey(id), s.ttl).Err()
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.LastActive = time.Now()
	return s.write(ctx, sess)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisStore) write(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPrefix, id)
}
