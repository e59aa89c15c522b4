package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:v1:"

// RedisStore keeps session records in Redis as JSON payloads. The key TTL
// matches the validity window, but the recorded creation time stays the
// authoritative input for the age check at the request gate.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed session store with the given validity window.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// Create issues and persists a new session token.
func (s *RedisStore) Create(ctx context.Context, accountID string) (Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		CreatedAt: s.now().UTC(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}

	return sess, nil
}

// Get fetches the session for a token.
func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("fetch session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	return sess, nil
}

// Delete removes the session record.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
