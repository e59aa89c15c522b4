package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Seed inserts a session with a caller-chosen token and creation time.
// Test helper for exercising age-based expiry.
func Seed(ctx context.Context, st Store, sess Session) error {
	switch s := st.(type) {
	case *MemoryStore:
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sessions[sess.Token] = sess
		return nil
	case *RedisStore:
		payload, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		return s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err()
	default:
		return fmt.Errorf("unsupported store type %T", st)
	}
}
