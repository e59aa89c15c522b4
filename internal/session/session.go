// Package session persists bearer-token sessions issued on successful login.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound marks a token with no live session record.
var ErrNotFound = errors.New("session not found")

// Session is evidence of a prior successful login. It expires purely by age;
// no sliding expiry.
type Session struct {
	Token     string    `json:"-"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions keyed by their opaque token.
type Store interface {
	// Create issues a new unguessable token for the account.
	Create(ctx context.Context, accountID string) (Session, error)
	// Get returns the session for the token, or ErrNotFound.
	Get(ctx context.Context, token string) (Session, error)
	// Delete removes the session. Deleting an absent token is a no-op.
	Delete(ctx context.Context, token string) error
}
