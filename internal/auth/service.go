package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/accountgate/accountgate/internal/password"
	"github.com/accountgate/accountgate/internal/registration"
	"github.com/accountgate/accountgate/internal/session"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
// Callers must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service authenticates login attempts and issues sessions.
type Service struct {
	repo     registration.Repository
	hasher   password.Hasher
	sessions session.Store
}

// NewService wires the login workflow.
func NewService(repo registration.Repository, hasher password.Hasher, sessions session.Store) *Service {
	return &Service{repo: repo, hasher: hasher, sessions: sessions}
}

// Login checks the credentials against the stored digest and, on success,
// issues a new session the caller transports as a bearer credential.
func (s *Service) Login(ctx context.Context, username, plaintext string) (session.Session, error) {
	account, err := s.repo.FindAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			return session.Session{}, ErrInvalidCredentials
		}
		return session.Session{}, fmt.Errorf("look up account: %w", err)
	}

	if !s.hasher.Verify(plaintext, account.PasswordHash) {
		return session.Session{}, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return session.Session{}, fmt.Errorf("issue session: %w", err)
	}

	return sess, nil
}

// Logout discards the session behind the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
