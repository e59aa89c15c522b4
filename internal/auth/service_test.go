package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/accountgate/accountgate/internal/password"
	"github.com/accountgate/accountgate/internal/registration"
	"github.com/accountgate/accountgate/internal/session"
)

func seedAccount(t *testing.T, repo *registration.MemoryRepository, username, plaintext string) registration.Account {
	t.Helper()

	digest, err := (password.Bcrypt{Cost: 4}).Hash(plaintext)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	account := registration.Account{ID: "account-1", Username: username, PasswordHash: digest, Email: "test@gmail.com"}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestLoginIssuesSession(t *testing.T) {
	repo := registration.NewMemoryRepository()
	store := session.NewMemoryStore()
	svc := NewService(repo, password.Bcrypt{Cost: 4}, store)
	ctx := context.Background()

	account := seedAccount(t, repo, "user_name", "password")

	sess, err := svc.Login(ctx, "user_name", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected a session token")
	}
	if sess.AccountID != account.ID {
		t.Fatalf("expected session bound to account %s, got %s", account.ID, sess.AccountID)
	}

	stored, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("expected session to be persisted: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatalf("expected session creation timestamp")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := registration.NewMemoryRepository()
	store := session.NewMemoryStore()
	svc := NewService(repo, password.Bcrypt{Cost: 4}, store)
	ctx := context.Background()

	seedAccount(t, repo, "user_name", "password")

	_, wrongPass := svc.Login(ctx, "user_name", "not-the-password")
	_, unknownUser := svc.Login(ctx, "no_such_user", "password")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatalf("failure messages must match: %q vs %q", wrongPass.Error(), unknownUser.Error())
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	repo := registration.NewMemoryRepository()
	store := session.NewMemoryStore()
	svc := NewService(repo, password.Bcrypt{Cost: 4}, store)
	ctx := context.Background()

	seedAccount(t, repo, "user_name", "password")

	sess, err := svc.Login(ctx, "user_name", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session to be gone, got %v", err)
	}
}
