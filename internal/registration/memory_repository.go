package registration

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for development and tests. It
// mirrors the storage-level uniqueness guarantees of the Postgres schema.
type MemoryRepository struct {
	mu       sync.Mutex
	pending  map[string]PendingRegistration // keyed by username
	byToken  map[string]string              // token -> username
	accounts map[string]Account             // keyed by username
	byID     map[string]string              // id -> username
}

// NewMemoryRepository builds an empty in-memory registration store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pending:  make(map[string]PendingRegistration),
		byToken:  make(map[string]string),
		accounts: make(map[string]Account),
		byID:     make(map[string]string),
	}
}

func (r *MemoryRepository) AccountNameTaken(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.accounts[username]
	return taken, nil
}

func (r *MemoryRepository) PendingNameTaken(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.pending[username]
	return taken, nil
}

func (r *MemoryRepository) CreatePending(_ context.Context, pending PendingRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pending[pending.Username]; exists {
		return ErrDuplicateName
	}
	r.pending[pending.Username] = pending
	r.byToken[pending.Token] = pending.Username
	return nil
}

func (r *MemoryRepository) DeletePendingByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if username, ok := r.byToken[token]; ok {
		delete(r.pending, username)
		delete(r.byToken, token)
	}
	return nil
}

func (r *MemoryRepository) ConsumePendingByToken(_ context.Context, token string) (PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username, ok := r.byToken[token]
	if !ok {
		return PendingRegistration{}, ErrNotFound
	}
	pending := r.pending[username]
	delete(r.pending, username)
	delete(r.byToken, token)
	return pending, nil
}

func (r *MemoryRepository) CreateAccount(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Username]; exists {
		return ErrDuplicateName
	}
	r.accounts[account.Username] = account
	r.byID[account.ID] = account.Username
	return nil
}

func (r *MemoryRepository) FindAccountByUsername(_ context.Context, username string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[username]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (r *MemoryRepository) FindAccountByID(_ context.Context, id string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return r.accounts[username], nil
}

// PendingCount reports how many staged signups exist. Test helper.
func (r *MemoryRepository) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// AccountCount reports how many permanent accounts exist. Test helper.
func (r *MemoryRepository) AccountCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}
