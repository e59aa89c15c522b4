package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists accounts and staged signups. Uniqueness of usernames
// and tokens is enforced by the storage layer, not by the callers' pre-checks.
type Repository interface {
	AccountNameTaken(ctx context.Context, username string) (bool, error)
	PendingNameTaken(ctx context.Context, username string) (bool, error)

	// CreatePending stages a signup. It returns ErrDuplicateName when the
	// username lost a concurrent race to the uniqueness constraint.
	CreatePending(ctx context.Context, pending PendingRegistration) error
	DeletePendingByToken(ctx context.Context, token string) error

	// ConsumePendingByToken atomically removes and returns the staged signup
	// for the token, making the token single-use. Returns ErrNotFound when
	// the token is unknown or already consumed.
	ConsumePendingByToken(ctx context.Context, token string) (PendingRegistration, error)

	CreateAccount(ctx context.Context, account Account) error
	FindAccountByUsername(ctx context.Context, username string) (Account, error)
	FindAccountByID(ctx context.Context, id string) (Account, error)
}

const uniqueViolationCode = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed registration repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AccountNameTaken reports whether a permanent account holds the username.
func (r *PostgresRepository) AccountNameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken)
	return taken, err
}

// PendingNameTaken reports whether a staged signup holds the username.
func (r *PostgresRepository) PendingNameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staged_signups WHERE username = $1)`, username).Scan(&taken)
	return taken, err
}

// CreatePending stages a signup row.
func (r *PostgresRepository) CreatePending(ctx context.Context, pending PendingRegistration) error {
	token, err := uuid.Parse(pending.Token)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO staged_signups (username, password_hash, email, token, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		pending.Username, pending.PasswordHash, pending.Email, token, pending.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// DeletePendingByToken discards a staged signup.
func (r *PostgresRepository) DeletePendingByToken(ctx context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM staged_signups WHERE token = $1`, id)
	return err
}

// ConsumePendingByToken deletes the staged signup and returns it in one
// statement so concurrent redeemers cannot both observe the row.
func (r *PostgresRepository) ConsumePendingByToken(ctx context.Context, token string) (PendingRegistration, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return PendingRegistration{}, ErrNotFound
	}

	row := r.db.QueryRow(ctx, `DELETE FROM staged_signups WHERE token = $1
        RETURNING username, password_hash, email, token, created_at`, id)

	var (
		tok       uuid.UUID
		createdAt time.Time
		pending   PendingRegistration
	)
	if err := row.Scan(&pending.Username, &pending.PasswordHash, &pending.Email, &tok, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PendingRegistration{}, ErrNotFound
		}
		return PendingRegistration{}, err
	}
	pending.Token = tok.String()
	pending.CreatedAt = createdAt.UTC()
	return pending, nil
}

// CreateAccount inserts a permanent account.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account Account) error {
	id, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, password_hash, email, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		id, account.Username, account.PasswordHash, account.Email, account.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// FindAccountByUsername fetches an account by its unique username.
func (r *PostgresRepository) FindAccountByUsername(ctx context.Context, username string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, email, created_at FROM users WHERE username = $1`, username)
	return scanAccount(row)
}

// FindAccountByID fetches an account by its stable identifier.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, email, created_at FROM users WHERE id = $1`, accountID)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		account   Account
	)
	if err := row.Scan(&id, &account.Username, &account.PasswordHash, &account.Email, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	account.ID = id.String()
	account.CreatedAt = createdAt.UTC()
	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
