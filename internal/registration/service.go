package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/accountgate/accountgate/internal/mailer"
	"github.com/accountgate/accountgate/internal/password"
)

const mailSubject = "[DO NOT REPLY] SIGN-UP"

// Service runs the two-phase registration workflow: staging a candidate with
// a confirmation token, and redeeming that token into a permanent account.
type Service struct {
	repo          Repository
	validator     Validator
	hasher        password.Hasher
	mail          mailer.Mailer
	verifyBaseURL string
	logger        *slog.Logger
}

// NewService wires the registration workflow.
func NewService(repo Repository, validator Validator, hasher password.Hasher, mail mailer.Mailer, verifyBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		validator:     validator,
		hasher:        hasher,
		mail:          mail,
		verifyBaseURL: verifyBaseURL,
		logger:        logger,
	}
}

// SignUp stages a candidate and dispatches a confirmation mail.
//
// Every "already exists" path (confirmed account, staged signup, or a lost
// insert race) returns nil with no side effects, so callers cannot tell a
// repeat signup apart from a fresh one. The staged row is written before mail
// dispatch; a failed dispatch discards the row again so no delivered token
// can outlive its registration and no undeliverable registration lingers.
func (s *Service) SignUp(ctx context.Context, candidate Candidate) error {
	if fields := s.validator.Validate(candidate); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	taken, err := s.repo.AccountNameTaken(ctx, candidate.Username)
	if err != nil {
		return fmt.Errorf("check accounts: %w", err)
	}
	if taken {
		return nil
	}

	taken, err = s.repo.PendingNameTaken(ctx, candidate.Username)
	if err != nil {
		return fmt.Errorf("check staged signups: %w", err)
	}
	if taken {
		return nil
	}

	digest, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	pending := PendingRegistration{
		Username:     candidate.Username,
		PasswordHash: digest,
		Email:        candidate.Email,
		Token:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreatePending(ctx, pending); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			// A concurrent signup staged the same username between the
			// pre-check and the insert. Same outcome as the pre-check.
			return nil
		}
		return fmt.Errorf("stage signup: %w", err)
	}

	body := fmt.Sprintf("Hi %s! Verify your account by clicking on %s%s",
		pending.Username, s.verifyBaseURL, pending.Token)

	if err := s.mail.Send(ctx, pending.Email, mailSubject, body); err != nil {
		s.logger.Warn("confirmation mail dispatch failed",
			slog.String("username", pending.Username), slog.Any("error", err))
		if delErr := s.repo.DeletePendingByToken(ctx, pending.Token); delErr != nil {
			s.logger.Error("discard staged signup after failed dispatch",
				slog.String("username", pending.Username), slog.Any("error", delErr))
		}
		return ErrDelivery
	}

	s.logger.Info("signup staged", slog.String("username", pending.Username))
	return nil
}

// Verify redeems a confirmation token into a permanent account. The token is
// consumed atomically, so it is single-use even when the account insert fails
// afterwards; that failure is a reportable inconsistency, not a retry.
func (s *Service) Verify(ctx context.Context, token string) error {
	pending, err := s.repo.ConsumePendingByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("consume confirmation token: %w", err)
	}

	account := Account{
		ID:           uuid.NewString(),
		Username:     pending.Username,
		PasswordHash: pending.PasswordHash,
		Email:        pending.Email,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		s.logger.Error("account insert failed after token consumption",
			slog.String("username", pending.Username), slog.Any("error", err))
		return fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account confirmed", slog.String("username", account.Username))
	return nil
}
