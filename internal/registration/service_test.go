package registration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/accountgate/accountgate/internal/logging"
	"github.com/accountgate/accountgate/internal/password"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestService(repo Repository, mail *fakeMailer) *Service {
	return NewService(repo, NewCandidateValidator(), password.Bcrypt{Cost: 4}, mail,
		"https://example.com/verify/", logging.Discard())
}

func validCandidate() Candidate {
	return Candidate{Username: "user_name", Email: "test@gmail.com", Password: "password"}
}

func TestSignUpStagesCandidate(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if repo.PendingCount() != 1 {
		t.Fatalf("expected 1 staged signup, got %d", repo.PendingCount())
	}
	pending := repo.pending["user_name"]
	if pending.Email != "test@gmail.com" {
		t.Fatalf("expected staged email to match candidate, got %q", pending.Email)
	}
	if !(password.Bcrypt{}).Verify("password", pending.PasswordHash) {
		t.Fatalf("staged digest does not verify against candidate password")
	}

	if mail.sentCount() != 1 {
		t.Fatalf("expected 1 confirmation mail, got %d", mail.sentCount())
	}
	if mail.sent[0].To != "test@gmail.com" {
		t.Fatalf("expected mail to candidate address, got %q", mail.sent[0].To)
	}
	if !strings.Contains(mail.sent[0].Body, pending.Token) {
		t.Fatalf("expected mail body to carry the confirmation token")
	}
}

func TestSignUpInvalidCandidateHasNoSideEffects(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)

	err := svc.SignUp(context.Background(), Candidate{Username: "", Email: "nope", Password: ""})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []string{"email", "password", "username"}
	if len(ve.Fields) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, ve.Fields)
	}
	for i, f := range want {
		if ve.Fields[i] != f {
			t.Fatalf("expected fields %v, got %v", want, ve.Fields)
		}
	}

	if repo.PendingCount() != 0 || mail.sentCount() != 0 {
		t.Fatalf("expected no persistence and no mail on validation failure")
	}
}

func TestSignUpExistingAccountIsSilentNoOp(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := repo.CreateAccount(ctx, Account{ID: "id-1", Username: "user_name"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("expected success-shaped outcome, got %v", err)
	}
	if repo.PendingCount() != 0 || mail.sentCount() != 0 {
		t.Fatalf("expected no new staging or mail for an existing account")
	}
}

func TestSignUpExistingPendingIsSilentNoOp(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("repeat signup: %v", err)
	}

	if repo.PendingCount() != 1 {
		t.Fatalf("expected exactly 1 staged signup, got %d", repo.PendingCount())
	}
	if mail.sentCount() != 1 {
		t.Fatalf("expected no re-sent mail, got %d", mail.sentCount())
	}
}

func TestSignUpMailFailureLeavesNothingBehind(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{fail: true}
	svc := newTestService(repo, mail)

	err := svc.SignUp(context.Background(), validCandidate())
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if repo.PendingCount() != 0 {
		t.Fatalf("expected staged signup to be discarded after failed dispatch")
	}
}

func TestSignUpConcurrentDuplicatesStageExactlyOnce(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	const workers = 8
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- svc.SignUp(ctx, validCandidate())
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("no concurrent signup may fail, got %v", err)
		}
	}
	if repo.PendingCount() != 1 {
		t.Fatalf("expected exactly 1 staged signup, got %d", repo.PendingCount())
	}
	if mail.sentCount() != 1 {
		t.Fatalf("expected exactly 1 confirmation mail, got %d", mail.sentCount())
	}
}

func TestVerifyMaterializesAccountAndConsumesToken(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	staged := repo.pending["user_name"]

	if err := svc.Verify(ctx, staged.Token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if repo.PendingCount() != 0 {
		t.Fatalf("expected staged signup to be consumed")
	}
	account, err := repo.FindAccountByUsername(ctx, "user_name")
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if account.Email != staged.Email {
		t.Fatalf("expected account email %q, got %q", staged.Email, account.Email)
	}
	if string(account.PasswordHash) != string(staged.PasswordHash) {
		t.Fatalf("digest must be carried verbatim from the staged signup")
	}
	if account.ID == "" {
		t.Fatalf("expected account to receive a stable identifier")
	}

	// The token is single-use.
	if err := svc.Verify(ctx, staged.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found on second redemption, got %v", err)
	}
	if repo.AccountCount() != 1 {
		t.Fatalf("expected exactly 1 account, got %d", repo.AccountCount())
	}
}

func TestVerifyUnknownTokenChangesNothing(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.Verify(ctx, "b4b29bd3-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if repo.PendingCount() != 1 || repo.AccountCount() != 0 {
		t.Fatalf("expected tables unchanged after unknown token")
	}
}

func TestVerifyInsertFailureIsReportedNotRetried(t *testing.T) {
	repo := NewMemoryRepository()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	if err := svc.SignUp(ctx, validCandidate()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	staged := repo.pending["user_name"]

	// Force the insert to collide after the token has been consumed.
	if err := repo.CreateAccount(ctx, Account{ID: "id-1", Username: "user_name"}); err != nil {
		t.Fatalf("seed colliding account: %v", err)
	}

	err := svc.Verify(ctx, staged.Token)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected internal failure, got %v", err)
	}
	// The token stays consumed.
	if err := svc.Verify(ctx, staged.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected consumed token to stay unusable, got %v", err)
	}
}
