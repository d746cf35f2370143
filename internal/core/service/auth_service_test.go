package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// stubUserRepo is a map-backed credential store mirroring the conditional
// update semantics of the Mongo adapter.
type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[created.ID] = created
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) RecordFailedLogin(_ context.Context, id string, now time.Time) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.LoginAttempts, u.LockUntil = domain.NextLockoutState(u.LoginAttempts, u.LockUntil, now)
	return cloneUser(u), nil
}

func (r *stubUserRepo) RecordLogin(_ context.Context, id string, now time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now
	return nil
}

func (r *stubUserRepo) SetVerificationToken(_ context.Context, id, tokenHash string, expiry time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.VerificationTokenHash = tokenHash
	u.VerificationTokenExpiry = &expiry
	return nil
}

func (r *stubUserRepo) ConsumeVerificationToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.VerificationTokenHash == tokenHash && u.VerificationTokenExpiry != nil && u.VerificationTokenExpiry.After(now) {
			u.Verified = true
			u.Status = domain.StatusActive
			u.VerificationTokenHash = ""
			u.VerificationTokenExpiry = nil
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrTokenInvalidOrExpired
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiry time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiry = &expiry
	return nil
}

func (r *stubUserRepo) ClearResetToken(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpiry = nil
	return nil
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash == tokenHash && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = newPasswordHash
			u.PasswordChangedAt = &now
			u.ResetTokenHash = ""
			u.ResetTokenExpiry = nil
			u.LoginAttempts = 0
			u.LockUntil = nil
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrTokenInvalidOrExpired
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, newPasswordHash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = newPasswordHash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (r *stubUserRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Status = status
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, update ports.ProfileUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.University != "" {
		u.University = update.University
	}
	if update.Course != "" {
		u.Course = update.Course
	}
	if update.Semester > 0 {
		u.Semester = update.Semester
	}
	return cloneUser(u), nil
}

// stubMailer captures outgoing mail; set fail to simulate delivery trouble.
type stubMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	kind    ports.MailKind
	payload ports.MailPayload
}

func (m *stubMailer) Send(_ context.Context, to string, kind ports.MailKind, payload ports.MailPayload) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to: to, kind: kind, payload: payload})
	return nil
}

func (m *stubMailer) last() sentMail {
	return m.sent[len(m.sent)-1]
}

type authFixture struct {
	svc    *AuthService
	repo   *stubUserRepo
	mailer *stubMailer
	now    time.Time
}

// newAuthFixture builds an AuthService with bcrypt cost 4 to keep the suite
// fast; the cost is a tuning knob, not part of the behaviour under test.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	f := &authFixture{
		repo:   repo,
		mailer: mailer,
		now:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	// Token expiries and JWT iat values must follow the same frozen clock as
	// the service, or time-based assertions drift against the wall clock.
	clock := func() time.Time { return f.now }
	tokens := NewTokenService()
	tokens.now = clock
	sessions := NewSessionIssuer("test-secret", time.Hour)
	sessions.now = clock

	svc := NewAuthService(repo, tokens, sessions, mailer, nil, 4, zerolog.Nop())
	svc.now = clock
	f.svc = svc
	return f
}

func (f *authFixture) register(t *testing.T, email string) *ports.RegisterResult {
	t.Helper()
	result, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:       "Alice",
		Email:      email,
		Password:   "correct-horse",
		University: "MIT",
		Course:     "CS",
		Semester:   3,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return result
}

func (f *authFixture) registerVerified(t *testing.T, email string) *domain.User {
	t.Helper()
	f.register(t, email)
	user, err := f.svc.VerifyEmail(context.Background(), f.mailer.last().payload.Token)
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	return user
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	result := f.register(t, "Alice@Example.COM")
	user := result.User
	if user.Email != "alice@example.com" {
		t.Fatalf("email should be normalised, got %q", user.Email)
	}
	if user.Role != domain.RoleStudent {
		t.Fatalf("role = %q, want student", user.Role)
	}
	if user.Verified || user.Status != domain.StatusPending {
		t.Fatalf("new account must be pending and unverified")
	}
	if result.DeliveryFailed {
		t.Fatalf("delivery should have succeeded")
	}
	if strings.Contains(user.PasswordHash, "correct-horse") {
		t.Fatalf("password stored in the clear")
	}

	mail := f.mailer.last()
	if mail.kind != ports.MailVerification || mail.to != "alice@example.com" {
		t.Fatalf("unexpected mail %+v", mail)
	}
	if mail.payload.Token == "" {
		t.Fatalf("verification mail must carry the raw token")
	}

	stored := f.repo.users[user.ID]
	if stored.VerificationTokenHash == mail.payload.Token {
		t.Fatalf("store must hold the hash, not the raw token")
	}
	if stored.VerificationTokenExpiry == nil || !stored.VerificationTokenExpiry.Equal(f.now.Add(24*time.Hour)) {
		t.Fatalf("verification token expiry should be 24h")
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name: "Other", Email: "ALICE@example.com", Password: "whatever-pass",
		University: "MIT", Course: "CS", Semester: 1,
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_MailFailureKeepsAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.fail = true

	result := f.register(t, "alice@example.com")
	if !result.DeliveryFailed {
		t.Fatalf("expected DeliveryFailed flag")
	}
	if _, err := f.repo.FindByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("account must survive a failed verification mail: %v", err)
	}
}

func TestLogin_SessionCarriesFixtureClock(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "alice@example.com")

	result, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := f.svc.VerifySession(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if !claims.IssuedAt.Equal(f.now.Truncate(time.Second)) {
		t.Fatalf("session iat = %v, want the injected clock %v", claims.IssuedAt, f.now)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnverifiedThenVerified(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com")

	_, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	token := f.mailer.last().payload.Token
	user, err := f.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !user.Verified || user.Status != domain.StatusActive {
		t.Fatalf("verified account must be active")
	}

	// Welcome mail goes out after verification.
	if f.mailer.last().kind != ports.MailWelcome {
		t.Fatalf("expected welcome mail, got %s", f.mailer.last().kind)
	}

	result, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if stored := f.repo.users[user.ID]; stored.LastLogin == nil {
		t.Fatalf("last login not recorded")
	}

	// The consumed token is gone.
	if _, err := f.svc.VerifyEmail(context.Background(), token); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("second consume should fail, got %v", err)
	}
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com")
	token := f.mailer.last().payload.Token

	f.now = f.now.Add(24*time.Hour + time.Minute)
	if _, err := f.svc.VerifyEmail(context.Background(), token); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com")
	first := f.mailer.last().payload.Token

	if err := f.svc.ResendVerification(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	second := f.mailer.last().payload.Token
	if first == second {
		t.Fatalf("resend must mint a fresh token")
	}

	// The old token was replaced.
	if _, err := f.svc.VerifyEmail(context.Background(), first); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("replaced token should fail, got %v", err)
	}
	if _, err := f.svc.VerifyEmail(context.Background(), second); err != nil {
		t.Fatalf("fresh token should work: %v", err)
	}

	if err := f.svc.ResendVerification(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "bob@example.com")

	lockouts := testutil.ToFloat64(metrics.LockoutsTotal)
	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(context.Background(), "bob@example.com", "wrong-password")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	stored := f.repo.users[user.ID]
	if stored.LoginAttempts != 5 || stored.LockUntil == nil {
		t.Fatalf("expected 5 attempts and an armed lock, got %d/%v", stored.LoginAttempts, stored.LockUntil)
	}
	if got := testutil.ToFloat64(metrics.LockoutsTotal) - lockouts; got != 1 {
		t.Fatalf("lockout counter moved by %v, want 1 for the arming attempt", got)
	}

	// The correct password does not get through a lock.
	if _, err := f.svc.Login(context.Background(), "bob@example.com", "correct-horse"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// Still locked one minute before expiry.
	f.now = f.now.Add(119 * time.Minute)
	if _, err := f.svc.Login(context.Background(), "bob@example.com", "correct-horse"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked at T+119min, got %v", err)
	}

	// Past expiry the credentials are evaluated again.
	f.now = f.now.Add(2 * time.Minute)
	result, err := f.svc.Login(context.Background(), "bob@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login after lock expiry: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if stored := f.repo.users[user.ID]; stored.LoginAttempts != 0 || stored.LockUntil != nil {
		t.Fatalf("successful login must clear the lockout state")
	}
}

func TestLogin_ExpiredLockRestartsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "bob@example.com")

	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(context.Background(), "bob@example.com", "wrong-password")
	}

	f.now = f.now.Add(domain.LockDuration + time.Minute)
	_, err := f.svc.Login(context.Background(), "bob@example.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored := f.repo.users[user.ID]
	if stored.LoginAttempts != 1 || stored.LockUntil != nil {
		t.Fatalf("expired lock should restart the counter at 1, got %d/%v", stored.LoginAttempts, stored.LockUntil)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "alice@example.com")

	// Lock the account first; a reset must clear the lock.
	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(context.Background(), "alice@example.com", "wrong-password")
	}

	if err := f.svc.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	mail := f.mailer.last()
	if mail.kind != ports.MailReset {
		t.Fatalf("expected reset mail, got %s", mail.kind)
	}

	if err := f.svc.ResetPassword(context.Background(), mail.payload.Token, "new-password-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored := f.repo.users[user.ID]
	if stored.LoginAttempts != 0 || stored.LockUntil != nil {
		t.Fatalf("reset must clear the lockout state")
	}

	// Old password dead, new password works.
	if _, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "alice@example.com", "new-password-1"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}

	// The reset token is single-use.
	if err := f.svc.ResetPassword(context.Background(), mail.payload.Token, "another-pass"); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("second reset should fail, got %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "alice@example.com")

	if err := f.svc.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := f.mailer.last().payload.Token

	f.now = f.now.Add(time.Hour + time.Minute)
	if err := f.svc.ResetPassword(context.Background(), token, "new-password-1"); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
}

func TestPasswordReset_DeliveryFailureClearsToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "alice@example.com")

	f.mailer.fail = true
	err := f.svc.RequestPasswordReset(context.Background(), "alice@example.com")
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	stored := f.repo.users[user.ID]
	if stored.ResetTokenHash != "" || stored.ResetTokenExpiry != nil {
		t.Fatalf("undeliverable reset token must not stay valid")
	}
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "alice@example.com")

	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.svc.ChangePassword(context.Background(), user.ID, "wrong-current", "new-password-1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Sessions carry second-resolution timestamps, so move the clock past
	// the issue second before changing the password.
	f.now = f.now.Add(2 * time.Second)
	changed, err := f.svc.ChangePassword(context.Background(), user.ID, "correct-horse", "new-password-1")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if changed.Token == "" {
		t.Fatalf("expected a fresh session token")
	}

	// The pre-change session is dead, the fresh one is alive.
	if _, err := f.svc.VerifySession(context.Background(), login.Token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("pre-change session should be rejected, got %v", err)
	}
	if _, err := f.svc.VerifySession(context.Background(), changed.Token); err != nil {
		t.Fatalf("fresh session should verify: %v", err)
	}
}

func TestAccountStatusProbe(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com")

	status, err := f.svc.AccountStatus(context.Background(), "ALICE@example.com")
	if err != nil {
		t.Fatalf("account status: %v", err)
	}
	if status.Verified || status.Status != domain.StatusPending {
		t.Fatalf("unexpected status %+v", status)
	}

	if _, err := f.svc.AccountStatus(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetAccountStatus(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "alice@example.com")

	if _, err := f.svc.SetAccountStatus(context.Background(), user.ID, "nonsense"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	suspended, err := f.svc.SetAccountStatus(context.Background(), user.ID, domain.StatusSuspended)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if suspended.Status != domain.StatusSuspended {
		t.Fatalf("status = %s", suspended.Status)
	}

	if _, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse"); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}

	// suspended → pending is not a legal move.
	if _, err := f.svc.SetAccountStatus(context.Background(), user.ID, domain.StatusPending); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if _, err := f.svc.SetAccountStatus(context.Background(), user.ID, domain.StatusActive); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("login after reactivation: %v", err)
	}
}

func TestVerifySession_SuspendedAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "alice@example.com")

	login, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.svc.SetAccountStatus(context.Background(), user.ID, domain.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := f.svc.VerifySession(context.Background(), login.Token); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}
