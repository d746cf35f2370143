package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// DefaultBcryptCost keeps a single verification under ~100ms on commodity
// hardware while staying expensive for offline brute force.
const DefaultBcryptCost = 12

// dummyPasswordHash is compared against when no user matches the email, so
// login latency does not reveal whether an account exists.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService orchestrates the account security subsystem: registration,
// credential verification, the verification/reset token lifecycle, lockout
// bookkeeping, and session issuance.
type AuthService struct {
	repo       ports.UserRepository
	tokens     ports.TokenService
	sessions   ports.SessionIssuer
	mailer     ports.Mailer
	welcome    ports.Mailer
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

// NewAuthService wires the auth orchestrator. mailer delivers verification
// and reset mail synchronously because its outcome is part of the operation
// result; welcomeMailer (may be nil to reuse mailer) carries the
// fire-and-forget welcome message.
func NewAuthService(
	repo ports.UserRepository,
	tokens ports.TokenService,
	sessions ports.SessionIssuer,
	mailer ports.Mailer,
	welcomeMailer ports.Mailer,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	if welcomeMailer == nil {
		welcomeMailer = mailer
	}
	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		sessions:   sessions,
		mailer:     mailer,
		welcome:    welcomeMailer,
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a pending, unverified account and hands the verification
// token to the mail collaborator. A failed hand-off does not roll back the
// account; it is reported on the result instead.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	email := normalizeEmail(in.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		University:   in.University,
		Course:       in.Course,
		Semester:     in.Semester,
		Verified:     false,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ports.TokenVerification)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetVerificationToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return nil, err
	}

	result := &ports.RegisterResult{User: user}
	if err := s.mailer.Send(ctx, email, ports.MailVerification, ports.MailPayload{Name: user.Name, Token: token.Raw}); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("verification mail delivery failed")
		result.DeliveryFailed = true
	}

	s.log.Info().Str("user_id", user.ID).Str("email", email).Msg("user registered")
	return result, nil
}

// Login verifies credentials and mints a session credential. Unknown emails
// cost a bcrypt comparison against a dummy hash so the failure is not
// distinguishable from a wrong password by timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	now := s.now().UTC()

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		updated, recErr := s.repo.RecordFailedLogin(ctx, user.ID, now)
		if recErr != nil {
			s.log.Error().Err(recErr).Str("user_id", user.ID).Msg("failed to record login attempt")
		} else if updated.IsLocked(now) {
			metrics.LockoutsTotal.Inc()
			s.log.Warn().Str("user_id", user.ID).Time("until", *updated.LockUntil).Msg("account locked")
		}
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, domain.ErrEmailNotVerified
	}
	if user.Status == domain.StatusSuspended {
		return nil, domain.ErrAccountSuspended
	}

	if err := s.repo.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, User: user}, nil
}

// VerifyEmail consumes a verification token: the account moves to active and
// the token fields are cleared in the same store update, so a second call
// with the same token fails.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error) {
	user, err := s.repo.ConsumeVerificationToken(ctx, s.tokens.Hash(rawToken), s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.welcome.Send(ctx, user.Email, ports.MailWelcome, ports.MailPayload{Name: user.Name}); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("welcome mail delivery failed")
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return user, nil
}

// ResendVerification issues a fresh verification token for an unverified
// account, replacing any previous one.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return domain.ErrAlreadyVerified
	}

	token, err := s.tokens.Issue(ports.TokenVerification)
	if err != nil {
		return err
	}
	if err := s.repo.SetVerificationToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, ports.MailVerification, ports.MailPayload{Name: user.Name, Token: token.Raw}); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("verification mail delivery failed")
		return domain.ErrDeliveryFailed
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails it. An undeliverable
// reset token is useless and must not stay valid, so a failed hand-off
// clears the stored token before reporting the failure.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ports.TokenReset)
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, ports.MailReset, ports.MailPayload{Name: user.Name, Token: token.Raw}); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("reset mail delivery failed, clearing token")
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("failed to clear reset token")
		}
		return domain.ErrDeliveryFailed
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset token: the password hash is replaced, the
// token cleared, and any lockout state wiped in one store update. A reset is
// a fresh start — a locked account becomes usable immediately.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.ConsumeResetToken(ctx, s.tokens.Hash(rawToken), string(hash), s.now().UTC())
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// ChangePassword replaces the password after re-verifying the current one and
// returns a fresh session credential. Earlier credentials die at the next
// VerifySession because they predate the password change.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*ports.LoginResult, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now().UTC()
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), changedAt); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return &ports.LoginResult{Token: token, User: user}, nil
}

// AccountStatus answers the public verification/status probe.
func (s *AuthService) AccountStatus(ctx context.Context, email string) (*ports.AccountStatusResult, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return &ports.AccountStatusResult{Verified: user.Verified, Status: user.Status}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	return s.repo.UpdateProfile(ctx, userID, update)
}

// SetAccountStatus applies an admin suspend/reactivate, honouring the
// account state machine.
func (s *AuthService) SetAccountStatus(ctx context.Context, userID string, status domain.AccountStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Str("status", string(status)).Msg("account status changed")
	return updated, nil
}

// VerifySession validates a bearer credential for the request-authorization
// middleware. Credentials issued before the subject's last password change
// are rejected, as are credentials of suspended accounts.
func (s *AuthService) VerifySession(ctx context.Context, raw string) (*ports.SessionClaims, error) {
	claims, err := s.sessions.Verify(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if user.Status == domain.StatusSuspended {
		return nil, domain.ErrAccountSuspended
	}
	if user.PasswordChangedAt != nil && claims.IssuedAt.Before(user.PasswordChangedAt.Truncate(time.Second)) {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
