package ports

import (
	"context"
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// ProfileUpdate carries the mutable identity fields.
type ProfileUpdate struct {
	Name       string
	University string
	Course     string
	Semester   int
}

// UserRepository is the credential store adapter: the only component allowed
// to read or write password hashes, token hashes, and lockout counters.
//
// Every read-then-write sequence on a single account (failed-login counting,
// token consumption, password replacement) is expressed as one conditional
// update so concurrent requests for the same account cannot lose writes.
type UserRepository interface {
	// Create inserts a new user. Fails with domain.ErrDuplicateEmail when the
	// (case-insensitive) email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// RecordFailedLogin applies domain.NextLockoutState atomically and
	// returns the updated user.
	RecordFailedLogin(ctx context.Context, id string, now time.Time) (*domain.User, error)
	// RecordLogin resets the lockout state and stamps the last login.
	RecordLogin(ctx context.Context, id string, now time.Time) error

	SetVerificationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	// ConsumeVerificationToken finds the user holding an unexpired token with
	// the given hash and, in the same update, marks the email verified, moves
	// the account to active, and clears the token fields. Fails with
	// domain.ErrTokenInvalidOrExpired when no such user exists — exactly one
	// of two concurrent calls with the same token can succeed.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// ConsumeResetToken atomically replaces the password hash, clears the
	// reset token fields, and resets the lockout state.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error)

	UpdatePassword(ctx context.Context, id, newPasswordHash string, changedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
}
