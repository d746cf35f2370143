package ports

import (
	"context"
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	University string
	Course     string
	Semester   int
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	User *domain.User
	// DeliveryFailed is true when the verification mail could not be handed
	// off. Registration itself still succeeded.
	DeliveryFailed bool
}

// LoginResult bundles the session credential with the authenticated user.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AccountStatusResult answers the public account-status probe.
type AccountStatusResult struct {
	Verified bool
	Status   domain.AccountStatus
}

// AuthService orchestrates registration, credential verification, the
// verification/reset token lifecycle, lockout bookkeeping, and session
// issuance.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*LoginResult, error)
	AccountStatus(ctx context.Context, email string) (*AccountStatusResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	SetAccountStatus(ctx context.Context, userID string, status domain.AccountStatus) (*domain.User, error)
	// VerifySession validates a bearer credential and rejects credentials
	// minted before the subject's last password change.
	VerifySession(ctx context.Context, raw string) (*SessionClaims, error)
}

// TokenKind distinguishes the two single-use token flavours.
type TokenKind string

const (
	TokenVerification TokenKind = "verification"
	TokenReset        TokenKind = "reset"
)

// IssuedToken is the result of minting a single-use token. Raw is delivered
// out-of-band and never persisted; Hash and ExpiresAt go to the store.
type IssuedToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// TokenService mints and checks opaque single-use tokens.
type TokenService interface {
	Issue(kind TokenKind) (*IssuedToken, error)
	// Hash returns the one-way hash of a raw token, for store lookups.
	Hash(raw string) string
	// Verify recomputes the hash of raw and compares it against storedHash in
	// constant time; storedExpiry must be strictly in the future.
	Verify(raw, storedHash string, storedExpiry *time.Time) error
}

// SessionClaims is the decoded assertion carried by a session credential.
type SessionClaims struct {
	UserID   string
	Role     string
	IssuedAt time.Time
}

// SessionIssuer mints and validates signed, expiring bearer credentials.
// Credentials are not stored server-side; logout is client-side disposal.
type SessionIssuer interface {
	Issue(userID, role string) (string, error)
	Verify(raw string) (*SessionClaims, error)
}
