package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	tokenBytes           = 32
)

// TokenService mints and checks the opaque single-use tokens used for email
// verification and password reset. Only the SHA-256 of a token is ever
// persisted; the raw value goes out by email and is gone.
type TokenService struct {
	now func() time.Time
}

func NewTokenService() *TokenService {
	return &TokenService{now: time.Now}
}

// Issue generates a 256-bit random token and returns the raw value together
// with the hash and expiry to persist.
func (s *TokenService) Issue(kind ports.TokenKind) (*ports.IssuedToken, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	raw := hex.EncodeToString(buf)
	ttl := verificationTokenTTL
	if kind == ports.TokenReset {
		ttl = resetTokenTTL
	}

	return &ports.IssuedToken{
		Raw:       raw,
		Hash:      s.Hash(raw),
		ExpiresAt: s.now().UTC().Add(ttl),
	}, nil
}

// Hash returns the hex-encoded SHA-256 of a raw token.
func (s *TokenService) Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the hash of raw and compares it with storedHash in
// constant time. storedExpiry must be strictly in the future. Callers must
// clear the stored hash in the same update as the state change the token
// authorizes; Verify alone does not consume anything.
func (s *TokenService) Verify(raw, storedHash string, storedExpiry *time.Time) error {
	if storedHash == "" || storedExpiry == nil {
		return domain.ErrTokenInvalidOrExpired
	}

	computed := s.Hash(raw)
	match := subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
	if !match || !storedExpiry.After(s.now()) {
		return domain.ErrTokenInvalidOrExpired
	}
	return nil
}
