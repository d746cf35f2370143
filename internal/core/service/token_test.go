package service

import (
	"testing"
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &TokenService{now: func() time.Time { return now }}

	token, err := svc.Issue(ports.TokenVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.Raw == "" || len(token.Raw) != 64 {
		t.Fatalf("raw token should be 64 hex chars, got %q", token.Raw)
	}
	if token.Hash == token.Raw {
		t.Fatalf("hash must differ from raw token")
	}
	if !token.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("verification expiry = %v, want 24h", token.ExpiresAt)
	}

	if err := svc.Verify(token.Raw, token.Hash, &token.ExpiresAt); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestTokenService_ResetExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &TokenService{now: func() time.Time { return now }}

	token, err := svc.Issue(ports.TokenReset)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !token.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("reset expiry = %v, want 1h", token.ExpiresAt)
	}
}

func TestTokenService_VerifyRejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &TokenService{now: func() time.Time { return now }}

	token, err := svc.Issue(ports.TokenVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	past := now.Add(-time.Second)
	exactly := now

	tests := []struct {
		name   string
		raw    string
		hash   string
		expiry *time.Time
	}{
		{"wrong token", "deadbeef", token.Hash, &token.ExpiresAt},
		{"empty stored hash", token.Raw, "", &token.ExpiresAt},
		{"nil expiry", token.Raw, token.Hash, nil},
		{"expired", token.Raw, token.Hash, &past},
		{"expiry not strictly future", token.Raw, token.Hash, &exactly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Verify(tt.raw, tt.hash, tt.expiry); err != domain.ErrTokenInvalidOrExpired {
				t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
			}
		})
	}
}

func TestTokenService_UniqueTokens(t *testing.T) {
	svc := NewTokenService()

	a, err := svc.Issue(ports.TokenVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, err := svc.Issue(ports.TokenVerification)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a.Raw == b.Raw {
		t.Fatalf("two issued tokens must differ")
	}
}
