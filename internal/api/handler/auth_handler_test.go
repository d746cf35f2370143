package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// stubAuthService returns canned results; only the methods a test exercises
// need behaviour.
type stubAuthService struct {
	ports.AuthService

	registerResult *ports.RegisterResult
	registerErr    error
	loginResult    *ports.LoginResult
	loginErr       error
	verifyErr      error
	statusResult   *ports.AccountStatusResult
	statusErr      error
	resetErr       error
	profile        *domain.User
}

func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) VerifyEmail(context.Context, string) (*domain.User, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.profile, nil
}

func (s *stubAuthService) AccountStatus(context.Context, string) (*ports.AccountStatusResult, error) {
	return s.statusResult, s.statusErr
}

func (s *stubAuthService) RequestPasswordReset(context.Context, string) error {
	return s.resetErr
}

func (s *stubAuthService) GetProfile(context.Context, string) (*domain.User, error) {
	return s.profile, nil
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:         "user-1",
		Name:       "Alice",
		Email:      "alice@example.com",
		Role:       domain.RoleStudent,
		University: "MIT",
		Course:     "CS",
		Semester:   3,
		Verified:   true,
		Status:     domain.StatusActive,
		CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerResult: &ports.RegisterResult{User: sampleUser()},
	})

	body := `{"name":"Alice","email":"alice@example.com","password":"correct-horse","university":"MIT","course":"CS","semester":3}`
	c, rec := newTestContext(t, http.MethodPost, "/api/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response must not leak password fields: %s", rec.Body.String())
	}
}

func TestRegisterHandler_DeliveryFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerResult: &ports.RegisterResult{User: sampleUser(), DeliveryFailed: true},
	})

	body := `{"name":"Alice","email":"alice@example.com","password":"correct-horse","university":"MIT","course":"CS","semester":3}`
	c, rec := newTestContext(t, http.MethodPost, "/api/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration must still succeed, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not be sent") {
		t.Fatalf("response should flag the failed delivery: %s", rec.Body.String())
	}
}

func TestRegisterHandler_ValidationFailure(t *testing.T) {
	for name, body := range map[string]string{
		"malformed email and short password": `{"name":"Alice","email":"not-an-email","password":"short","university":"MIT","course":"CS","semester":3}`,
		"university too short":               `{"name":"Alice","email":"alice@example.com","password":"correct-horse","university":"M","course":"CS","semester":3}`,
		"course too long":                    `{"name":"Alice","email":"alice@example.com","password":"correct-horse","university":"MIT","course":"` + strings.Repeat("x", 101) + `","semester":3}`,
	} {
		t.Run(name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{})
			c, _ := newTestContext(t, http.MethodPost, "/api/auth/register", body)

			err := h.Register(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: domain.ErrDuplicateEmail})

	body := `{"name":"Alice","email":"alice@example.com","password":"correct-horse","university":"MIT","course":"CS","semester":3}`
	c, _ := newTestContext(t, http.MethodPost, "/api/auth/register", body)

	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail passed through, got %v", err)
	}
}

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginResult: &ports.LoginResult{Token: "session-token", User: sampleUser()},
	})

	body := `{"email":"alice@example.com","password":"correct-horse"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/auth/login", body)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "session-token" {
		t.Fatalf("token = %q", resp.Token)
	}
}

func TestLoginHandler_DomainErrorsPassThrough(t *testing.T) {
	for _, want := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrAccountLocked,
		domain.ErrEmailNotVerified,
		domain.ErrAccountSuspended,
	} {
		h := NewAuthHandler(&stubAuthService{loginErr: want})

		body := `{"email":"alice@example.com","password":"whatever"}`
		c, _ := newTestContext(t, http.MethodPost, "/api/auth/login", body)

		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v passed through, got %v", want, err)
		}
	}
}

func TestVerifyEmailHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{profile: sampleUser()})

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/api/auth/verify-email/:token")
	c.SetParamNames("token")
	c.SetParamValues("raw-token")

	if err := h.VerifyEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestVerifyEmailHandler_BadToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{verifyErr: domain.ErrTokenInvalidOrExpired})

	c, _ := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/api/auth/verify-email/:token")
	c.SetParamNames("token")
	c.SetParamValues("stale-token")

	if err := h.VerifyEmail(c); !errors.Is(err, domain.ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
}

func TestAccountStatusHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		statusResult: &ports.AccountStatusResult{Verified: true, Status: domain.StatusActive},
	})

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/api/auth/account-status/:email")
	c.SetParamNames("email")
	c.SetParamValues("alice@example.com")

	if err := h.AccountStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp accountStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsVerified || resp.AccountStatus != "active" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

// Forgot-password answers 200 with a uniform message whether or not the
// account exists.
func TestForgotPasswordHandler_UniformResponse(t *testing.T) {
	for name, stub := range map[string]*stubAuthService{
		"known account":   {},
		"unknown account": {resetErr: domain.ErrUserNotFound},
	} {
		t.Run(name, func(t *testing.T) {
			h := NewAuthHandler(stub)

			body := `{"email":"alice@example.com"}`
			c, rec := newTestContext(t, http.MethodPost, "/api/auth/forgot-password", body)

			if err := h.ForgotPassword(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "if that account exists") {
				t.Fatalf("expected the uniform message, got %s", rec.Body.String())
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{profile: sampleUser()})

	c, rec := newTestContext(t, http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", "user-1")
	c.Set("role", domain.RoleStudent)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMeHandler_MissingClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{profile: sampleUser()})

	c, _ := newTestContext(t, http.MethodGet, "/api/auth/me", "")

	err := h.Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
