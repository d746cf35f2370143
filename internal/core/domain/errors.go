package domain

import "errors"

// Account and credential errors.
var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountLocked         = errors.New("account temporarily locked")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrAccountSuspended      = errors.New("account suspended")
	ErrTokenInvalidOrExpired = errors.New("invalid or expired token")
	ErrUserNotFound          = errors.New("user not found")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrInvalidStatus         = errors.New("invalid account status")
)

// Session credential errors.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// ErrDeliveryFailed reports a failed email hand-off. It never fails the
// operation that triggered the mail; callers surface it as a warning.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Catalogue errors.
var (
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrDuplicateSubject    = errors.New("subject already exists")
	ErrSubjectHasMaterials = errors.New("subject has existing materials")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAnswerNotFound      = errors.New("answer not found")
	ErrForbidden           = errors.New("access forbidden")
)
