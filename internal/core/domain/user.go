package domain

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus string

const (
	StatusPending   AccountStatus = "pending"
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
)

// validStatusTransitions defines the allowed account state machine.
// pending → active happens through email verification; active ⇄ suspended
// through admin action.
var validStatusTransitions = map[AccountStatus][]AccountStatus{
	StatusPending:   {StatusActive},
	StatusActive:    {StatusSuspended},
	StatusSuspended: {StatusActive},
}

// CanTransitionTo reports whether an account may move from s to next.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// User is the identity aggregate. PasswordHash and the token hashes are only
// ever touched by the credential store adapter and the auth service.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`

	University string `json:"university"`
	Course     string `json:"course"`
	Semester   int    `json:"semester"`

	Verified bool          `json:"is_verified"`
	Status   AccountStatus `json:"account_status"`

	VerificationTokenHash   string     `json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`
	ResetTokenHash          string     `json:"-"`
	ResetTokenExpiry        *time.Time `json:"-"`

	LoginAttempts     int        `json:"-"`
	LockUntil         *time.Time `json:"-"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	PasswordChangedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLocked reports whether the account is locked at the given instant.
// A lock exists iff LockUntil is set and strictly in the future.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
