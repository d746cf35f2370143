package domain

import (
	"testing"
	"time"
)

func TestNextLockoutState(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name         string
		attempts     int
		lockUntil    *time.Time
		wantAttempts int
		wantLocked   bool
	}{
		{"first failure", 0, nil, 1, false},
		{"second failure", 1, nil, 2, false},
		{"fourth failure stays unlocked", 3, nil, 4, false},
		{"fifth failure arms the lock", 4, nil, 5, true},
		{"failure while locked keeps the lock", 5, &future, 6, true},
		{"expired lock restarts the counter at one", 5, &past, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts, lockUntil := NextLockoutState(tt.attempts, tt.lockUntil, now)
			if attempts != tt.wantAttempts {
				t.Fatalf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			locked := lockUntil != nil && lockUntil.After(now)
			if locked != tt.wantLocked {
				t.Fatalf("locked = %v, want %v", locked, tt.wantLocked)
			}
		})
	}
}

func TestNextLockoutState_LockDuration(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, lockUntil := NextLockoutState(4, nil, now)
	if lockUntil == nil {
		t.Fatalf("expected a lock after the fifth failure")
	}
	if !lockUntil.Equal(now.Add(LockDuration)) {
		t.Fatalf("lock until = %v, want %v", lockUntil, now.Add(LockDuration))
	}
}

// The lock boundary is strict: still locked one minute before expiry,
// unlocked one minute after.
func TestUserIsLocked_Boundary(t *testing.T) {
	locked := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	until := locked.Add(LockDuration)
	u := &User{LockUntil: &until}

	if !u.IsLocked(locked.Add(119 * time.Minute)) {
		t.Fatalf("expected locked at T+119min")
	}
	if u.IsLocked(until) {
		t.Fatalf("expected unlocked exactly at expiry")
	}
	if u.IsLocked(locked.Add(121 * time.Minute)) {
		t.Fatalf("expected unlocked at T+121min")
	}
}

func TestAccountStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AccountStatus
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusSuspended, true},
		{StatusSuspended, StatusActive, true},
		{StatusPending, StatusSuspended, false},
		{StatusActive, StatusPending, false},
		{StatusSuspended, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
