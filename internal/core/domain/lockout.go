package domain

import "time"

const (
	// MaxLoginAttempts is the number of consecutive failures that locks an account.
	MaxLoginAttempts = 5
	// LockDuration is how long a lock lasts once triggered.
	LockDuration = 2 * time.Hour
)

// NextLockoutState computes the lockout transition after one failed login.
// An expired lock restarts the counter at 1 — the attempt that discovers the
// expiry still counts. Reaching MaxLoginAttempts sets the lock; the attempt
// that triggers it is itself rejected as bad credentials, the lock takes
// effect from the following attempt.
//
// The Mongo credential store mirrors this function as a single
// aggregation-pipeline update so concurrent failures cannot lose a count.
func NextLockoutState(attempts int, lockUntil *time.Time, now time.Time) (int, *time.Time) {
	if lockUntil != nil && !lockUntil.After(now) {
		return 1, nil
	}
	attempts++
	if attempts >= MaxLoginAttempts && lockUntil == nil {
		until := now.Add(LockDuration)
		return attempts, &until
	}
	return attempts, lockUntil
}
