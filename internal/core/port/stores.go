package port

import (
	"context"
	"time"
)

// LoginChallenge is the pending half of an OTP-gated sign-in: the password
// already checked out, the one-time code has not.
type LoginChallenge struct {
	UserID    string
	IP        *string
	CreatedAt time.Time
}

// LoginChallengeStore keeps short-lived login challenges keyed by an opaque
// identifier handed back to the client.
type LoginChallengeStore interface {
	Store(ctx context.Context, id string, challenge LoginChallenge, ttl time.Duration) error
	Get(ctx context.Context, id string) (*LoginChallenge, error)
	Delete(ctx context.Context, id string) error
}

// RateLimitStore defines the persistence operations required to enforce sliding-window limits.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
