package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const (
	defaultChallengePrefix = "login_challenge"

	fieldUserID    = "user_id"
	fieldIP        = "ip"
	fieldCreatedAt = "created_at"
)

// LoginChallengeRepository keeps the pending half of OTP-gated sign-ins in
// Redis. A challenge lives until the one-time code arrives or the TTL fires.
type LoginChallengeRepository struct {
	client *red.Client
	prefix string
	now    func() time.Time
}

// NewLoginChallengeRepository constructs a repository with the provided Redis client and key prefix.
func NewLoginChallengeRepository(client *red.Client, keyPrefix string) *LoginChallengeRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultChallengePrefix
	}

	return &LoginChallengeRepository{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Store persists the challenge under the opaque identifier with the supplied TTL.
func (r *LoginChallengeRepository) Store(ctx context.Context, id string, challenge port.LoginChallenge, ttl time.Duration) error {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return errors.New("challenge id is required")
	case challenge.UserID == "":
		return errors.New("user id is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	createdAt := challenge.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}

	fields := map[string]any{
		fieldUserID:    challenge.UserID,
		fieldCreatedAt: strconv.FormatInt(createdAt.Unix(), 10),
	}
	if challenge.IP != nil && *challenge.IP != "" {
		fields[fieldIP] = *challenge.IP
	}

	key := r.key(id)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store login challenge: %w", err)
	}

	return nil
}

// Get retrieves a pending challenge. Expired or unknown identifiers surface
// as repository.ErrNotFound.
func (r *LoginChallengeRepository) Get(ctx context.Context, id string) (*port.LoginChallenge, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("challenge id is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall login challenge: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	userID := strings.TrimSpace(values[fieldUserID])
	if userID == "" {
		return nil, repository.ErrNotFound
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	challenge := port.LoginChallenge{
		UserID:    userID,
		CreatedAt: createdAt,
	}
	if ip := strings.TrimSpace(values[fieldIP]); ip != "" {
		challenge.IP = &ip
	}

	return &challenge, nil
}

// Delete removes the challenge, enforcing single-use semantics.
func (r *LoginChallengeRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("challenge id is required")
	}

	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete login challenge: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WithClock overrides the internal clock, used in tests.
func (r *LoginChallengeRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

func (r *LoginChallengeRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}

var _ port.LoginChallengeStore = (*LoginChallengeRepository)(nil)
