package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const (
	defaultResetTTL = time.Hour

	resetTokenBytes = 32
)

var (
	// ErrResetTokenInvalid indicates the reset token is unknown or already used.
	ErrResetTokenInvalid = errors.New("password reset token invalid")
	// ErrResetTokenExpired indicates the reset token exists but is expired.
	ErrResetTokenExpired = errors.New("password reset token expired")
)

// PasswordResetService issues and redeems single-use password reset tokens.
type PasswordResetService struct {
	users             port.UserRepository
	tokens            port.TokenRepository
	mailer            port.MailDispatcher
	passwordValidator *security.PasswordValidator
	log               *zap.Logger
	now               func() time.Time
	resetTTL          time.Duration
}

// NewPasswordResetService constructs a password reset service.
func NewPasswordResetService(
	users port.UserRepository,
	tokens port.TokenRepository,
	mailer port.MailDispatcher,
	validator *security.PasswordValidator,
	resetTTL time.Duration,
	log *zap.Logger,
) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		users:             users,
		tokens:            tokens,
		mailer:            mailer,
		passwordValidator: validator,
		log:               log,
		now:               time.Now,
		resetTTL:          resetTTL,
	}
}

// Request issues a reset token for the address and mails it out. Unknown
// addresses return success without side effects so the endpoint does not leak
// which emails are registered.
func (s *PasswordResetService) Request(ctx context.Context, email string, ip *string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("password reset requested for unknown email",
				zap.String("email", logger.MaskEmail(email)),
			)
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	rawToken, err := security.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)
	record := domain.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawToken),
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.CreatePasswordReset(ctx, record); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawToken, expiresAt); err != nil {
		return fmt.Errorf("dispatch reset mail: %w", err)
	}

	return nil
}

// Confirm redeems the reset token, stores the new password, and revokes every
// outstanding refresh token so stolen sessions die with the old password.
func (s *PasswordResetService) Confirm(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrResetTokenInvalid
	}

	record, err := s.tokens.GetPasswordResetByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	now := s.now().UTC()
	if record.UsedAt != nil {
		return ErrResetTokenInvalid
	}
	if record.IsExpired(now) {
		return ErrResetTokenExpired
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	encrypted, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, record.UserID, encrypted, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.ConsumePasswordReset(ctx, record.ID); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	if err := s.tokens.RevokeRefreshTokensForUser(ctx, record.UserID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	return nil
}
