package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

const (
	defaultBackupCodeCount = 10
	backupCodeLength       = 8
)

var (
	// ErrTwoFactorAlreadyEnabled indicates setup was attempted while OTP sign-in is active.
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication already enabled")
	// ErrTwoFactorNotPending indicates confirmation was attempted without a provisioned secret.
	ErrTwoFactorNotPending = errors.New("two-factor setup not started")
	// ErrTwoFactorCodeInvalid indicates the setup confirmation code did not verify.
	ErrTwoFactorCodeInvalid = errors.New("two-factor code invalid")
)

// TwoFactorService manages the OTP enrollment lifecycle: provisioning a
// secret, confirming it, consuming backup codes, and disabling the
// requirement.
type TwoFactorService struct {
	users           port.UserRepository
	events          port.EventPublisher
	totp            *security.TOTPIssuer
	backupCodeCount int
	log             *zap.Logger
	now             func() time.Time
}

// NewTwoFactorService constructs a two-factor service.
func NewTwoFactorService(
	users port.UserRepository,
	events port.EventPublisher,
	totp *security.TOTPIssuer,
	backupCodeCount int,
	log *zap.Logger,
) *TwoFactorService {
	if backupCodeCount <= 0 {
		backupCodeCount = defaultBackupCodeCount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TwoFactorService{
		users:           users,
		events:          events,
		totp:            totp,
		backupCodeCount: backupCodeCount,
		log:             log,
		now:             time.Now,
	}
}

// BeginSetup provisions a TOTP secret for the user and stores it without
// flipping the sign-in requirement. The otpauth URL goes back to the caller
// for the authenticator app.
func (s *TwoFactorService) BeginSetup(ctx context.Context, userID string) (*security.TOTPProvisioning, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.TwoFactorEnabled() {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	provisioning, err := s.totp.Generate(user.Email)
	if err != nil {
		return nil, err
	}

	secret := provisioning.Secret
	user.OTPSecret = &secret
	user.OTPRequiredForLogin = false
	user.OTPBackupCodes = []string{}
	if err := s.users.UpdateTwoFactor(ctx, *user); err != nil {
		return nil, fmt.Errorf("store totp secret: %w", err)
	}

	return &provisioning, nil
}

// ConfirmSetup verifies one code against the provisioned secret, enables
// OTP-gated sign-in, and returns the plaintext backup codes exactly once.
// Only their digests are stored.
func (s *TwoFactorService) ConfirmSetup(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.TwoFactorEnabled() {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	if user.OTPSecret == nil {
		return nil, ErrTwoFactorNotPending
	}

	matched, err := s.totp.Verify(code, *user.OTPSecret)
	if err != nil {
		return nil, fmt.Errorf("verify totp: %w", err)
	}
	if !matched {
		return nil, ErrTwoFactorCodeInvalid
	}

	plaintext := make([]string, 0, s.backupCodeCount)
	digests := make([]string, 0, s.backupCodeCount)
	for i := 0; i < s.backupCodeCount; i++ {
		codeValue, err := security.GenerateNumericCode(backupCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		digest, err := security.HashPassword(codeValue)
		if err != nil {
			return nil, fmt.Errorf("hash backup code: %w", err)
		}
		plaintext = append(plaintext, codeValue)
		digests = append(digests, digest)
	}

	user.EnableTwoFactor(*user.OTPSecret, digests)
	if err := s.users.UpdateTwoFactor(ctx, *user); err != nil {
		return nil, fmt.Errorf("enable two-factor: %w", err)
	}

	if err := s.events.PublishTwoFactorEnabled(ctx, domain.TwoFactorEnabledEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		BackupCodes: len(digests),
		EnabledAt:   s.now().UTC(),
	}); err != nil {
		s.log.Warn("publish two-factor enabled event", zap.Error(err))
	}

	return plaintext, nil
}

// Disable clears the OTP requirement, the secret, and any remaining backup
// codes in one persisted update. A persistence failure propagates and leaves
// the stored row untouched.
func (s *TwoFactorService) Disable(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	user.DisableTwoFactor()
	if err := s.users.UpdateTwoFactor(ctx, *user); err != nil {
		return fmt.Errorf("disable two-factor: %w", err)
	}

	if err := s.events.PublishTwoFactorDisabled(ctx, domain.TwoFactorDisabledEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		DisabledAt: s.now().UTC(),
	}); err != nil {
		s.log.Warn("publish two-factor disabled event", zap.Error(err))
	}

	return nil
}
