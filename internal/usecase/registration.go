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
	confirmationTokenTTL = 24 * time.Hour

	registrationMethodEmail = "email"
	registrationMethodOAuth = "oauth"

	confirmationMethodEmail = "email"
	confirmationMethodAuto  = "auto"
)

var (
	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the requested handle is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrConfirmationTokenInvalid indicates the provided confirmation token is unknown or already used.
	ErrConfirmationTokenInvalid = errors.New("confirmation token invalid")
	// ErrConfirmationTokenExpired indicates the token exists but is expired.
	ErrConfirmationTokenExpired = errors.New("confirmation token expired")
)

// RegistrationService handles new account onboarding and email confirmation.
type RegistrationService struct {
	tx                port.TxRunner
	users             port.UserRepository
	tokens            port.TokenRepository
	mailer            port.MailDispatcher
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	log               *zap.Logger
	now               func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	tx port.TxRunner,
	users port.UserRepository,
	tokens port.TokenRepository,
	mailer port.MailDispatcher,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		tx:                tx,
		users:             users,
		tokens:            tokens,
		mailer:            mailer,
		events:            events,
		passwordValidator: validator,
		log:               log,
		now:               time.Now,
	}
}

// RegistrationResult captures the created records and the confirmation artifact.
type RegistrationResult struct {
	User      domain.User
	Account   domain.Account
	ExpiresAt time.Time
}

// Register validates input, creates the user with its owning account in one
// transaction, and dispatches the confirmation token by mail.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string, locale *string) (*RegistrationResult, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidateLocale(locale); err != nil {
		return nil, err
	}
	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	encrypted, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:                 uuid.NewString(),
		AccountID:          account.ID,
		Email:              email,
		EncryptedPassword:  encrypted,
		Locale:             locale,
		FilteredLanguages:  []string{},
		ConfirmationSentAt: &now,
		OTPBackupCodes:     []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.tx.WithinTx(ctx, func(users port.UserRepository, accounts port.AccountRepository) error {
		if err := accounts.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrUsernameTaken
			}
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rawToken, err := security.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate confirmation token: %w", err)
	}

	expiresAt := now.Add(confirmationTokenTTL)
	token := domain.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawToken),
		Purpose:   domain.TokenPurposeConfirmation,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.CreateVerification(ctx, token); err != nil {
		return nil, fmt.Errorf("store confirmation token: %w", err)
	}

	// Mail and event delivery are best-effort: the registration itself has
	// already committed.
	if err := s.mailer.SendConfirmation(ctx, user.Email, rawToken, expiresAt); err != nil {
		s.log.Warn("dispatch confirmation mail",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		EventID:            uuid.NewString(),
		UserID:             user.ID,
		AccountID:          account.ID,
		Username:           account.Username,
		Email:              user.Email,
		Locale:             user.Locale,
		RegisteredAt:       now,
		RegistrationMethod: registrationMethodEmail,
	}); err != nil {
		s.log.Warn("publish user registered event", zap.Error(err))
	}

	return &RegistrationResult{User: user, Account: account, ExpiresAt: expiresAt}, nil
}

// Confirm redeems the confirmation token and stamps the confirmation
// timestamp. The token is single-use.
func (s *RegistrationService) Confirm(ctx context.Context, rawToken string) (*domain.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrConfirmationTokenInvalid
	}

	record, err := s.tokens.GetVerificationByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConfirmationTokenInvalid
		}
		return nil, fmt.Errorf("lookup confirmation token: %w", err)
	}

	now := s.now().UTC()
	if record.UsedAt != nil {
		return nil, ErrConfirmationTokenInvalid
	}
	if record.IsExpired(now) {
		return nil, ErrConfirmationTokenExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Confirm(now) {
		if err := s.users.Confirm(ctx, user.ID, now); err != nil {
			return nil, fmt.Errorf("confirm user: %w", err)
		}
	}

	if err := s.tokens.ConsumeVerification(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("consume confirmation token: %w", err)
	}

	if err := s.events.PublishUserConfirmed(ctx, domain.UserConfirmedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		ConfirmedAt: now,
		Method:      confirmationMethodEmail,
	}); err != nil {
		s.log.Warn("publish user confirmed event", zap.Error(err))
	}

	return user, nil
}
