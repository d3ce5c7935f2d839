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
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const (
	signInMethodPassword = "password"
	signInMethodOTP      = "otp"
	signInMethodBackup   = "backup_code"
	signInMethodOAuth    = "oauth"

	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultChallengeTTL    = 5 * time.Minute

	challengeIDBytes   = 24
	refreshSecretBytes = 32
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnconfirmedAccount indicates the account has not confirmed its email yet.
	ErrUnconfirmedAccount = errors.New("account pending confirmation")
	// ErrChallengeInvalid indicates the login challenge is unknown or expired.
	ErrChallengeInvalid = errors.New("login challenge invalid")
	// ErrOTPInvalid indicates neither the TOTP code nor a backup code matched.
	ErrOTPInvalid = errors.New("one-time password invalid")
	// ErrInvalidRefreshToken indicates the refresh token does not exist or was revoked.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginOutcome is either a finished sign-in or a pending two-factor challenge.
type LoginOutcome struct {
	User        *domain.User
	Tokens      *TokenPair
	ChallengeID string
}

// TwoFactorRequired reports whether the caller must complete an OTP challenge.
func (o LoginOutcome) TwoFactorRequired() bool {
	return o.ChallengeID != ""
}

// AuthService coordinates password sign-in, the OTP challenge handoff, and
// refresh token rotation.
type AuthService struct {
	users        port.UserRepository
	tokens       port.TokenRepository
	challenges   port.LoginChallengeStore
	events       port.EventPublisher
	tokenManager *security.TokenManager
	totp         *security.TOTPIssuer
	log          *zap.Logger
	now          func() time.Time
	refreshTTL   time.Duration
	challengeTTL time.Duration
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	tokens port.TokenRepository,
	challenges port.LoginChallengeStore,
	events port.EventPublisher,
	tokenManager *security.TokenManager,
	totp *security.TOTPIssuer,
	refreshTTL time.Duration,
	challengeTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}
	if challengeTTL <= 0 {
		challengeTTL = defaultChallengeTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:        users,
		tokens:       tokens,
		challenges:   challenges,
		events:       events,
		tokenManager: tokenManager,
		totp:         totp,
		log:          log,
		now:          time.Now,
		refreshTTL:   refreshTTL,
		challengeTTL: challengeTTL,
	}
}

// Authenticate validates credentials. Accounts with two-factor enabled get a
// short-lived challenge instead of tokens; everyone else signs in directly.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, ip *string) (*LoginOutcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, ErrUnconfirmedAccount
	}

	if user.TwoFactorEnabled() {
		challengeID, err := security.GenerateSecureToken(challengeIDBytes)
		if err != nil {
			return nil, fmt.Errorf("generate challenge id: %w", err)
		}

		challenge := port.LoginChallenge{
			UserID:    user.ID,
			IP:        ip,
			CreatedAt: s.now().UTC(),
		}
		if err := s.challenges.Store(ctx, challengeID, challenge, s.challengeTTL); err != nil {
			return nil, fmt.Errorf("store login challenge: %w", err)
		}

		return &LoginOutcome{User: user, ChallengeID: challengeID}, nil
	}

	pair, err := s.finishSignIn(ctx, user, ip, signInMethodPassword)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{User: user, Tokens: pair}, nil
}

// CompleteTwoFactor finishes an OTP-gated sign-in: the code is checked
// against the TOTP secret first, then against the remaining backup codes.
// A matching backup code is consumed.
func (s *AuthService) CompleteTwoFactor(ctx context.Context, challengeID, code string) (*LoginOutcome, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, ErrChallengeInvalid
	}

	challenge, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChallengeInvalid
		}
		return nil, fmt.Errorf("lookup login challenge: %w", err)
	}

	user, err := s.users.GetByID(ctx, challenge.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.OTPSecret == nil {
		return nil, ErrChallengeInvalid
	}

	method := signInMethodOTP
	matched, err := s.totp.Verify(code, *user.OTPSecret)
	if err != nil {
		return nil, fmt.Errorf("verify totp: %w", err)
	}

	if !matched {
		remaining, consumed, err := consumeBackupCode(user.OTPBackupCodes, code)
		if err != nil {
			return nil, err
		}
		if !consumed {
			return nil, ErrOTPInvalid
		}
		if err := s.users.UpdateBackupCodes(ctx, user.ID, remaining); err != nil {
			return nil, fmt.Errorf("consume backup code: %w", err)
		}
		user.OTPBackupCodes = remaining
		method = signInMethodBackup
	}

	if err := s.challenges.Delete(ctx, challengeID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("delete login challenge: %w", err)
	}

	pair, err := s.finishSignIn(ctx, user, challenge.IP, method)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{User: user, Tokens: pair}, nil
}

// Refresh rotates the presented refresh token for a new pair. A refresh
// token is exchanged exactly once.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginOutcome, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	record, err := s.tokens.GetRefreshTokenByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := s.now().UTC()
	if record.RevokedAt != nil || record.UsedAt != nil {
		return nil, ErrInvalidRefreshToken
	}
	if record.IsExpired(now) {
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.tokens.MarkRefreshTokenUsed(ctx, record.ID, now); err != nil {
		return nil, fmt.Errorf("mark refresh token used: %w", err)
	}

	pair, err := s.issueTokens(ctx, user, record.IP, record.UserAgent)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{User: user, Tokens: pair}, nil
}

// SignInWithOAuth completes a sign-in for a user already resolved through an
// external identity provider. Credential checks happened upstream.
func (s *AuthService) SignInWithOAuth(ctx context.Context, user *domain.User, ip *string) (*TokenPair, error) {
	return s.finishSignIn(ctx, user, ip, signInMethodOAuth)
}

func (s *AuthService) finishSignIn(ctx context.Context, user *domain.User, ip *string, method string) (*TokenPair, error) {
	now := s.now().UTC()
	user.RegisterSignIn(now, ip)
	if err := s.users.UpdateSignIn(ctx, *user); err != nil {
		return nil, fmt.Errorf("update sign-in tracking: %w", err)
	}

	pair, err := s.issueTokens(ctx, user, ip, nil)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishUserSignedIn(ctx, domain.UserSignedInEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		SignInCount: user.SignInCount,
		IPAddress:   ip,
		Method:      method,
		SignedInAt:  now,
	}); err != nil {
		s.log.Warn("publish user signed in event", zap.Error(err))
	}

	return pair, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, ip, userAgent *string) (*TokenPair, error) {
	now := s.now().UTC()

	accessToken, err := s.tokenManager.Issue(user.ID, user.Admin, now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	rawRefresh, err := security.GenerateSecureToken(refreshSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshExpiry := now.Add(s.refreshTTL)
	record := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawRefresh),
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: refreshExpiry,
	}
	if err := s.tokens.CreateRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(s.tokenManager.AccessTokenTTL()),
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// consumeBackupCode checks the code against the stored digests and, on a
// match, returns the remaining digests with the matched one removed.
func consumeBackupCode(digests []string, code string) ([]string, bool, error) {
	if code == "" {
		return digests, false, nil
	}
	for i, digest := range digests {
		ok, err := security.VerifyPassword(code, digest)
		if err != nil {
			return digests, false, fmt.Errorf("verify backup code: %w", err)
		}
		if ok {
			remaining := make([]string, 0, len(digests)-1)
			remaining = append(remaining, digests[:i]...)
			remaining = append(remaining, digests[i+1:]...)
			return remaining, true, nil
		}
	}
	return digests, false, nil
}
