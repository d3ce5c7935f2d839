package usecase

import (
	"context"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

type mockUserRepository struct {
	createErr   error
	createCalls int
	createdUser domain.User

	getByIDResult *domain.User
	getByIDErr    error
	getByIDCalls  int
	getByIDLastID string

	getByEmailResult *domain.User
	getByEmailErr    error
	getByEmailCalls  int
	getByEmailLast   string

	getByOAuthResults []*domain.User
	getByOAuthErrs    []error
	getByOAuthCalls   int

	confirmErr    error
	confirmCalls  int
	confirmLastID string
	confirmLastAt time.Time

	updatePasswordErr    error
	updatePasswordCalls  int
	updatePasswordLastID string
	updatePasswordHash   string

	updateSignInErr   error
	updateSignInCalls int
	updateSignInUser  domain.User

	updateTwoFactorErr   error
	updateTwoFactorCalls int
	updateTwoFactorUser  domain.User

	updateBackupCodesErr     error
	updateBackupCodesCalls   int
	updateBackupCodesLastID  string
	updateBackupCodesDigests []string

	updatePreferencesErr   error
	updatePreferencesCalls int
	updatePreferencesUser  domain.User

	listResult []domain.User
	listErr    error
	listCalls  int
	listFilter port.UserFilter

	countResult int
	countErr    error
	countCalls  int
	countFilter port.UserFilter
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) error {
	m.createCalls++
	m.createdUser = user
	return m.createErr
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.getByIDCalls++
	m.getByIDLastID = id
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	if m.getByIDResult == nil {
		return nil, repository.ErrNotFound
	}
	userCopy := *m.getByIDResult
	return &userCopy, nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.getByEmailCalls++
	m.getByEmailLast = email
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	if m.getByEmailResult == nil {
		return nil, repository.ErrNotFound
	}
	userCopy := *m.getByEmailResult
	return &userCopy, nil
}

// GetByOAuth pops from the configured result queue so tests can model the
// miss-then-hit sequence of a creation race.
func (m *mockUserRepository) GetByOAuth(context.Context, string, string) (*domain.User, error) {
	idx := m.getByOAuthCalls
	m.getByOAuthCalls++
	var err error
	if idx < len(m.getByOAuthErrs) {
		err = m.getByOAuthErrs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(m.getByOAuthResults) && m.getByOAuthResults[idx] != nil {
		userCopy := *m.getByOAuthResults[idx]
		return &userCopy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Confirm(_ context.Context, id string, confirmedAt time.Time) error {
	m.confirmCalls++
	m.confirmLastID = id
	m.confirmLastAt = confirmedAt
	return m.confirmErr
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id, encryptedPassword string, _ time.Time) error {
	m.updatePasswordCalls++
	m.updatePasswordLastID = id
	m.updatePasswordHash = encryptedPassword
	return m.updatePasswordErr
}

func (m *mockUserRepository) UpdateSignIn(_ context.Context, user domain.User) error {
	m.updateSignInCalls++
	m.updateSignInUser = user
	return m.updateSignInErr
}

func (m *mockUserRepository) UpdateTwoFactor(_ context.Context, user domain.User) error {
	m.updateTwoFactorCalls++
	m.updateTwoFactorUser = user
	return m.updateTwoFactorErr
}

func (m *mockUserRepository) UpdateBackupCodes(_ context.Context, id string, digests []string) error {
	m.updateBackupCodesCalls++
	m.updateBackupCodesLastID = id
	m.updateBackupCodesDigests = digests
	return m.updateBackupCodesErr
}

func (m *mockUserRepository) UpdatePreferences(_ context.Context, user domain.User) error {
	m.updatePreferencesCalls++
	m.updatePreferencesUser = user
	return m.updatePreferencesErr
}

func (m *mockUserRepository) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	m.listCalls++
	m.listFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.User, len(m.listResult))
	copy(out, m.listResult)
	return out, nil
}

func (m *mockUserRepository) Count(_ context.Context, filter port.UserFilter) (int, error) {
	m.countCalls++
	m.countFilter = filter
	return m.countResult, m.countErr
}

type mockAccountRepository struct {
	createErr      error
	createCalls    int
	createdAccount domain.Account

	getByIDResult *domain.Account
	getByIDErr    error
	getByIDCalls  int

	updateSettingsErr      error
	updateSettingsCalls    int
	updateSettingsLastID   string
	updateSettingsSettings domain.AccountSettings
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	m.createdAccount = account
	return m.createErr
}

func (m *mockAccountRepository) GetByID(context.Context, string) (*domain.Account, error) {
	m.getByIDCalls++
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	if m.getByIDResult == nil {
		return nil, repository.ErrNotFound
	}
	accountCopy := *m.getByIDResult
	return &accountCopy, nil
}

func (m *mockAccountRepository) GetByUsername(context.Context, string) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepository) UpdateSettings(_ context.Context, id string, settings domain.AccountSettings) error {
	m.updateSettingsCalls++
	m.updateSettingsLastID = id
	m.updateSettingsSettings = settings
	return m.updateSettingsErr
}

func (m *mockAccountRepository) SetLocked(context.Context, string, bool) error {
	return nil
}

// mockTxRunner hands its own mocks to the transactional closure, so writes
// made "inside" the transaction land on the same recorders the test inspects.
type mockTxRunner struct {
	users    *mockUserRepository
	accounts *mockAccountRepository
	err      error
	calls    int
}

func (m *mockTxRunner) WithinTx(_ context.Context, fn func(port.UserRepository, port.AccountRepository) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(m.users, m.accounts)
}

type mockTokenRepository struct {
	createVerificationErr error
	createCalls           int
	createdToken          domain.VerificationToken

	getVerificationResult   *domain.VerificationToken
	getVerificationErr      error
	getVerificationCalls    int
	getVerificationLastHash string

	consumeVerificationErr    error
	consumeVerificationCalls  int
	consumeVerificationLastID string

	createResetErr   error
	createResetCalls int
	createdReset     domain.PasswordResetToken

	getResetResult   *domain.PasswordResetToken
	getResetErr      error
	getResetCalls    int
	getResetLastHash string

	consumeResetErr    error
	consumeResetCalls  int
	consumeResetLastID string

	createRefreshErr   error
	createRefreshCalls int
	createdRefresh     domain.RefreshToken

	getRefreshResult   *domain.RefreshToken
	getRefreshErr      error
	getRefreshCalls    int
	getRefreshLastHash string

	markUsedErr    error
	markUsedCalls  int
	markUsedLastID string

	revokeForUserErr    error
	revokeForUserCalls  int
	revokeForUserLastID string
}

func (m *mockTokenRepository) CreateVerification(_ context.Context, token domain.VerificationToken) error {
	m.createCalls++
	m.createdToken = token
	return m.createVerificationErr
}

func (m *mockTokenRepository) GetVerificationByHash(_ context.Context, hash string) (*domain.VerificationToken, error) {
	m.getVerificationCalls++
	m.getVerificationLastHash = hash
	if m.getVerificationErr != nil {
		return nil, m.getVerificationErr
	}
	if m.getVerificationResult == nil {
		return nil, repository.ErrNotFound
	}
	tokenCopy := *m.getVerificationResult
	return &tokenCopy, nil
}

func (m *mockTokenRepository) ConsumeVerification(_ context.Context, id string) error {
	m.consumeVerificationCalls++
	m.consumeVerificationLastID = id
	return m.consumeVerificationErr
}

func (m *mockTokenRepository) CreatePasswordReset(_ context.Context, token domain.PasswordResetToken) error {
	m.createResetCalls++
	m.createdReset = token
	return m.createResetErr
}

func (m *mockTokenRepository) GetPasswordResetByHash(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
	m.getResetCalls++
	m.getResetLastHash = hash
	if m.getResetErr != nil {
		return nil, m.getResetErr
	}
	if m.getResetResult == nil {
		return nil, repository.ErrNotFound
	}
	tokenCopy := *m.getResetResult
	return &tokenCopy, nil
}

func (m *mockTokenRepository) ConsumePasswordReset(_ context.Context, id string) error {
	m.consumeResetCalls++
	m.consumeResetLastID = id
	return m.consumeResetErr
}

func (m *mockTokenRepository) CreateRefreshToken(_ context.Context, token domain.RefreshToken) error {
	m.createRefreshCalls++
	m.createdRefresh = token
	return m.createRefreshErr
}

func (m *mockTokenRepository) GetRefreshTokenByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	m.getRefreshCalls++
	m.getRefreshLastHash = hash
	if m.getRefreshErr != nil {
		return nil, m.getRefreshErr
	}
	if m.getRefreshResult == nil {
		return nil, repository.ErrNotFound
	}
	tokenCopy := *m.getRefreshResult
	return &tokenCopy, nil
}

func (m *mockTokenRepository) MarkRefreshTokenUsed(_ context.Context, refreshTokenID string, _ time.Time) error {
	m.markUsedCalls++
	m.markUsedLastID = refreshTokenID
	return m.markUsedErr
}

func (m *mockTokenRepository) RevokeRefreshTokensForUser(_ context.Context, userID string) error {
	m.revokeForUserCalls++
	m.revokeForUserLastID = userID
	return m.revokeForUserErr
}

type mockEventPublisher struct {
	registeredCalls int
	registered      domain.UserRegisteredEvent
	registeredErr   error

	confirmedCalls int
	confirmed      domain.UserConfirmedEvent

	signedInCalls int
	signedIn      domain.UserSignedInEvent

	oauthLinkedCalls int
	oauthLinked      domain.OAuthLinkedEvent

	twoFactorEnabledCalls int
	twoFactorEnabled      domain.TwoFactorEnabledEvent

	twoFactorDisabledCalls int
	twoFactorDisabled      domain.TwoFactorDisabledEvent
}

func (m *mockEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	m.registeredCalls++
	m.registered = event
	return m.registeredErr
}

func (m *mockEventPublisher) PublishUserConfirmed(_ context.Context, event domain.UserConfirmedEvent) error {
	m.confirmedCalls++
	m.confirmed = event
	return nil
}

func (m *mockEventPublisher) PublishUserSignedIn(_ context.Context, event domain.UserSignedInEvent) error {
	m.signedInCalls++
	m.signedIn = event
	return nil
}

func (m *mockEventPublisher) PublishOAuthLinked(_ context.Context, event domain.OAuthLinkedEvent) error {
	m.oauthLinkedCalls++
	m.oauthLinked = event
	return nil
}

func (m *mockEventPublisher) PublishTwoFactorEnabled(_ context.Context, event domain.TwoFactorEnabledEvent) error {
	m.twoFactorEnabledCalls++
	m.twoFactorEnabled = event
	return nil
}

func (m *mockEventPublisher) PublishTwoFactorDisabled(_ context.Context, event domain.TwoFactorDisabledEvent) error {
	m.twoFactorDisabledCalls++
	m.twoFactorDisabled = event
	return nil
}

type mockMailDispatcher struct {
	confirmationCalls     int
	confirmationEmail     string
	confirmationToken     string
	confirmationExpiresAt time.Time
	confirmationErr       error

	resetCalls     int
	resetEmail     string
	resetToken     string
	resetExpiresAt time.Time
	resetErr       error
}

func (m *mockMailDispatcher) SendConfirmation(_ context.Context, email, token string, expiresAt time.Time) error {
	m.confirmationCalls++
	m.confirmationEmail = email
	m.confirmationToken = token
	m.confirmationExpiresAt = expiresAt
	return m.confirmationErr
}

func (m *mockMailDispatcher) SendPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	m.resetCalls++
	m.resetEmail = email
	m.resetToken = token
	m.resetExpiresAt = expiresAt
	return m.resetErr
}

type mockChallengeStore struct {
	stored     map[string]port.LoginChallenge
	storeErr   error
	storeCalls int
	lastTTL    time.Duration
	lastID     string

	getErr error

	deleteCalls  int
	deleteErr    error
	deleteLastID string
}

func newMockChallengeStore() *mockChallengeStore {
	return &mockChallengeStore{stored: make(map[string]port.LoginChallenge)}
}

func (m *mockChallengeStore) Store(_ context.Context, id string, challenge port.LoginChallenge, ttl time.Duration) error {
	m.storeCalls++
	m.lastID = id
	m.lastTTL = ttl
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored[id] = challenge
	return nil
}

func (m *mockChallengeStore) Get(_ context.Context, id string) (*port.LoginChallenge, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	challenge, ok := m.stored[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &challenge, nil
}

func (m *mockChallengeStore) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	m.deleteLastID = id
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.stored, id)
	return nil
}

func ptrString(s string) *string {
	return &s
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func ptrBool(b bool) *bool {
	return &b
}
