package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

func newTestTwoFactorService(users *mockUserRepository, publisher *mockEventPublisher) *TwoFactorService {
	return NewTwoFactorService(users, publisher, security.NewTOTPIssuer("accounts", 1), 0, nil)
}

func TestTwoFactorService_BeginSetup(t *testing.T) {
	user := confirmedUser(t, strongTestPassword)
	users := &mockUserRepository{getByIDResult: user}
	service := newTestTwoFactorService(users, &mockEventPublisher{})

	provisioning, err := service.BeginSetup(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("BeginSetup returned error: %v", err)
	}

	if provisioning.Secret == "" || provisioning.URL == "" {
		t.Fatalf("expected secret and otpauth URL")
	}
	if users.updateTwoFactorCalls != 1 {
		t.Fatalf("expected one persisted update, got %d", users.updateTwoFactorCalls)
	}
	saved := users.updateTwoFactorUser
	if saved.OTPSecret == nil || *saved.OTPSecret != provisioning.Secret {
		t.Fatalf("expected provisioned secret stored")
	}
	if saved.OTPRequiredForLogin {
		t.Fatalf("expected OTP requirement to stay off until confirmation")
	}
}

func TestTwoFactorService_BeginSetup_AlreadyEnabled(t *testing.T) {
	user := confirmedUser(t, strongTestPassword)
	user.OTPRequiredForLogin = true
	users := &mockUserRepository{getByIDResult: user}
	service := newTestTwoFactorService(users, &mockEventPublisher{})

	if _, err := service.BeginSetup(context.Background(), user.ID); !errors.Is(err, ErrTwoFactorAlreadyEnabled) {
		t.Fatalf("expected ErrTwoFactorAlreadyEnabled, got %v", err)
	}
	if users.updateTwoFactorCalls != 0 {
		t.Fatalf("expected no write when already enabled")
	}
}

func TestTwoFactorService_ConfirmSetup(t *testing.T) {
	issuer := security.NewTOTPIssuer("accounts", 1)
	provisioning, err := issuer.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	user := confirmedUser(t, strongTestPassword)
	user.OTPSecret = &provisioning.Secret

	users := &mockUserRepository{getByIDResult: user}
	publisher := &mockEventPublisher{}
	service := newTestTwoFactorService(users, publisher)

	code, err := totp.GenerateCode(provisioning.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("GenerateCode returned error: %v", err)
	}

	codes, err := service.ConfirmSetup(context.Background(), user.ID, code)
	if err != nil {
		t.Fatalf("ConfirmSetup returned error: %v", err)
	}

	if len(codes) != defaultBackupCodeCount {
		t.Fatalf("expected %d backup codes, got %d", defaultBackupCodeCount, len(codes))
	}
	for _, c := range codes {
		if len(c) != backupCodeLength {
			t.Fatalf("expected %d-digit backup codes, got %q", backupCodeLength, c)
		}
	}

	saved := users.updateTwoFactorUser
	if !saved.OTPRequiredForLogin {
		t.Fatalf("expected OTP requirement enabled")
	}
	if len(saved.OTPBackupCodes) != defaultBackupCodeCount {
		t.Fatalf("expected %d stored digests, got %d", defaultBackupCodeCount, len(saved.OTPBackupCodes))
	}
	for i, digest := range saved.OTPBackupCodes {
		if digest == codes[i] {
			t.Fatalf("expected digests, not plaintext, to be stored")
		}
	}
	if ok, err := security.VerifyPassword(codes[0], saved.OTPBackupCodes[0]); err != nil || !ok {
		t.Fatalf("expected first digest to match first plaintext code")
	}

	if publisher.twoFactorEnabledCalls != 1 {
		t.Fatalf("expected enabled event once, got %d", publisher.twoFactorEnabledCalls)
	}
	if publisher.twoFactorEnabled.BackupCodes != defaultBackupCodeCount {
		t.Fatalf("expected event backup code count %d, got %d", defaultBackupCodeCount, publisher.twoFactorEnabled.BackupCodes)
	}
}

func TestTwoFactorService_ConfirmSetup_NotPending(t *testing.T) {
	user := confirmedUser(t, strongTestPassword)
	users := &mockUserRepository{getByIDResult: user}
	service := newTestTwoFactorService(users, &mockEventPublisher{})

	if _, err := service.ConfirmSetup(context.Background(), user.ID, "123456"); !errors.Is(err, ErrTwoFactorNotPending) {
		t.Fatalf("expected ErrTwoFactorNotPending, got %v", err)
	}
}

func TestTwoFactorService_ConfirmSetup_InvalidCode(t *testing.T) {
	issuer := security.NewTOTPIssuer("accounts", 1)
	provisioning, err := issuer.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	user := confirmedUser(t, strongTestPassword)
	user.OTPSecret = &provisioning.Secret
	users := &mockUserRepository{getByIDResult: user}
	service := newTestTwoFactorService(users, &mockEventPublisher{})

	if _, err := service.ConfirmSetup(context.Background(), user.ID, "000000"); !errors.Is(err, ErrTwoFactorCodeInvalid) {
		t.Fatalf("expected ErrTwoFactorCodeInvalid, got %v", err)
	}
	if users.updateTwoFactorCalls != 0 {
		t.Fatalf("expected no write on a bad confirmation code")
	}
}

func TestTwoFactorService_Disable(t *testing.T) {
	digest, err := security.HashPassword("12345678")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	user := confirmedUser(t, strongTestPassword)
	user.OTPRequiredForLogin = true
	user.OTPSecret = ptrString("JBSWY3DPEHPK3PXP")
	user.OTPBackupCodes = []string{digest}

	users := &mockUserRepository{getByIDResult: user}
	publisher := &mockEventPublisher{}
	service := newTestTwoFactorService(users, publisher)

	if err := service.Disable(context.Background(), user.ID); err != nil {
		t.Fatalf("Disable returned error: %v", err)
	}

	saved := users.updateTwoFactorUser
	if saved.OTPRequiredForLogin {
		t.Fatalf("expected OTP requirement cleared")
	}
	if saved.OTPSecret != nil {
		t.Fatalf("expected secret cleared")
	}
	if len(saved.OTPBackupCodes) != 0 {
		t.Fatalf("expected backup codes cleared, got %d", len(saved.OTPBackupCodes))
	}
	if publisher.twoFactorDisabledCalls != 1 {
		t.Fatalf("expected disabled event once, got %d", publisher.twoFactorDisabledCalls)
	}
}

func TestTwoFactorService_Disable_PersistenceErrorPropagates(t *testing.T) {
	user := confirmedUser(t, strongTestPassword)
	user.OTPRequiredForLogin = true
	user.OTPSecret = ptrString("JBSWY3DPEHPK3PXP")

	users := &mockUserRepository{getByIDResult: user, updateTwoFactorErr: errors.New("db down")}
	publisher := &mockEventPublisher{}
	service := newTestTwoFactorService(users, publisher)

	if err := service.Disable(context.Background(), user.ID); err == nil {
		t.Fatalf("expected persistence error to propagate")
	}
	if publisher.twoFactorDisabledCalls != 0 {
		t.Fatalf("expected no event when the write fails")
	}
}
