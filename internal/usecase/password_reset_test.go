package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

func newTestPasswordResetService(users *mockUserRepository, tokens *mockTokenRepository, mailer *mockMailDispatcher) *PasswordResetService {
	return NewPasswordResetService(users, tokens, mailer, nil, 0, nil)
}

func TestPasswordResetService_Request(t *testing.T) {
	user := confirmedUser(t, strongTestPassword)
	users := &mockUserRepository{getByEmailResult: user}
	tokens := &mockTokenRepository{}
	mailer := &mockMailDispatcher{}
	service := newTestPasswordResetService(users, tokens, mailer)

	fixedNow := time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }

	ip := "203.0.113.4"
	if err := service.Request(context.Background(), "alice@example.com", &ip); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}

	if tokens.createResetCalls != 1 {
		t.Fatalf("expected one stored reset token, got %d", tokens.createResetCalls)
	}
	if tokens.createdReset.UserID != user.ID {
		t.Fatalf("expected token for user %s, got %s", user.ID, tokens.createdReset.UserID)
	}
	if !tokens.createdReset.ExpiresAt.Equal(fixedNow.Add(defaultResetTTL)) {
		t.Fatalf("expected expiry %v, got %v", fixedNow.Add(defaultResetTTL), tokens.createdReset.ExpiresAt)
	}
	if tokens.createdReset.IP == nil || *tokens.createdReset.IP != ip {
		t.Fatalf("expected requester IP recorded")
	}

	if mailer.resetCalls != 1 {
		t.Fatalf("expected one reset mail, got %d", mailer.resetCalls)
	}
	if security.HashToken(mailer.resetToken) != tokens.createdReset.TokenHash {
		t.Fatalf("expected stored hash to match mailed token")
	}
}

func TestPasswordResetService_Request_UnknownEmailSilent(t *testing.T) {
	tokens := &mockTokenRepository{}
	mailer := &mockMailDispatcher{}
	service := newTestPasswordResetService(&mockUserRepository{}, tokens, mailer)

	if err := service.Request(context.Background(), "ghost@example.com", nil); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if tokens.createResetCalls != 0 || mailer.resetCalls != 0 {
		t.Fatalf("expected no side effects for unknown email")
	}
}

func TestPasswordResetService_Confirm(t *testing.T) {
	rawToken := "raw-reset-token"
	record := domain.PasswordResetToken{
		ID:        "reset-1",
		UserID:    "user-1",
		TokenHash: security.HashToken(rawToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	users := &mockUserRepository{}
	tokens := &mockTokenRepository{getResetResult: &record}
	service := newTestPasswordResetService(users, tokens, &mockMailDispatcher{})

	newPassword := "N3w!SecurePass#4567"
	if err := service.Confirm(context.Background(), rawToken, newPassword); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	if users.updatePasswordCalls != 1 || users.updatePasswordLastID != "user-1" {
		t.Fatalf("expected password updated for user-1")
	}
	if ok, err := security.VerifyPassword(newPassword, users.updatePasswordHash); err != nil || !ok {
		t.Fatalf("expected stored hash to match the new password")
	}
	if tokens.consumeResetCalls != 1 || tokens.consumeResetLastID != "reset-1" {
		t.Fatalf("expected reset token consumed")
	}
	if tokens.revokeForUserCalls != 1 || tokens.revokeForUserLastID != "user-1" {
		t.Fatalf("expected outstanding refresh tokens revoked")
	}
}

func TestPasswordResetService_Confirm_WeakPassword(t *testing.T) {
	rawToken := "raw-reset-token"
	record := domain.PasswordResetToken{
		ID:        "reset-1",
		UserID:    "user-1",
		TokenHash: security.HashToken(rawToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	users := &mockUserRepository{}
	tokens := &mockTokenRepository{getResetResult: &record}
	service := newTestPasswordResetService(users, tokens, &mockMailDispatcher{})

	if err := service.Confirm(context.Background(), rawToken, "password"); !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if users.updatePasswordCalls != 0 {
		t.Fatalf("expected no password write on policy violation")
	}
	if tokens.consumeResetCalls != 0 {
		t.Fatalf("expected token left unconsumed on policy violation")
	}
}

func TestPasswordResetService_Confirm_Rejections(t *testing.T) {
	rawToken := "raw-reset-token"
	now := time.Now()

	cases := []struct {
		name   string
		record *domain.PasswordResetToken
		want   error
	}{
		{name: "unknown token", record: nil, want: ErrResetTokenInvalid},
		{
			name: "already used",
			record: &domain.PasswordResetToken{
				ID: "reset-1", UserID: "user-1",
				TokenHash: security.HashToken(rawToken),
				ExpiresAt: now.Add(time.Hour),
				UsedAt:    ptrTime(now.Add(-time.Minute)),
			},
			want: ErrResetTokenInvalid,
		},
		{
			name: "expired",
			record: &domain.PasswordResetToken{
				ID: "reset-2", UserID: "user-1",
				TokenHash: security.HashToken(rawToken),
				ExpiresAt: now.Add(-time.Minute),
			},
			want: ErrResetTokenExpired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &mockTokenRepository{getResetResult: tc.record}
			service := newTestPasswordResetService(&mockUserRepository{}, tokens, &mockMailDispatcher{})

			if err := service.Confirm(context.Background(), rawToken, "N3w!SecurePass#4567"); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("blank token", func(t *testing.T) {
		service := newTestPasswordResetService(&mockUserRepository{}, &mockTokenRepository{}, &mockMailDispatcher{})
		if err := service.Confirm(context.Background(), "", "N3w!SecurePass#4567"); !errors.Is(err, ErrResetTokenInvalid) {
			t.Fatalf("expected ErrResetTokenInvalid for blank token, got %v", err)
		}
	})
}
