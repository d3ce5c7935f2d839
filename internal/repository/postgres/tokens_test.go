package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

func TestTokenRepositoryVerificationLifecycle(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	now := time.Now().UTC()
	token := domain.VerificationToken{
		ID:        "token-1",
		UserID:    "user-1",
		TokenHash: "hash-1",
		Purpose:   domain.TokenPurposeConfirmation,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO accounts\.verification_tokens`).
		WithArgs(token.ID, token.UserID, token.TokenHash, token.Purpose, token.CreatedAt, token.ExpiresAt, nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.CreateVerification(context.Background(), token); err != nil {
		t.Fatalf("CreateVerification returned error: %v", err)
	}

	mock.ExpectQuery(`SELECT .+ FROM accounts\.verification_tokens WHERE token_hash = \$1`).
		WithArgs("hash-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "purpose", "created_at", "expires_at", "used_at"}).
			AddRow(token.ID, token.UserID, token.TokenHash, token.Purpose, token.CreatedAt, token.ExpiresAt, nil))

	loaded, err := repo.GetVerificationByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("GetVerificationByHash returned error: %v", err)
	}
	if loaded.UserID != "user-1" || loaded.UsedAt != nil {
		t.Fatalf("unexpected token %+v", loaded)
	}

	mock.ExpectExec(`UPDATE accounts\.verification_tokens SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), "token-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.ConsumeVerification(context.Background(), "token-1"); err != nil {
		t.Fatalf("ConsumeVerification returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepositoryConsumeVerificationAlreadyUsed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	mock.ExpectExec(`UPDATE accounts\.verification_tokens SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), "token-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.ConsumeVerification(context.Background(), "token-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for already consumed token, got %v", err)
	}
}

func TestTokenRepositoryRefreshTokenRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	now := time.Now().UTC()
	ip := "203.0.113.9"
	token := domain.RefreshToken{
		ID:        "refresh-1",
		UserID:    "user-1",
		TokenHash: "hash-r",
		IP:        &ip,
		CreatedAt: now,
		ExpiresAt: now.Add(720 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO accounts\.refresh_tokens`).
		WithArgs(token.ID, token.UserID, token.TokenHash, ip, nil, token.CreatedAt, token.ExpiresAt, nil, nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.CreateRefreshToken(context.Background(), token); err != nil {
		t.Fatalf("CreateRefreshToken returned error: %v", err)
	}

	mock.ExpectQuery(`SELECT .+ FROM accounts\.refresh_tokens WHERE token_hash = \$1`).
		WithArgs("hash-r").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "ip", "user_agent", "created_at", "expires_at", "used_at", "revoked_at"}).
			AddRow(token.ID, token.UserID, token.TokenHash, &ip, nil, token.CreatedAt, token.ExpiresAt, nil, nil))

	loaded, err := repo.GetRefreshTokenByHash(context.Background(), "hash-r")
	if err != nil {
		t.Fatalf("GetRefreshTokenByHash returned error: %v", err)
	}
	if !loaded.IsActive(now) {
		t.Fatalf("expected freshly stored token to be active")
	}

	mock.ExpectExec(`UPDATE accounts\.refresh_tokens SET used_at = \$1 WHERE id = \$2 AND used_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), "refresh-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkRefreshTokenUsed(context.Background(), "refresh-1", now); err != nil {
		t.Fatalf("MarkRefreshTokenUsed returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE accounts\.refresh_tokens SET revoked_at = \$1 WHERE user_id = \$2 AND revoked_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	if err := repo.RevokeRefreshTokensForUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("RevokeRefreshTokensForUser returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
