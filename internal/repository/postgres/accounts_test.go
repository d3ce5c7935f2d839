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

func TestAccountRepositoryCreateAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	privacy := domain.PrivacyUnlisted
	account := domain.Account{
		ID:        "account-1",
		Username:  "alice",
		Locked:    true,
		Settings:  domain.AccountSettings{DefaultPrivacy: &privacy},
		CreatedAt: now,
		UpdatedAt: now,
	}

	settingsJSON, err := marshalSettings(account.Settings)
	if err != nil {
		t.Fatalf("marshal settings: %v", err)
	}

	mock.ExpectExec(`INSERT INTO accounts\.accounts`).
		WithArgs(account.ID, account.Username, account.DisplayName, account.Locked, settingsJSON, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	mock.ExpectQuery(`SELECT .+ FROM accounts\.accounts WHERE id = \$1`).
		WithArgs("account-1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("account-1", "alice", "", true, settingsJSON, now, now))

	loaded, err := repo.GetByID(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if loaded.Username != "alice" || !loaded.Locked {
		t.Fatalf("unexpected account %+v", loaded)
	}
	if got := loaded.SettingDefaultPrivacy(); got != domain.PrivacyUnlisted {
		t.Fatalf("expected stored preference to round-trip, got %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepositoryGetByUsernameNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM accounts\.accounts WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(accountColumns))

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepositoryUpdateSettings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	boost := true
	settings := domain.AccountSettings{BoostModal: &boost}
	payload, err := marshalSettings(settings)
	if err != nil {
		t.Fatalf("marshal settings: %v", err)
	}

	mock.ExpectExec(`UPDATE accounts\.accounts SET settings = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(payload, pgxmock.AnyArg(), "account-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateSettings(context.Background(), "account-1", settings); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
