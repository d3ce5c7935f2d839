package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

var accountColumns = []string{
	"id",
	"username",
	"display_name",
	"locked",
	"settings",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: newStatementBuilder(),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		exec:    tx,
		builder: r.builder,
	}
}

func marshalSettings(settings domain.AccountSettings) ([]byte, error) {
	payload, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal account settings: %w", err)
	}
	return payload, nil
}

func scanAccount(row interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var (
		account  domain.Account
		settings []byte
	)
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.Locked,
		&settings,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &account.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal account settings: %w", err)
		}
	}
	return &account, nil
}

// Create inserts a new account row. Username collisions surface as
// repository.ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	settings, err := marshalSettings(account.Settings)
	if err != nil {
		return err
	}

	stmt, args, err := r.builder.Insert("accounts.accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Username,
			account.DisplayName,
			account.Locked,
			settings,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert account: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *AccountRepository) getBy(ctx context.Context, pred any) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("accounts.accounts").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	account, err := scanAccount(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by handle.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"username": username})
}

// UpdateSettings replaces the stored preferences document.
func (r *AccountRepository) UpdateSettings(ctx context.Context, id string, settings domain.AccountSettings) error {
	payload, err := marshalSettings(settings)
	if err != nil {
		return err
	}

	stmt, args, err := r.builder.Update("accounts.accounts").
		Set("settings", payload).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account settings sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account settings: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetLocked flips the follow-approval lock on the account.
func (r *AccountRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	stmt, args, err := r.builder.Update("accounts.accounts").
		Set("locked", locked).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account lock sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account lock: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
