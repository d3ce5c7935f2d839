package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

var userColumns = []string{
	"id",
	"account_id",
	"email",
	"encrypted_password",
	"admin",
	"locale",
	"filtered_languages",
	"confirmed_at",
	"confirmation_sent_at",
	"otp_required_for_login",
	"otp_secret",
	"otp_backup_codes",
	"provider",
	"uid",
	"hide_oauth_link",
	"sign_in_count",
	"current_sign_in_at",
	"last_sign_in_at",
	"current_sign_in_ip",
	"last_sign_in_ip",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: newStatementBuilder(),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		exec:    tx,
		builder: r.builder,
	}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.AccountID,
		&user.Email,
		&user.EncryptedPassword,
		&user.Admin,
		&user.Locale,
		&user.FilteredLanguages,
		&user.ConfirmedAt,
		&user.ConfirmationSentAt,
		&user.OTPRequiredForLogin,
		&user.OTPSecret,
		&user.OTPBackupCodes,
		&user.Provider,
		&user.UID,
		&user.HideOAuthLink,
		&user.SignInCount,
		&user.CurrentSignInAt,
		&user.LastSignInAt,
		&user.CurrentSignInIP,
		&user.LastSignInIP,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row. Unique collisions on email or the
// (provider, uid) pair surface as repository.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	filtered := user.FilteredLanguages
	if filtered == nil {
		filtered = []string{}
	}
	backupCodes := user.OTPBackupCodes
	if backupCodes == nil {
		backupCodes = []string{}
	}

	stmt, args, err := r.builder.Insert("accounts.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.AccountID,
			user.Email,
			user.EncryptedPassword,
			user.Admin,
			nullableString(user.Locale),
			filtered,
			nullableTime(user.ConfirmedAt),
			nullableTime(user.ConfirmationSentAt),
			user.OTPRequiredForLogin,
			nullableString(user.OTPSecret),
			backupCodes,
			nullableString(user.Provider),
			nullableString(user.UID),
			user.HideOAuthLink,
			user.SignInCount,
			nullableTime(user.CurrentSignInAt),
			nullableTime(user.LastSignInAt),
			nullableString(user.CurrentSignInIP),
			nullableString(user.LastSignInIP),
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) getBy(ctx context.Context, pred any) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("accounts.users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByOAuth retrieves a user by linked external identity.
func (r *UserRepository) GetByOAuth(ctx context.Context, provider, uid string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"provider": provider, "uid": uid})
}

// Confirm stamps the confirmation timestamp for the user.
func (r *UserRepository) Confirm(ctx context.Context, id string, confirmedAt time.Time) error {
	stmt, args, err := r.builder.Update("accounts.users").
		Set("confirmed_at", confirmedAt).
		Set("updated_at", confirmedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build confirm user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password digest.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, encryptedPassword string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("accounts.users").
		Set("encrypted_password", encryptedPassword).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateSignIn persists the trackable sign-in columns.
func (r *UserRepository) UpdateSignIn(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Update("accounts.users").
		Set("sign_in_count", user.SignInCount).
		Set("current_sign_in_at", nullableTime(user.CurrentSignInAt)).
		Set("last_sign_in_at", nullableTime(user.LastSignInAt)).
		Set("current_sign_in_ip", nullableString(user.CurrentSignInIP)).
		Set("last_sign_in_ip", nullableString(user.LastSignInIP)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update sign-in sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update sign-in: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateTwoFactor persists the OTP requirement flag, secret, and backup code digests.
func (r *UserRepository) UpdateTwoFactor(ctx context.Context, user domain.User) error {
	backupCodes := user.OTPBackupCodes
	if backupCodes == nil {
		backupCodes = []string{}
	}

	stmt, args, err := r.builder.Update("accounts.users").
		Set("otp_required_for_login", user.OTPRequiredForLogin).
		Set("otp_secret", nullableString(user.OTPSecret)).
		Set("otp_backup_codes", backupCodes).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update two-factor sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update two-factor: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateBackupCodes replaces the stored backup code digests.
func (r *UserRepository) UpdateBackupCodes(ctx context.Context, id string, digests []string) error {
	if digests == nil {
		digests = []string{}
	}

	stmt, args, err := r.builder.Update("accounts.users").
		Set("otp_backup_codes", digests).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update backup codes sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update backup codes: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePreferences persists locale, filtered languages, and the
// hide-OAuth-link flag. Filtered languages are stored as provided; callers
// sanitize first.
func (r *UserRepository) UpdatePreferences(ctx context.Context, user domain.User) error {
	filtered := user.FilteredLanguages
	if filtered == nil {
		filtered = []string{}
	}

	stmt, args, err := r.builder.Update("accounts.users").
		Set("locale", nullableString(user.Locale)).
		Set("filtered_languages", filtered).
		Set("hide_oauth_link", user.HideOAuthLink).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update preferences sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// applyUserFilter compiles the named scopes and filter fields onto a select.
// Ordering scopes are handled by the caller.
func applyUserFilter(query squirrel.SelectBuilder, filter port.UserFilter, now time.Time) squirrel.SelectBuilder {
	for _, scope := range filter.Scopes {
		switch scope {
		case port.ScopeAdmins:
			query = query.Where(squirrel.Eq{"admin": true})
		case port.ScopeConfirmed:
			query = query.Where(squirrel.NotEq{"confirmed_at": nil})
		case port.ScopeInactive:
			query = query.Where(squirrel.Lt{"current_sign_in_at": now.Add(-domain.InactivityThreshold)})
		}
	}

	if filter.EmailPrefix != "" {
		query = query.Where(squirrel.Like{"email": escapeLikePattern(filter.EmailPrefix) + "%"})
	}

	if filter.SignInIP != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"current_sign_in_ip": filter.SignInIP},
			squirrel.Eq{"last_sign_in_ip": filter.SignInIP},
		})
	}

	return query
}

func hasScope(scopes []port.UserScope, target port.UserScope) bool {
	for _, scope := range scopes {
		if scope == target {
			return true
		}
	}
	return false
}

// List returns users matching the filter scopes with pagination.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	query := r.builder.Select(userColumns...).From("accounts.users")
	query = applyUserFilter(query, filter, time.Now().UTC())

	if hasScope(filter.Scopes, port.ScopeRecent) {
		query = query.OrderBy("created_at DESC")
	} else {
		query = query.OrderBy("created_at ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Count returns the total number of users matching the filter.
func (r *UserRepository) Count(ctx context.Context, filter port.UserFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").From("accounts.users")
	query = applyUserFilter(query, filter, time.Now().UTC())

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan users count: %w", err)
	}

	return int(count), nil
}

var _ port.UserRepository = (*UserRepository)(nil)
