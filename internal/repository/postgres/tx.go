package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// TxManager runs callbacks inside a pgx transaction with repositories bound
// to it.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager constructs a transaction manager over the pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithinTx begins a transaction, executes fn with bound repositories, and
// commits when fn succeeds. Any error rolls back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(users port.UserRepository, accounts port.AccountRepository) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	users := NewUserRepository(tx)
	accounts := NewAccountRepository(tx)

	if err := fn(users, accounts); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ port.TxRunner = (*TxManager)(nil)
