package port

import "context"

// TxRunner executes fn with user and account repositories bound to a single
// database transaction. fn returning an error rolls the transaction back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(users UserRepository, accounts AccountRepository) error) error
}
