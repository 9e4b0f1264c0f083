package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository is the wallet ledger. Deposit, Withdraw and Adjust each run
// in their own database transaction. CreditTx and DebitTx are the
// tx-scoped primitives the booking engine composes into multi-wallet
// atomic units; referenceID 0 means the entry is not tied to a booking.
type Repository interface {
	CreateWallet(ctx context.Context, ownerID int) (*Wallet, error)
	GetByOwner(ctx context.Context, ownerID int) (*Wallet, error)
	Transactions(ctx context.Context, ownerID int, limit, offset int) ([]Transaction, error)

	Deposit(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error)
	Withdraw(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error)
	Adjust(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error)

	CreditTx(ctx context.Context, tx *sqlx.Tx, ownerID int, amountCents int64, kind Kind, referenceID int, description string) (*Transaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, ownerID int, amountCents int64, kind Kind, referenceID int, description string) (*Transaction, error)
}
