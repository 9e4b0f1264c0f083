package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet already exists")

	// ErrLedgerInconsistent marks a reversal that cannot be satisfied,
	// i.e. a wallet missing money a prior payment must have put there.
	// It is a consistency fault, not a business error.
	ErrLedgerInconsistent = errors.New("ledger inconsistency detected")
)

type ledger struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &ledger{db: db}
}

func (l *ledger) CreateWallet(ctx context.Context, ownerID int) (*Wallet, error) {
	w := &Wallet{}
	err := l.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (owner_id)
		 VALUES ($1)
		 ON CONFLICT (owner_id) DO NOTHING
		 RETURNING id, owner_id, balance_cents, created_at, updated_at`,
		ownerID,
	).StructScan(w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletExists
		}
		return nil, err
	}

	return w, nil
}

func (l *ledger) GetByOwner(ctx context.Context, ownerID int) (*Wallet, error) {
	w := &Wallet{}
	err := l.db.GetContext(ctx, w,
		`SELECT id, owner_id, balance_cents, created_at, updated_at
		 FROM wallets
		 WHERE owner_id = $1`,
		ownerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	return w, nil
}

func (l *ledger) Transactions(ctx context.Context, ownerID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := l.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE owner_id = $1`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	var txs []Transaction
	err = l.db.SelectContext(ctx, &txs,
		`SELECT id, wallet_id, amount_cents, kind, description, reference_id, balance_after, created_at
		 FROM transactions
		 WHERE wallet_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		walletID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (l *ledger) Deposit(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, ownerID, amountCents, KindDeposit, 0, description)
}

func (l *ledger) Withdraw(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, ownerID, -amountCents, KindWithdrawal, 0, description)
}

func (l *ledger) Adjust(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error) {
	if amountCents == 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, ownerID, amountCents, KindAdminAdjustment, 0, description)
}

// apply runs a single ledger entry in its own transaction.
func (l *ledger) apply(ctx context.Context, ownerID int, delta int64, kind Kind, referenceID int, description string) (*Transaction, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry, err := l.applyTx(ctx, tx, ownerID, delta, kind, referenceID, description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordWalletOperation(string(kind))
	return entry, nil
}

func (l *ledger) CreditTx(ctx context.Context, tx *sqlx.Tx, ownerID int, amountCents int64, kind Kind, referenceID int, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.applyTx(ctx, tx, ownerID, amountCents, kind, referenceID, description)
}

func (l *ledger) DebitTx(ctx context.Context, tx *sqlx.Tx, ownerID int, amountCents int64, kind Kind, referenceID int, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.applyTx(ctx, tx, ownerID, -amountCents, kind, referenceID, description)
}

// applyTx locks the wallet row, checks the non-negative invariant,
// moves the balance and writes the ledger entry. Balance check and
// mutation happen under the same row lock so lost updates cannot occur.
func (l *ledger) applyTx(ctx context.Context, tx *sqlx.Tx, ownerID int, delta int64, kind Kind, referenceID int, description string) (*Transaction, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, owner_id, balance_cents, created_at, updated_at
		 FROM wallets
		 WHERE owner_id = $1
		 FOR UPDATE`,
		ownerID,
	).StructScan(&w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	newBalance := w.BalanceCents + delta
	if newBalance < 0 {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_cents = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	var ref *int
	if referenceID != 0 {
		ref = &referenceID
	}

	entry := &Transaction{
		WalletID:     w.ID,
		AmountCents:  delta,
		Kind:         kind,
		Description:  description,
		ReferenceID:  ref,
		BalanceAfter: newBalance,
	}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO transactions (wallet_id, amount_cents, kind, description, reference_id, balance_after)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		w.ID, delta, kind, description, ref, newBalance,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return entry, nil
}
