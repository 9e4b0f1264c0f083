package wallet

import "time"

// Kind classifies a ledger entry. Entries are immutable once written;
// corrections are compensating entries, never edits.
type Kind string

const (
	KindDeposit         Kind = "DEPOSIT"
	KindWithdrawal      Kind = "WITHDRAWAL"
	KindPayment         Kind = "PAYMENT"
	KindRefund          Kind = "REFUND"
	KindCommission      Kind = "COMMISSION"
	KindAdminAdjustment Kind = "ADMIN_ADJUSTMENT"
)

type Wallet struct {
	ID           int       `db:"id" json:"id"`
	OwnerID      int       `db:"owner_id" json:"owner_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one balance-affecting ledger entry. AmountCents is
// signed: credits positive, debits negative. ReferenceID links the
// entry to the booking that caused it, when there is one.
type Transaction struct {
	ID           int       `db:"id" json:"id"`
	WalletID     int       `db:"wallet_id" json:"wallet_id"`
	AmountCents  int64     `db:"amount_cents" json:"amount_cents"`
	Kind         Kind      `db:"kind" json:"kind"`
	Description  string    `db:"description" json:"description"`
	ReferenceID  *int      `db:"reference_id" json:"reference_id,omitempty"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type TopUpRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

type WithdrawRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

type AdjustRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Description string `json:"description"`
}
