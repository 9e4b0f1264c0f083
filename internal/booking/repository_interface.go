package booking

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)

	// GetForUpdateTx locks the booking row so lifecycle decisions and
	// the ledger work they gate happen under one lock.
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Booking, error)

	// ConfirmTx flips PENDING to CONFIRMED and records the consumer
	// debit transaction id in one guarded statement.
	ConfirmTx(ctx context.Context, tx *sqlx.Tx, id, transactionID int) error

	// UpdateStatusTx moves the booking to a new status only when the
	// current status is one of from; anything else is an illegal edge.
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int, from []Status, to Status) error

	SetNotesTx(ctx context.Context, tx *sqlx.Tx, id int, notes string) error

	ListByConsumer(ctx context.Context, consumerID int, status Status) ([]Booking, error)
	ListByProvider(ctx context.Context, providerID int, status Status) ([]Booking, error)
}
