package subscription

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// ActiveExistsTx reports whether the user already holds an active,
	// unexpired subscription slot on the service.
	ActiveExistsTx(ctx context.Context, tx *sqlx.Tx, userID, serviceID int) (bool, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, userID, serviceID, bookingID int, plan Plan, amountCents int64) (*Subscription, error)
	CancelByBookingTx(ctx context.Context, tx *sqlx.Tx, bookingID int) error
	ListByUser(ctx context.Context, userID int, activeOnly bool) ([]Subscription, error)
}
