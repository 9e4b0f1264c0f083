package subscription

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ActiveExistsTx(ctx context.Context, tx *sqlx.Tx, userID, serviceID int) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND service_id = $2
			  AND status = 'ACTIVE'
			  AND end_date > NOW()
		)`,
		userID, serviceID,
	)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, userID, serviceID, bookingID int, plan Plan, amountCents int64) (*Subscription, error) {
	start := time.Now()
	end := start.Add(plan.Duration())

	sub := &Subscription{}
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO subscriptions (user_id, service_id, booking_id, plan, status, amount_cents, start_date, end_date)
		 VALUES ($1, $2, $3, $4, 'ACTIVE', $5, $6, $7)
		 RETURNING id, user_id, service_id, booking_id, plan, status, amount_cents, start_date, end_date, created_at, updated_at`,
		userID, serviceID, bookingID, plan, amountCents, start, end,
	).StructScan(sub)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *repository) CancelByBookingTx(ctx context.Context, tx *sqlx.Tx, bookingID int) error {
	// Idempotent: re-cancelling an already released slot is a no-op.
	_, err := tx.ExecContext(ctx,
		`UPDATE subscriptions
		 SET status = 'CANCELLED', updated_at = NOW()
		 WHERE booking_id = $1 AND status = 'ACTIVE'`,
		bookingID,
	)
	return err
}

func (r *repository) ListByUser(ctx context.Context, userID int, activeOnly bool) ([]Subscription, error) {
	query := `
		SELECT id, user_id, service_id, booking_id, plan, status, amount_cents, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`
	if activeOnly {
		query += ` AND status = 'ACTIVE' AND end_date > NOW()`
	}
	query += ` ORDER BY created_at DESC`

	subs := []Subscription{}
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, err
	}

	return subs, nil
}
