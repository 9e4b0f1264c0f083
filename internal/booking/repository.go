package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrInvalidStateTransition = errors.New("invalid booking state transition")
)

const bookingColumns = `
	id, service_id, consumer_id, status, amount_cents, quantity, plan, notes,
	transaction_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error) {
	created := &Booking{}
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO bookings (service_id, consumer_id, status, amount_cents, quantity, plan, notes)
		 VALUES ($1, $2, 'PENDING', $3, $4, $5, $6)
		 RETURNING`+bookingColumns,
		b.ServiceID, b.ConsumerID, b.AmountCents, b.Quantity, b.Plan, b.Notes,
	).StructScan(created)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	b := &Booking{}
	err := r.db.GetContext(ctx, b,
		`SELECT`+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

func (r *repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Booking, error) {
	b := &Booking{}
	err := tx.QueryRowxContext(ctx,
		`SELECT`+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id,
	).StructScan(b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

func (r *repository) ConfirmTx(ctx context.Context, tx *sqlx.Tx, id, transactionID int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'CONFIRMED', transaction_id = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'PENDING'`,
		id, transactionID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidStateTransition
	}

	return nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int, from []Status, to Status) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = ANY($3)`,
		id, to, pq.Array(statuses),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidStateTransition
	}

	return nil
}

func (r *repository) SetNotesTx(ctx context.Context, tx *sqlx.Tx, id int, notes string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET notes = $2, updated_at = NOW() WHERE id = $1`,
		id, notes,
	)
	return err
}

func (r *repository) ListByConsumer(ctx context.Context, consumerID int, status Status) ([]Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE consumer_id = $1`
	args := []interface{}{consumerID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int, status Status) ([]Booking, error) {
	query := `
		SELECT b.id, b.service_id, b.consumer_id, b.status, b.amount_cents, b.quantity,
		       b.plan, b.notes, b.transaction_id, b.created_at, b.updated_at
		FROM bookings b
		JOIN services s ON b.service_id = s.id
		WHERE s.provider_id = $1`
	args := []interface{}{providerID}

	if status != "" {
		query += ` AND b.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return bookings, nil
}
