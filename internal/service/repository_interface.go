package service

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ListFilter struct {
	Type       Type
	ProviderID int
	Status     Status
}

type Repository interface {
	Create(ctx context.Context, svc *Service) (*Service, error)
	GetByID(ctx context.Context, id int) (*Service, error)
	GetTx(ctx context.Context, tx *sqlx.Tx, id int) (*Service, error)
	List(ctx context.Context, filter ListFilter) ([]Service, error)
	Update(ctx context.Context, svc *Service) error
	SetStatus(ctx context.Context, id int, status Status) error

	// ResizeSeats changes total capacity of a pooled service. The new
	// total may not drop below the number of already booked seats;
	// available seats shift by the capacity delta.
	ResizeSeats(ctx context.Context, id, newTotal int) error

	// ReserveSeatsTx decrements available seats, checking and
	// decrementing in one statement so concurrent reservations of the
	// last seat cannot both succeed.
	ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, id, quantity int) error

	// ReleaseSeatsTx increments available seats, capped at total.
	ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, id, quantity int) error
}
