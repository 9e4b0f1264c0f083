package inventory

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
)

var (
	ErrActiveSubscriptionExists = errors.New("active subscription already exists for this service")
	ErrPlanRequired             = errors.New("a subscription plan is required for gym services")
)

// Coordinator owns finite, service-specific capacity: seats on pooled
// rides and active-subscription slots on gym services. Reservations are
// taken before payment runs and released only on a terminal
// cancellation or rejection, never on a retryable payment failure.
type Coordinator struct {
	services service.Repository
	subs     subscription.Repository
}

func NewCoordinator(services service.Repository, subs subscription.Repository) *Coordinator {
	return &Coordinator{services: services, subs: subs}
}

// ReserveTx provisionally holds capacity for a booking inside the
// caller's transaction.
func (c *Coordinator) ReserveTx(ctx context.Context, tx *sqlx.Tx, svc *service.Service, consumerID, bookingID, quantity int, plan subscription.Plan, amountCents int64) error {
	switch {
	case svc.Type.Pooled():
		if err := c.services.ReserveSeatsTx(ctx, tx, svc.ID, quantity); err != nil {
			if errors.Is(err, service.ErrInventoryExhausted) {
				metrics.RecordReservation(string(svc.Type), "exhausted")
			}
			return err
		}
	case svc.Type == service.TypeGymFitness:
		if !plan.Valid() {
			return ErrPlanRequired
		}
		exists, err := c.subs.ActiveExistsTx(ctx, tx, consumerID, svc.ID)
		if err != nil {
			return err
		}
		if exists {
			metrics.RecordReservation(string(svc.Type), "conflict")
			return ErrActiveSubscriptionExists
		}
		if _, err := c.subs.CreateTx(ctx, tx, consumerID, svc.ID, bookingID, plan, amountCents); err != nil {
			return err
		}
	default:
		// Household and mechanical visits have no finite capacity.
		return nil
	}

	metrics.RecordReservation(string(svc.Type), "reserved")
	return nil
}

// ReleaseTx returns a booking's hold to the pool inside the caller's
// transaction. Safe to call for capacity-free service types.
func (c *Coordinator) ReleaseTx(ctx context.Context, tx *sqlx.Tx, svc *service.Service, bookingID, quantity int) error {
	switch {
	case svc.Type.Pooled():
		return c.services.ReleaseSeatsTx(ctx, tx, svc.ID, quantity)
	case svc.Type == service.TypeGymFitness:
		return c.subs.CancelByBookingTx(ctx, tx, bookingID)
	}
	return nil
}
