package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/inventory"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

// RefundCoordinator unwinds bookings. Cancelling a CONFIRMED booking
// reverses the payment's three-way transfer in full, including the
// platform commission; cancelling or rejecting a PENDING booking only
// releases the capacity hold, since no money has moved yet.
type RefundCoordinator struct {
	db             *sqlx.DB
	bookings       Repository
	services       service.Repository
	wallets        wallet.Repository
	inventory      *inventory.Coordinator
	platformUserID int
	commissionBps  int64
}

func NewRefundCoordinator(db *sqlx.DB, bookings Repository, services service.Repository, wallets wallet.Repository, inv *inventory.Coordinator, platformUserID int, commissionBps int64) *RefundCoordinator {
	return &RefundCoordinator{
		db:             db,
		bookings:       bookings,
		services:       services,
		wallets:        wallets,
		inventory:      inv,
		platformUserID: platformUserID,
		commissionBps:  commissionBps,
	}
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED. Either the
// consumer or the service's provider may cancel.
func (r *RefundCoordinator) Cancel(ctx context.Context, bookingID, actorID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := r.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	svc, err := r.services.GetTx(ctx, tx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	if actorID != b.ConsumerID && actorID != svc.ProviderID {
		return nil, ErrNotAllowed
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return nil, ErrInvalidStateTransition
	}

	refunded := b.Status == StatusConfirmed
	if refunded {
		if err := r.reverseTransfer(ctx, tx, b, svc); err != nil {
			return nil, err
		}
	}

	if err := r.inventory.ReleaseTx(ctx, tx, svc, b.ID, b.Quantity); err != nil {
		return nil, err
	}

	if err := r.bookings.UpdateStatusTx(ctx, tx, b.ID,
		[]Status{StatusPending, StatusConfirmed}, StatusCancelled); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusCancelled), string(svc.Type))
	if refunded {
		metrics.RecordRefund(CommissionCents(b.AmountCents, r.commissionBps))
		logger.Infof("Booking %d cancelled by user %d, %d cents refunded", b.ID, actorID, b.AmountCents)
	} else {
		logger.Infof("Booking %d cancelled by user %d before payment", b.ID, actorID)
	}

	b.Status = StatusCancelled
	return b, nil
}

// Reject moves a PENDING booking to REJECTED. Only the service's
// provider may reject, and only before payment.
func (r *RefundCoordinator) Reject(ctx context.Context, bookingID, actorID int, reason string) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := r.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	svc, err := r.services.GetTx(ctx, tx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	if actorID != svc.ProviderID {
		return nil, ErrNotAllowed
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidStateTransition
	}

	if err := r.inventory.ReleaseTx(ctx, tx, svc, b.ID, b.Quantity); err != nil {
		return nil, err
	}

	if err := r.bookings.UpdateStatusTx(ctx, tx, b.ID, []Status{StatusPending}, StatusRejected); err != nil {
		return nil, err
	}
	if reason != "" {
		if err := r.bookings.SetNotesTx(ctx, tx, b.ID, reason); err != nil {
			return nil, err
		}
		b.Notes = reason
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusRejected), string(svc.Type))
	logger.Infof("Booking %d rejected by provider %d", b.ID, actorID)

	b.Status = StatusRejected
	return b, nil
}

// reverseTransfer mirrors the original payment: credit the consumer the
// full amount, claw the provider's share and the platform commission
// back. The provider and platform wallets were credited by the payment,
// so a shortfall here means the ledger itself is broken.
func (r *RefundCoordinator) reverseTransfer(ctx context.Context, tx *sqlx.Tx, b *Booking, svc *service.Service) error {
	commission := CommissionCents(b.AmountCents, r.commissionBps)
	providerAmount := b.AmountCents - commission

	if _, err := r.wallets.CreditTx(ctx, tx, b.ConsumerID, b.AmountCents, wallet.KindRefund, b.ID,
		fmt.Sprintf("Refund for %s", svc.Name)); err != nil {
		return err
	}

	if providerAmount > 0 {
		if _, err := r.wallets.DebitTx(ctx, tx, svc.ProviderID, providerAmount, wallet.KindRefund, b.ID,
			fmt.Sprintf("Refund issued for %s", svc.Name)); err != nil {
			if errors.Is(err, wallet.ErrInsufficientFunds) {
				return fmt.Errorf("%w: provider wallet cannot cover refund for booking %d", wallet.ErrLedgerInconsistent, b.ID)
			}
			return err
		}
	}

	if commission > 0 {
		if _, err := r.wallets.DebitTx(ctx, tx, r.platformUserID, commission, wallet.KindCommission, b.ID,
			fmt.Sprintf("Commission reversal for booking #%d", b.ID)); err != nil {
			if errors.Is(err, wallet.ErrInsufficientFunds) {
				return fmt.Errorf("%w: platform wallet cannot cover commission reversal for booking %d", wallet.ErrLedgerInconsistent, b.ID)
			}
			return err
		}
	}

	return nil
}
