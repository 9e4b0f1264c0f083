package booking

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

// CommissionCents is the platform's cut of a payment, rounded half-up
// to the cent. bps are basis points: 1000 = 10%.
func CommissionCents(amountCents, bps int64) int64 {
	return (amountCents*bps + 5000) / 10000
}

// Processor executes the three-way transfer for one booking: consumer
// debit, provider credit, platform commission credit. All three ledger
// entries, the booking confirmation and the wallet balance moves commit
// together or not at all.
type Processor struct {
	db             *sqlx.DB
	bookings       Repository
	services       service.Repository
	wallets        wallet.Repository
	platformUserID int
	commissionBps  int64
}

func NewProcessor(db *sqlx.DB, bookings Repository, services service.Repository, wallets wallet.Repository, platformUserID int, commissionBps int64) *Processor {
	return &Processor{
		db:             db,
		bookings:       bookings,
		services:       services,
		wallets:        wallets,
		platformUserID: platformUserID,
		commissionBps:  commissionBps,
	}
}

func (p *Processor) Process(ctx context.Context, bookingID int) (*Booking, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := p.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidStateTransition
	}

	svc, err := p.services.GetTx(ctx, tx, b.ServiceID)
	if err != nil {
		return nil, err
	}

	commission := CommissionCents(b.AmountCents, p.commissionBps)
	providerAmount := b.AmountCents - commission

	debit, err := p.wallets.DebitTx(ctx, tx, b.ConsumerID, b.AmountCents, wallet.KindPayment, b.ID,
		fmt.Sprintf("Payment for %s", svc.Name))
	if err != nil {
		// Insufficient funds rolls everything back: the booking stays
		// PENDING and no ledger entry survives.
		metrics.RecordPayment("failed")
		return nil, err
	}

	if providerAmount > 0 {
		if _, err := p.wallets.CreditTx(ctx, tx, svc.ProviderID, providerAmount, wallet.KindPayment, b.ID,
			fmt.Sprintf("Payment received for %s", svc.Name)); err != nil {
			return nil, err
		}
	}

	if commission > 0 {
		if _, err := p.wallets.CreditTx(ctx, tx, p.platformUserID, commission, wallet.KindCommission, b.ID,
			fmt.Sprintf("Commission for booking #%d", b.ID)); err != nil {
			return nil, err
		}
	}

	if err := p.bookings.ConfirmTx(ctx, tx, b.ID, debit.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordPayment("confirmed")
	metrics.RecordCommission(commission)
	metrics.RecordBooking(string(StatusConfirmed), string(svc.Type))
	logger.Infof("Booking %d confirmed: consumer %d paid %d cents (provider %d, commission %d)",
		b.ID, b.ConsumerID, b.AmountCents, providerAmount, commission)

	b.Status = StatusConfirmed
	b.TransactionID = &debit.ID
	return b, nil
}
