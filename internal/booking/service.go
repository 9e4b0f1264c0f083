package booking

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/inventory"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
)

var (
	ErrNotAllowed         = errors.New("not allowed to act on this booking")
	ErrServiceUnavailable = errors.New("service is not available for booking")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// Notifier receives booking lifecycle events. Delivery is best effort
// and must not block or fail the transaction that produced the event.
type Notifier interface {
	BookingConfirmed(b *Booking, svc *service.Service)
	BookingCancelled(b *Booking, svc *service.Service)
	BookingRejected(b *Booking, svc *service.Service)
}

type Service interface {
	CreateBooking(ctx context.Context, consumerID int, req CreateBookingRequest) (*Booking, error)
	ProcessPayment(ctx context.Context, bookingID, consumerID int) (*Booking, error)
	CancelBooking(ctx context.Context, bookingID, actorID int) (*Booking, error)
	RejectBooking(ctx context.Context, bookingID, actorID int, reason string) (*Booking, error)
	CompleteBooking(ctx context.Context, bookingID, actorID int) (*Booking, error)

	GetBooking(ctx context.Context, bookingID, actorID int, isAdmin bool) (*Booking, error)
	ListConsumerBookings(ctx context.Context, consumerID int, status Status) ([]Booking, error)
	ListProviderBookings(ctx context.Context, providerID int, status Status) ([]Booking, error)
}

type bookingService struct {
	db        *sqlx.DB
	bookings  Repository
	services  service.Repository
	inventory *inventory.Coordinator
	payments  *Processor
	refunds   *RefundCoordinator
	notifier  Notifier
}

func NewService(db *sqlx.DB, bookings Repository, services service.Repository, inv *inventory.Coordinator, payments *Processor, refunds *RefundCoordinator, notifier Notifier) Service {
	return &bookingService{
		db:        db,
		bookings:  bookings,
		services:  services,
		inventory: inv,
		payments:  payments,
		refunds:   refunds,
		notifier:  notifier,
	}
}

// CreateBooking records the intent to buy and reserves capacity in the
// same transaction. The booking starts PENDING; money moves only when
// the consumer pays.
func (s *bookingService) CreateBooking(ctx context.Context, consumerID int, req CreateBookingRequest) (*Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	svc, err := s.services.GetTx(ctx, tx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.Status != service.StatusAvailable {
		return nil, ErrServiceUnavailable
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	b := &Booking{
		ServiceID:  svc.ID,
		ConsumerID: consumerID,
		Quantity:   quantity,
		Notes:      req.Notes,
	}

	switch {
	case svc.Type == service.TypeGymFitness:
		if !req.Plan.Valid() {
			return nil, inventory.ErrPlanRequired
		}
		price, err := svc.Gym.PlanPriceCents(req.Plan)
		if err != nil {
			return nil, err
		}
		plan := req.Plan
		b.Plan = &plan
		b.Quantity = 1
		b.AmountCents = price
	case svc.Type.Pooled():
		b.AmountCents = svc.PriceCents * int64(quantity)
	default:
		b.Quantity = 1
		b.AmountCents = svc.PriceCents
	}

	created, err := s.bookings.CreateTx(ctx, tx, b)
	if err != nil {
		return nil, err
	}

	plan := subscription.Plan("")
	if created.Plan != nil {
		plan = *created.Plan
	}
	if err := s.inventory.ReserveTx(ctx, tx, svc, consumerID, created.ID, created.Quantity, plan, created.AmountCents); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusPending), string(svc.Type))
	logger.Infof("Booking %d created: user %d, service %d, %d cents", created.ID, consumerID, svc.ID, created.AmountCents)

	return created, nil
}

// ProcessPayment charges the consumer's wallet for their own PENDING
// booking and confirms it.
func (s *bookingService) ProcessPayment(ctx context.Context, bookingID, consumerID int) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ConsumerID != consumerID {
		return nil, ErrNotAllowed
	}

	confirmed, err := s.payments.Process(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, confirmed, func(b *Booking, svc *service.Service) { s.notifier.BookingConfirmed(b, svc) })
	return confirmed, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, actorID int) (*Booking, error) {
	b, err := s.refunds.Cancel(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b, func(b *Booking, svc *service.Service) { s.notifier.BookingCancelled(b, svc) })
	return b, nil
}

func (s *bookingService) RejectBooking(ctx context.Context, bookingID, actorID int, reason string) (*Booking, error) {
	b, err := s.refunds.Reject(ctx, bookingID, actorID, reason)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b, func(b *Booking, svc *service.Service) { s.notifier.BookingRejected(b, svc) })
	return b, nil
}

// CompleteBooking marks a CONFIRMED booking done. Only the provider
// completes; completion never moves money.
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID, actorID int) (*Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	svc, err := s.services.GetTx(ctx, tx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	if actorID != svc.ProviderID {
		return nil, ErrNotAllowed
	}

	if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, []Status{StatusConfirmed}, StatusCompleted); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(StatusCompleted), string(svc.Type))
	b.Status = StatusCompleted
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID, actorID int, isAdmin bool) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if isAdmin || b.ConsumerID == actorID {
		return b, nil
	}

	svc, err := s.services.GetByID(ctx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != actorID {
		return nil, ErrNotAllowed
	}

	return b, nil
}

func (s *bookingService) ListConsumerBookings(ctx context.Context, consumerID int, status Status) ([]Booking, error) {
	return s.bookings.ListByConsumer(ctx, consumerID, status)
}

func (s *bookingService) ListProviderBookings(ctx context.Context, providerID int, status Status) ([]Booking, error) {
	return s.bookings.ListByProvider(ctx, providerID, status)
}

func (s *bookingService) notify(ctx context.Context, b *Booking, emit func(*Booking, *service.Service)) {
	if s.notifier == nil {
		return
	}
	svc, err := s.services.GetByID(ctx, b.ServiceID)
	if err != nil {
		logger.Warnf("Skipping notification for booking %d: %v", b.ID, err)
		return
	}
	emit(b, svc)
}
