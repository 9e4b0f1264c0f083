package booking

import (
	"time"

	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking ties one consumer to one service purchase. TransactionID is
// the consumer-side debit ledger entry of the successful payment and
// stays nil until the payment goes through.
type Booking struct {
	ID            int                `db:"id" json:"id"`
	ServiceID     int                `db:"service_id" json:"service_id"`
	ConsumerID    int                `db:"consumer_id" json:"consumer_id"`
	Status        Status             `db:"status" json:"status"`
	AmountCents   int64              `db:"amount_cents" json:"amount_cents"`
	Quantity      int                `db:"quantity" json:"quantity"`
	Plan          *subscription.Plan `db:"plan" json:"plan,omitempty"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	TransactionID *int               `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	ServiceID int               `json:"service_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"gte=0"`
	Plan      subscription.Plan `json:"plan,omitempty"`
	Notes     string            `json:"notes"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason"`
}
