package subscription

import "time"

type Plan string

const (
	PlanMonthly   Plan = "MONTHLY"
	PlanQuarterly Plan = "QUARTERLY"
	PlanAnnual    Plan = "ANNUAL"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanMonthly, PlanQuarterly, PlanAnnual:
		return true
	}
	return false
}

// Duration returns how long a subscription under this plan stays
// active from the moment it is reserved.
func (p Plan) Duration() time.Duration {
	switch p {
	case PlanQuarterly:
		return 90 * 24 * time.Hour
	case PlanAnnual:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Subscription is one active-slot reservation against a gym service.
// BookingID ties it to the booking that paid for it, so cancelling the
// booking releases the slot.
type Subscription struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	ServiceID   int       `db:"service_id" json:"service_id"`
	BookingID   int       `db:"booking_id" json:"booking_id"`
	Plan        Plan      `db:"plan" json:"plan"`
	Status      Status    `db:"status" json:"status"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
