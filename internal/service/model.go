package service

import (
	"errors"
	"time"

	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
)

type Type string

const (
	TypeCarPool    Type = "CAR_POOL"
	TypeBikePool   Type = "BIKE_POOL"
	TypeGymFitness Type = "GYM_FITNESS"
	TypeHousehold  Type = "HOUSEHOLD"
	TypeMechanical Type = "MECHANICAL"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCarPool, TypeBikePool, TypeGymFitness, TypeHousehold, TypeMechanical:
		return true
	}
	return false
}

// Pooled reports whether the service carries finite seat capacity.
func (t Type) Pooled() bool {
	return t == TypeCarPool || t == TypeBikePool
}

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusUnavailable Status = "UNAVAILABLE"
	StatusDeleted     Status = "DELETED"
)

var ErrUnknownPlan = errors.New("unknown subscription plan")

// Service is the catalog record: shared fields plus exactly one variant
// payload selected by Type. Capacity fields inside the payloads are
// owned by the inventory layer and never written through Update.
type Service struct {
	ID          int       `json:"id"`
	ProviderID  int       `json:"provider_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        Type      `json:"type"`
	PriceCents  int64     `json:"price_cents"`
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Ride  *RideDetails  `json:"ride,omitempty"`
	Gym   *GymDetails   `json:"gym,omitempty"`
	Visit *VisitDetails `json:"visit,omitempty"`
}

// RideDetails is the CAR_POOL / BIKE_POOL payload.
type RideDetails struct {
	VehicleType    string    `json:"vehicle_type"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	VehicleModel   string    `json:"vehicle_model,omitempty"`
	VehicleNumber  string    `json:"vehicle_number,omitempty"`
}

// GymDetails is the GYM_FITNESS payload. Plan prices replace the base
// price; base PriceCents stays zero for gym services.
type GymDetails struct {
	GymName             string `json:"gym_name"`
	MonthlyPriceCents   int64  `json:"monthly_price_cents"`
	QuarterlyPriceCents int64  `json:"quarterly_price_cents"`
	AnnualPriceCents    int64  `json:"annual_price_cents"`
	TrainersAvailable   bool   `json:"trainers_available"`
	DieticianAvailable  bool   `json:"dietician_available"`
}

func (g *GymDetails) PlanPriceCents(plan subscription.Plan) (int64, error) {
	switch plan {
	case subscription.PlanMonthly:
		return g.MonthlyPriceCents, nil
	case subscription.PlanQuarterly:
		return g.QuarterlyPriceCents, nil
	case subscription.PlanAnnual:
		return g.AnnualPriceCents, nil
	}
	return 0, ErrUnknownPlan
}

// VisitDetails is the HOUSEHOLD / MECHANICAL payload.
type VisitDetails struct {
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CreateServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        Type   `json:"type" binding:"required"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	Location    string `json:"location"`

	Ride  *RideSpec  `json:"ride,omitempty"`
	Gym   *GymSpec   `json:"gym,omitempty"`
	Visit *VisitSpec `json:"visit,omitempty"`
}

type RideSpec struct {
	VehicleType   string    `json:"vehicle_type" binding:"required"`
	Source        string    `json:"source" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	TotalSeats    int       `json:"total_seats" binding:"required,min=1"`
	VehicleModel  string    `json:"vehicle_model"`
	VehicleNumber string    `json:"vehicle_number"`
}

type GymSpec struct {
	GymName             string `json:"gym_name" binding:"required"`
	MonthlyPriceCents   int64  `json:"monthly_price_cents" binding:"required,gt=0"`
	QuarterlyPriceCents int64  `json:"quarterly_price_cents" binding:"required,gt=0"`
	AnnualPriceCents    int64  `json:"annual_price_cents" binding:"required,gt=0"`
	TrainersAvailable   bool   `json:"trainers_available"`
	DieticianAvailable  bool   `json:"dietician_available"`
}

type VisitSpec struct {
	Category        string `json:"category" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0"`
}

// UpdateServiceRequest lists every mutable field explicitly; absent
// fields are left untouched. Seat counters are not updatable here —
// TotalSeats goes through the guarded resize.
type UpdateServiceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Location    *string `json:"location,omitempty"`

	Ride  *RideUpdate  `json:"ride,omitempty"`
	Gym   *GymUpdate   `json:"gym,omitempty"`
	Visit *VisitUpdate `json:"visit,omitempty"`
}

type RideUpdate struct {
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	TotalSeats    *int       `json:"total_seats,omitempty"`
	VehicleModel  *string    `json:"vehicle_model,omitempty"`
	VehicleNumber *string    `json:"vehicle_number,omitempty"`
}

type GymUpdate struct {
	GymName             *string `json:"gym_name,omitempty"`
	MonthlyPriceCents   *int64  `json:"monthly_price_cents,omitempty"`
	QuarterlyPriceCents *int64  `json:"quarterly_price_cents,omitempty"`
	AnnualPriceCents    *int64  `json:"annual_price_cents,omitempty"`
	TrainersAvailable   *bool   `json:"trainers_available,omitempty"`
	DieticianAvailable  *bool   `json:"dietician_available,omitempty"`
}

type VisitUpdate struct {
	Category        *string `json:"category,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
}

type SetStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
