package service

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotOwner          = errors.New("only the provider may modify this service")
	ErrInvalidService    = errors.New("invalid service definition")
	ErrMissingVariant    = errors.New("service payload does not match service type")
	ErrDepartureInPast   = errors.New("departure time must be in the future")
	ErrInvalidStatus     = errors.New("invalid service status")
	ErrInvalidPlanPrices = errors.New("all subscription plan prices must be positive")
)

// Catalog is the provider-facing service management layer.
type Catalog interface {
	Create(ctx context.Context, providerID int, req CreateServiceRequest) (*Service, error)
	Get(ctx context.Context, id int) (*Service, error)
	List(ctx context.Context, filter ListFilter) ([]Service, error)
	Update(ctx context.Context, providerID, id int, req UpdateServiceRequest) (*Service, error)
	SetStatus(ctx context.Context, providerID, id int, status Status) (*Service, error)
	Delete(ctx context.Context, providerID, id int) error
}

type catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) Catalog {
	return &catalog{repo: repo}
}

func (c *catalog) Create(ctx context.Context, providerID int, req CreateServiceRequest) (*Service, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidService
	}

	svc := &Service{
		ProviderID:  providerID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		PriceCents:  req.PriceCents,
		Location:    req.Location,
	}

	switch {
	case req.Type.Pooled():
		if req.Ride == nil {
			return nil, ErrMissingVariant
		}
		if req.Ride.DepartureTime.Before(time.Now()) {
			return nil, ErrDepartureInPast
		}
		if req.PriceCents <= 0 {
			return nil, ErrInvalidService
		}
		svc.Ride = &RideDetails{
			VehicleType:   req.Ride.VehicleType,
			Source:        req.Ride.Source,
			Destination:   req.Ride.Destination,
			DepartureTime: req.Ride.DepartureTime,
			TotalSeats:    req.Ride.TotalSeats,
			VehicleModel:  req.Ride.VehicleModel,
			VehicleNumber: req.Ride.VehicleNumber,
		}
	case req.Type == TypeGymFitness:
		if req.Gym == nil {
			return nil, ErrMissingVariant
		}
		if req.Gym.MonthlyPriceCents <= 0 || req.Gym.QuarterlyPriceCents <= 0 || req.Gym.AnnualPriceCents <= 0 {
			return nil, ErrInvalidPlanPrices
		}
		// Gym pricing comes from plans, not the base price.
		svc.PriceCents = 0
		svc.Gym = &GymDetails{
			GymName:             req.Gym.GymName,
			MonthlyPriceCents:   req.Gym.MonthlyPriceCents,
			QuarterlyPriceCents: req.Gym.QuarterlyPriceCents,
			AnnualPriceCents:    req.Gym.AnnualPriceCents,
			TrainersAvailable:   req.Gym.TrainersAvailable,
			DieticianAvailable:  req.Gym.DieticianAvailable,
		}
	default:
		if req.Visit == nil {
			return nil, ErrMissingVariant
		}
		if req.PriceCents <= 0 {
			return nil, ErrInvalidService
		}
		svc.Visit = &VisitDetails{
			Category:        req.Visit.Category,
			DurationMinutes: req.Visit.DurationMinutes,
		}
	}

	return c.repo.Create(ctx, svc)
}

func (c *catalog) Get(ctx context.Context, id int) (*Service, error) {
	return c.repo.GetByID(ctx, id)
}

func (c *catalog) List(ctx context.Context, filter ListFilter) ([]Service, error) {
	return c.repo.List(ctx, filter)
}

func (c *catalog) Update(ctx context.Context, providerID, id int, req UpdateServiceRequest) (*Service, error) {
	svc, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != providerID {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return nil, ErrInvalidService
		}
		svc.PriceCents = *req.PriceCents
	}
	if req.Location != nil {
		svc.Location = *req.Location
	}

	var resizeTo *int

	switch {
	case svc.Ride != nil && req.Ride != nil:
		if req.Ride.DepartureTime != nil {
			if req.Ride.DepartureTime.Before(time.Now()) {
				return nil, ErrDepartureInPast
			}
			svc.Ride.DepartureTime = *req.Ride.DepartureTime
		}
		if req.Ride.VehicleModel != nil {
			svc.Ride.VehicleModel = *req.Ride.VehicleModel
		}
		if req.Ride.VehicleNumber != nil {
			svc.Ride.VehicleNumber = *req.Ride.VehicleNumber
		}
		if req.Ride.TotalSeats != nil {
			if *req.Ride.TotalSeats <= 0 {
				return nil, ErrInvalidService
			}
			resizeTo = req.Ride.TotalSeats
		}
	case svc.Gym != nil && req.Gym != nil:
		if req.Gym.GymName != nil {
			svc.Gym.GymName = *req.Gym.GymName
		}
		if req.Gym.MonthlyPriceCents != nil {
			svc.Gym.MonthlyPriceCents = *req.Gym.MonthlyPriceCents
		}
		if req.Gym.QuarterlyPriceCents != nil {
			svc.Gym.QuarterlyPriceCents = *req.Gym.QuarterlyPriceCents
		}
		if req.Gym.AnnualPriceCents != nil {
			svc.Gym.AnnualPriceCents = *req.Gym.AnnualPriceCents
		}
		if req.Gym.TrainersAvailable != nil {
			svc.Gym.TrainersAvailable = *req.Gym.TrainersAvailable
		}
		if req.Gym.DieticianAvailable != nil {
			svc.Gym.DieticianAvailable = *req.Gym.DieticianAvailable
		}
		if svc.Gym.MonthlyPriceCents <= 0 || svc.Gym.QuarterlyPriceCents <= 0 || svc.Gym.AnnualPriceCents <= 0 {
			return nil, ErrInvalidPlanPrices
		}
	case svc.Visit != nil && req.Visit != nil:
		if req.Visit.Category != nil {
			svc.Visit.Category = *req.Visit.Category
		}
		if req.Visit.DurationMinutes != nil {
			svc.Visit.DurationMinutes = *req.Visit.DurationMinutes
		}
	}

	if err := c.repo.Update(ctx, svc); err != nil {
		return nil, err
	}

	if resizeTo != nil {
		if err := c.repo.ResizeSeats(ctx, id, *resizeTo); err != nil {
			return nil, err
		}
	}

	return c.repo.GetByID(ctx, id)
}

func (c *catalog) SetStatus(ctx context.Context, providerID, id int, status Status) (*Service, error) {
	if status != StatusAvailable && status != StatusUnavailable {
		return nil, ErrInvalidStatus
	}

	svc, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != providerID {
		return nil, ErrNotOwner
	}

	if err := c.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return c.repo.GetByID(ctx, id)
}

func (c *catalog) Delete(ctx context.Context, providerID, id int) error {
	svc, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if svc.ProviderID != providerID {
		return ErrNotOwner
	}

	return c.repo.SetStatus(ctx, id, StatusDeleted)
}
