package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrInventoryExhausted = errors.New("not enough seats available")
	ErrSeatsBelowBooked   = errors.New("cannot reduce total seats below booked seats")
)

const serviceColumns = `
	id, provider_id, name, description, service_type, price_cents, status, location,
	created_at, updated_at,
	vehicle_type, source, destination, departure_time, total_seats, available_seats,
	vehicle_model, vehicle_number,
	gym_name, monthly_price_cents, quarterly_price_cents, annual_price_cents,
	trainers_available, dietician_available,
	category, duration_minutes`

// serviceRow is the flat relational shape; variant columns are NULL
// for every type but the row's own.
type serviceRow struct {
	ID          int          `db:"id"`
	ProviderID  int          `db:"provider_id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	ServiceType Type         `db:"service_type"`
	PriceCents  int64        `db:"price_cents"`
	Status      Status       `db:"status"`
	Location    string       `db:"location"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`

	VehicleType    sql.NullString `db:"vehicle_type"`
	Source         sql.NullString `db:"source"`
	Destination    sql.NullString `db:"destination"`
	DepartureTime  sql.NullTime   `db:"departure_time"`
	TotalSeats     sql.NullInt64  `db:"total_seats"`
	AvailableSeats sql.NullInt64  `db:"available_seats"`
	VehicleModel   sql.NullString `db:"vehicle_model"`
	VehicleNumber  sql.NullString `db:"vehicle_number"`

	GymName             sql.NullString `db:"gym_name"`
	MonthlyPriceCents   sql.NullInt64  `db:"monthly_price_cents"`
	QuarterlyPriceCents sql.NullInt64  `db:"quarterly_price_cents"`
	AnnualPriceCents    sql.NullInt64  `db:"annual_price_cents"`
	TrainersAvailable   sql.NullBool   `db:"trainers_available"`
	DieticianAvailable  sql.NullBool   `db:"dietician_available"`

	Category        sql.NullString `db:"category"`
	DurationMinutes sql.NullInt64  `db:"duration_minutes"`
}

func (r *serviceRow) toService() *Service {
	svc := &Service{
		ID:          r.ID,
		ProviderID:  r.ProviderID,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.ServiceType,
		PriceCents:  r.PriceCents,
		Status:      r.Status,
		Location:    r.Location,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}

	switch {
	case r.ServiceType.Pooled():
		svc.Ride = &RideDetails{
			VehicleType:    r.VehicleType.String,
			Source:         r.Source.String,
			Destination:    r.Destination.String,
			DepartureTime:  r.DepartureTime.Time,
			TotalSeats:     int(r.TotalSeats.Int64),
			AvailableSeats: int(r.AvailableSeats.Int64),
			VehicleModel:   r.VehicleModel.String,
			VehicleNumber:  r.VehicleNumber.String,
		}
	case r.ServiceType == TypeGymFitness:
		svc.Gym = &GymDetails{
			GymName:             r.GymName.String,
			MonthlyPriceCents:   r.MonthlyPriceCents.Int64,
			QuarterlyPriceCents: r.QuarterlyPriceCents.Int64,
			AnnualPriceCents:    r.AnnualPriceCents.Int64,
			TrainersAvailable:   r.TrainersAvailable.Bool,
			DieticianAvailable:  r.DieticianAvailable.Bool,
		}
	default:
		svc.Visit = &VisitDetails{
			Category:        r.Category.String,
			DurationMinutes: int(r.DurationMinutes.Int64),
		}
	}

	return svc
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, svc *Service) (*Service, error) {
	var (
		vehicleType, source, destination, vehicleModel, vehicleNumber *string
		departureTime                                                 interface{}
		totalSeats, availableSeats                                    *int
		gymName, category                                             *string
		monthly, quarterly, annual                                    *int64
		trainers, dietician                                           *bool
		durationMinutes                                               *int
	)

	switch {
	case svc.Ride != nil:
		vehicleType = &svc.Ride.VehicleType
		source = &svc.Ride.Source
		destination = &svc.Ride.Destination
		departureTime = svc.Ride.DepartureTime
		totalSeats = &svc.Ride.TotalSeats
		// All seats start available.
		availableSeats = &svc.Ride.TotalSeats
		vehicleModel = &svc.Ride.VehicleModel
		vehicleNumber = &svc.Ride.VehicleNumber
	case svc.Gym != nil:
		gymName = &svc.Gym.GymName
		monthly = &svc.Gym.MonthlyPriceCents
		quarterly = &svc.Gym.QuarterlyPriceCents
		annual = &svc.Gym.AnnualPriceCents
		trainers = &svc.Gym.TrainersAvailable
		dietician = &svc.Gym.DieticianAvailable
	case svc.Visit != nil:
		category = &svc.Visit.Category
		durationMinutes = &svc.Visit.DurationMinutes
	}

	row := serviceRow{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO services (
			provider_id, name, description, service_type, price_cents, status, location,
			vehicle_type, source, destination, departure_time, total_seats, available_seats,
			vehicle_model, vehicle_number,
			gym_name, monthly_price_cents, quarterly_price_cents, annual_price_cents,
			trainers_available, dietician_available,
			category, duration_minutes
		 ) VALUES (
			$1, $2, $3, $4, $5, 'AVAILABLE', $6,
			$7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22
		 )
		 RETURNING`+serviceColumns,
		svc.ProviderID, svc.Name, svc.Description, svc.Type, svc.PriceCents, svc.Location,
		vehicleType, source, destination, departureTime, totalSeats, availableSeats,
		vehicleModel, vehicleNumber,
		gymName, monthly, quarterly, annual, trainers, dietician,
		category, durationMinutes,
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return row.toService(), nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Service, error) {
	row := serviceRow{}
	err := r.db.GetContext(ctx, &row,
		`SELECT`+serviceColumns+` FROM services WHERE id = $1 AND status <> 'DELETED'`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return row.toService(), nil
}

func (r *repository) GetTx(ctx context.Context, tx *sqlx.Tx, id int) (*Service, error) {
	row := serviceRow{}
	err := tx.GetContext(ctx, &row,
		`SELECT`+serviceColumns+` FROM services WHERE id = $1 AND status <> 'DELETED'`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return row.toService(), nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Service, error) {
	query := `SELECT` + serviceColumns + ` FROM services WHERE status <> 'DELETED'`
	args := []interface{}{}

	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND service_type = $` + strconv.Itoa(len(args))
	}
	if filter.ProviderID != 0 {
		args = append(args, filter.ProviderID)
		query += ` AND provider_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows := []serviceRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	services := make([]Service, 0, len(rows))
	for i := range rows {
		services = append(services, *rows[i].toService())
	}

	return services, nil
}

// Update persists mutable fields. Seat counters are deliberately not
// written here; they move only through ResizeSeats and the reserve and
// release statements.
func (r *repository) Update(ctx context.Context, svc *Service) error {
	var (
		departureTime               interface{}
		vehicleModel, vehicleNumber *string
		gymName, category           *string
		monthly, quarterly, annual  *int64
		trainers, dietician         *bool
		durationMinutes             *int
	)

	switch {
	case svc.Ride != nil:
		departureTime = svc.Ride.DepartureTime
		vehicleModel = &svc.Ride.VehicleModel
		vehicleNumber = &svc.Ride.VehicleNumber
	case svc.Gym != nil:
		gymName = &svc.Gym.GymName
		monthly = &svc.Gym.MonthlyPriceCents
		quarterly = &svc.Gym.QuarterlyPriceCents
		annual = &svc.Gym.AnnualPriceCents
		trainers = &svc.Gym.TrainersAvailable
		dietician = &svc.Gym.DieticianAvailable
	case svc.Visit != nil:
		category = &svc.Visit.Category
		durationMinutes = &svc.Visit.DurationMinutes
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET
			name = $1, description = $2, price_cents = $3, location = $4,
			departure_time = COALESCE($5, departure_time),
			vehicle_model = $6, vehicle_number = $7,
			gym_name = $8, monthly_price_cents = $9, quarterly_price_cents = $10,
			annual_price_cents = $11, trainers_available = $12, dietician_available = $13,
			category = $14, duration_minutes = $15,
			updated_at = NOW()
		 WHERE id = $16 AND status <> 'DELETED'`,
		svc.Name, svc.Description, svc.PriceCents, svc.Location,
		departureTime, vehicleModel, vehicleNumber,
		gymName, monthly, quarterly, annual, trainers, dietician,
		category, durationMinutes,
		svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> 'DELETED'`,
		status, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrServiceNotFound
	}

	return nil
}

func (r *repository) ResizeSeats(ctx context.Context, id, newTotal int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services
		 SET total_seats = $1,
		     available_seats = available_seats + ($1 - total_seats),
		     updated_at = NOW()
		 WHERE id = $2
		   AND service_type IN ('CAR_POOL', 'BIKE_POOL')
		   AND $1 >= total_seats - available_seats`,
		newTotal, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSeatsBelowBooked
	}

	return nil
}

func (r *repository) ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, id, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE services
		 SET available_seats = available_seats - $2, updated_at = NOW()
		 WHERE id = $1
		   AND service_type IN ('CAR_POOL', 'BIKE_POOL')
		   AND available_seats >= $2`,
		id, quantity,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInventoryExhausted
	}

	return nil
}

func (r *repository) ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, id, quantity int) error {
	// LEAST caps the counter at total so a double release can never
	// mint seats that were never booked.
	_, err := tx.ExecContext(ctx,
		`UPDATE services
		 SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = NOW()
		 WHERE id = $1
		   AND service_type IN ('CAR_POOL', 'BIKE_POOL')`,
		id, quantity,
	)
	return err
}
