package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

const (
	testPlatformUserID = 1
	testCommissionBps  = 1000
)

func setupPaymentMock(t *testing.T) (*Processor, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	processor := NewProcessor(
		sqlxDB,
		NewRepository(sqlxDB),
		service.NewRepository(sqlxDB),
		wallet.NewRepository(sqlxDB),
		testPlatformUserID,
		testCommissionBps,
	)
	return processor, mock
}

var bookingCols = []string{
	"id", "service_id", "consumer_id", "status", "amount_cents", "quantity",
	"plan", "notes", "transaction_id", "created_at", "updated_at",
}

func pendingBookingRows(id, serviceID, consumerID int, amountCents int64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).
		AddRow(id, serviceID, consumerID, "PENDING", amountCents, 1, nil, "", nil, time.Now(), time.Now())
}

var serviceCols = []string{
	"id", "provider_id", "name", "description", "service_type", "price_cents", "status", "location",
	"created_at", "updated_at",
	"vehicle_type", "source", "destination", "departure_time", "total_seats", "available_seats",
	"vehicle_model", "vehicle_number",
	"gym_name", "monthly_price_cents", "quarterly_price_cents", "annual_price_cents",
	"trainers_available", "dietician_available",
	"category", "duration_minutes",
}

func rideServiceRows(id, providerID int, name string, priceCents int64) *sqlmock.Rows {
	return sqlmock.NewRows(serviceCols).AddRow(
		id, providerID, name, "", "CAR_POOL", priceCents, "AVAILABLE", "",
		time.Now(), time.Now(),
		"sedan", "Downtown", "Airport", time.Now().Add(time.Hour), 4, 3,
		"", "",
		nil, nil, nil, nil, nil, nil,
		nil, nil,
	)
}

func expectLedgerEntry(mock sqlmock.Sqlmock, ownerID, walletID int, balance, delta, newBalance int64, entryID int) {
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "balance_cents", "created_at", "updated_at"}).
			AddRow(walletID, ownerID, balance, time.Now(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(newBalance, walletID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(entryID, time.Now()))
}

func TestCommissionCents(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"ten percent of 100.00", 10000, 1000, 1000},
		{"rounds half up", 5, 1000, 1},
		{"rounds down below half", 4, 1000, 0},
		{"zero amount", 0, 1000, 0},
		{"zero rate", 10000, 0, 0},
		{"full rate", 10000, 10000, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CommissionCents(tt.amount, tt.bps))
		})
	}
}

func TestProcess_ThreeWayTransfer(t *testing.T) {
	processor, mock := setupPaymentMock(t)

	const (
		bookingID  = 55
		serviceID  = 5
		consumerID = 2
		providerID = 3
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(bookingID).
		WillReturnRows(pendingBookingRows(bookingID, serviceID, consumerID, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(serviceID).
		WillReturnRows(rideServiceRows(serviceID, providerID, "Morning Commute", 10000))

	// Consumer pays 100.00, provider receives 90.00, platform keeps 10.00.
	expectLedgerEntry(mock, consumerID, 20, 15000, -10000, 5000, 101)
	expectLedgerEntry(mock, providerID, 30, 0, 9000, 9000, 102)
	expectLedgerEntry(mock, testPlatformUserID, 10, 0, 1000, 1000, 103)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs(bookingID, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := processor.Process(context.Background(), bookingID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, b.Status)
	require.NotNil(t, b.TransactionID)
	require.Equal(t, 101, *b.TransactionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_InsufficientFundsLeavesBookingPending(t *testing.T) {
	processor, mock := setupPaymentMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(pendingBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))

	// Consumer wallet holds less than the booking amount.
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "balance_cents", "created_at", "updated_at"}).
			AddRow(20, 2, 500, time.Now(), time.Now()))
	mock.ExpectRollback()

	_, err := processor.Process(context.Background(), 55)
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_RejectsNonPendingBooking(t *testing.T) {
	processor, mock := setupPaymentMock(t)

	confirmed := sqlmock.NewRows(bookingCols).
		AddRow(55, 5, 2, "CONFIRMED", int64(10000), 1, nil, "", 101, time.Now(), time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(confirmed)
	mock.ExpectRollback()

	_, err := processor.Process(context.Background(), 55)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_BookingNotFound(t *testing.T) {
	processor, mock := setupPaymentMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	_, err := processor.Process(context.Background(), 404)
	require.ErrorIs(t, err, ErrBookingNotFound)
}
