package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Khodkerutuja/WaitlistWizard/internal/inventory"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/subscription"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

func setupRefundMock(t *testing.T) (*RefundCoordinator, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	serviceRepo := service.NewRepository(sqlxDB)
	inv := inventory.NewCoordinator(serviceRepo, subscription.NewRepository(sqlxDB))

	coordinator := NewRefundCoordinator(
		sqlxDB,
		NewRepository(sqlxDB),
		serviceRepo,
		wallet.NewRepository(sqlxDB),
		inv,
		testPlatformUserID,
		testCommissionBps,
	)
	return coordinator, mock
}

func confirmedBookingRows(id, serviceID, consumerID int, amountCents int64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).
		AddRow(id, serviceID, consumerID, "CONFIRMED", amountCents, 1, nil, "", 101, time.Now(), time.Now())
}

func TestCancel_ConfirmedBookingReversesTransfer(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	const (
		bookingID  = 55
		serviceID  = 5
		consumerID = 2
		providerID = 3
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(bookingID).
		WillReturnRows(confirmedBookingRows(bookingID, serviceID, consumerID, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(serviceID).
		WillReturnRows(rideServiceRows(serviceID, providerID, "Morning Commute", 10000))

	// Refund mirrors the payment: consumer gets 100.00 back, provider
	// and platform wallets give up 90.00 and 10.00.
	expectLedgerEntry(mock, consumerID, 20, 5000, 10000, 15000, 201)
	expectLedgerEntry(mock, providerID, 30, 9000, -9000, 0, 202)
	expectLedgerEntry(mock, testPlatformUserID, 10, 1000, -1000, 0, 203)

	// Reserved seat goes back to the pool.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE services")).
		WithArgs(serviceID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := coordinator.Cancel(context.Background(), bookingID, consumerID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, b.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_PendingBookingReleasesWithoutRefund(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(pendingBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))

	// No wallet statements: nothing was paid.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE services")).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := coordinator.Cancel(context.Background(), 55, 2)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, b.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_StrangerNotAllowed(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(pendingBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))
	mock.ExpectRollback()

	_, err := coordinator.Cancel(context.Background(), 55, 999)
	require.ErrorIs(t, err, ErrNotAllowed)
}

func TestCancel_CompletedBookingRejected(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	completed := sqlmock.NewRows(bookingCols).
		AddRow(55, 5, 2, "COMPLETED", int64(10000), 1, nil, "", 101, time.Now(), time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(completed)
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))
	mock.ExpectRollback()

	_, err := coordinator.Cancel(context.Background(), 55, 2)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancel_ProviderWalletShortfallIsLedgerFault(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(confirmedBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))

	expectLedgerEntry(mock, 2, 20, 5000, 10000, 15000, 201)

	// Provider wallet was drained since the payment; the reversal must
	// surface as a consistency fault, not a plain business error.
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "balance_cents", "created_at", "updated_at"}).
			AddRow(30, 3, 100, time.Now(), time.Now()))
	mock.ExpectRollback()

	_, err := coordinator.Cancel(context.Background(), 55, 2)
	require.ErrorIs(t, err, wallet.ErrLedgerInconsistent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_ProviderOnly(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(pendingBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))
	mock.ExpectRollback()

	// The consumer cannot reject their own booking.
	_, err := coordinator.Reject(context.Background(), 55, 2, "")
	require.ErrorIs(t, err, ErrNotAllowed)
}

func TestReject_ReleasesSeatAndRecordsReason(t *testing.T) {
	coordinator, mock := setupRefundMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(55).
		WillReturnRows(pendingBookingRows(55, 5, 2, 10000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(5).
		WillReturnRows(rideServiceRows(5, 3, "Morning Commute", 10000))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE services")).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET notes")).
		WithArgs(55, "vehicle in repair").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := coordinator.Reject(context.Background(), 55, 3, "vehicle in repair")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, b.Status)
	require.Equal(t, "vehicle in repair", b.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}
