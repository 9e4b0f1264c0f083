package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func setupLedgerMock(t *testing.T) (Repository, sqlmock.Sqlmock, *sqlx.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, sqlxDB
}

func walletRows(id, ownerID int, balanceCents int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "balance_cents", "created_at", "updated_at"}).
		AddRow(id, ownerID, balanceCents, time.Now(), time.Now())
}

func TestCreateWallet(t *testing.T) {
	repo, mock, _ := setupLedgerMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (owner_id)")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0))

	w, err := repo.CreateWallet(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, int64(0), w.BalanceCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWallet_AlreadyExists(t *testing.T) {
	repo, mock, _ := setupLedgerMock(t)

	// ON CONFLICT DO NOTHING returns no row when the wallet exists.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (owner_id)")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.CreateWallet(context.Background(), 10)
	require.ErrorIs(t, err, ErrWalletExists)
}

func TestDeposit_LocksRowAndRecordsEntry(t *testing.T) {
	repo, mock, _ := setupLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2000))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(2500), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(7, int64(500), KindDeposit, "top up", nil, int64(2500)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))
	mock.ExpectCommit()

	entry, err := repo.Deposit(context.Background(), 20, 500, "top up")
	require.NoError(t, err)
	require.Equal(t, 42, entry.ID)
	require.Equal(t, int64(500), entry.AmountCents)
	require.Equal(t, int64(2500), entry.BalanceAfter)
	require.Nil(t, entry.ReferenceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	repo, mock, _ := setupLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 300))
	mock.ExpectRollback()

	_, err := repo.Withdraw(context.Background(), 20, 500, "cash out")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdraw_RejectsNonPositiveAmount(t *testing.T) {
	repo, _, _ := setupLedgerMock(t)

	_, err := repo.Withdraw(context.Background(), 20, 0, "noop")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = repo.Withdraw(context.Background(), 20, -100, "negative")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebitTx_TaggedWithBookingReference(t *testing.T) {
	repo, mock, db := setupLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 5000))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(3000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(7, int64(-2000), KindPayment, "Payment for ride", 99, int64(3000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(43, time.Now()))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	entry, err := repo.DebitTx(context.Background(), tx, 20, 2000, KindPayment, 99, "Payment for ride")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Equal(t, int64(-2000), entry.AmountCents)
	require.NotNil(t, entry.ReferenceID)
	require.Equal(t, 99, *entry.ReferenceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByOwner_NotFound(t *testing.T) {
	repo, mock, _ := setupLedgerMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByOwner(context.Background(), 404)
	require.ErrorIs(t, err, ErrWalletNotFound)
}
