package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var detailCols = []string{
	"id", "customer_id", "show_id", "seats_booked", "total_amount", "payment_method",
	"payment_ref", "status", "booked_at", "cancelled_at", "title", "theatre", "screen", "starts_at",
}

func TestListByCustomerAttachesSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.customer_id = ?")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(2, 7, 1, 1, 220, "upi", "ref-2", "confirmed", now, nil, "Dune", "Regal", "Screen 1", now.Add(time.Hour)).
			AddRow(1, 7, 1, 2, 440, "card", nil, "cancelled", now.Add(-time.Hour), now, "Dune", "Regal", "Screen 1", now.Add(time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT booking_id, seat_code FROM seat_bookings WHERE booking_id IN (?,?)")).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "seat_code"}).
			AddRow(1, "A1").AddRow(1, "A2").AddRow(2, "C5"))

	got, err := repo.ListByCustomer(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"C5"}, got[0].Seats)
	assert.Equal(t, "ref-2", *got[0].PaymentRef)
	assert.Nil(t, got[0].CancelledAt)
	assert.Equal(t, []string{"A1", "A2"}, got[1].Seats)
	assert.Nil(t, got[1].PaymentRef)
	require.NotNil(t, got[1].CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForCustomerNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ? AND b.customer_id = ?")).WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows(detailCols))

	_, err := NewBookingRepo(db).GetForCustomer(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTxRequiresConfirmed(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = 'cancelled'")).WithArgs(at, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = NewBookingRepo(db).CancelTx(context.Background(), tx, 9, at)
	assert.ErrorIs(t, err, ErrNotCancellable)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementSeatsGuardsCounter(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shows SET remaining_seats = remaining_seats - ? WHERE id = ? AND remaining_seats >= ?")).
		WithArgs(3, 1, 3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = NewShowRepo(db).DecrementSeatsTx(context.Background(), tx, 1, 3)
	assert.ErrorIs(t, err, ErrInsufficientSeats)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBulkMapsDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seat_bookings (booking_id, show_id, seat_code, price, status) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(5, 1, "A1", 220, "booked").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-A1' for key 'uq_show_active_seat'"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = NewSeatBookingRepo(db).InsertBulkTx(context.Background(), tx,
		[]model.SeatBooking{{BookingID: 5, ShowID: 1, SeatCode: "A1", Price: 220}})
	assert.ErrorIs(t, err, ErrDuplicateSeat)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Asha", "asha@example.com", sqlmock.AnyArg(), model.RoleCustomer).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	_, err := NewUserRepo(db).Create(context.Background(), " Asha ", "ASHA@example.com", "longenough", model.RoleCustomer, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateScreenUnknownTheatre(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO screens")).
		WithArgs(42, "Screen 9", "standard", 80, model.ScreenActive).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	err := NewScreenRepo(db).Create(context.Background(), &model.Screen{TheatreID: 42, Name: "Screen 9", Capacity: 80})
	assert.ErrorIs(t, err, ErrTheatreNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpersIgnoreOtherErrors(t *testing.T) {
	assert.False(t, isDuplicateKey(errors.New("1062")))
	assert.False(t, isMissingParent(&mysql.MySQLError{Number: 1062}))
	assert.Equal(t, "?,?,?", placeholders(3))
	assert.Empty(t, placeholders(0))
}
