package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// SeatBookingRepo is the seat ledger: one row per seat per booking.  Only
// rows in the booked state count towards availability; released rows are
// kept for history.
type SeatBookingRepo struct {
	db *sql.DB
}

// NewSeatBookingRepo returns a SeatBookingRepo bound to the given database.
func NewSeatBookingRepo(db *sql.DB) *SeatBookingRepo {
	if db == nil {
		panic("nil db passed to NewSeatBookingRepo")
	}
	return &SeatBookingRepo{db: db}
}

// ActiveCodesTx returns which of codes are currently booked for the show,
// in ledger order.  Passing no codes returns every booked code.
func (r *SeatBookingRepo) ActiveCodesTx(ctx context.Context, tx *sql.Tx, showID uint64, codes []string) ([]string, error) {
	q := `SELECT seat_code FROM seat_bookings WHERE show_id = ? AND status = 'booked'`
	args := []any{showID}
	if len(codes) > 0 {
		q += ` AND seat_code IN (` + placeholders(len(codes)) + `)`
		for _, c := range codes {
			args = append(args, c)
		}
	}
	q += ` ORDER BY id`
	return queryCodes(ctx, tx, q, args...)
}

// ListActive returns every booked seat code for a show outside of any
// transaction.  Used by the public seat map.
func (r *SeatBookingRepo) ListActive(ctx context.Context, showID uint64) ([]string, error) {
	return queryCodes(ctx, r.db,
		`SELECT seat_code FROM seat_bookings WHERE show_id = ? AND status = 'booked' ORDER BY id`, showID)
}

// CountActiveTx counts booked seats for the show.
func (r *SeatBookingRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, showID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_bookings WHERE show_id = ? AND status = 'booked'`, showID).Scan(&n)
	return n, err
}

// InsertBulkTx inserts all seat rows with a single multi-row INSERT.  A
// violation of the active-seat unique key is reported as ErrDuplicateSeat.
// Passing an empty slice has no effect and returns nil.
func (r *SeatBookingRepo) InsertBulkTx(ctx context.Context, tx *sql.Tx, seats []model.SeatBooking) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seat_bookings (booking_id, show_id, seat_code, price, status) VALUES `)
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, s.BookingID, s.ShowID, s.SeatCode, s.Price, model.SeatBooked)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSeat
		}
		return err
	}
	return nil
}

// ReleaseByBookingTx moves every booked seat of the booking to released and
// returns how many rows changed.
func (r *SeatBookingRepo) ReleaseByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE seat_bookings SET status = 'released' WHERE booking_id = ? AND status = 'booked'`, bookingID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryCodes(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	codes := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
