package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// BookingRepo provides persistence for bookings.  Seat rows are handled by
// SeatBookingRepo; both are written inside the caller's transaction.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	if db == nil {
		panic("nil db passed to NewBookingRepo")
	}
	return &BookingRepo{db: db}
}

// CreateTx inserts a confirmed booking within an existing transaction and
// sets the generated ID on b.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (customer_id, show_id, seats_booked, total_amount, payment_method, payment_ref, status)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.CustomerID, b.ShowID, b.SeatsBooked, b.TotalAmount, b.PaymentMethod, b.PaymentRef, model.BookingConfirmed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingConfirmed
	return nil
}

// LockWithShowTx loads a booking and the start time of its show, locking the
// booking and show rows until tx ends.  ErrBookingNotFound is returned when
// no booking has the given ID.
func (r *BookingRepo) LockWithShowTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, time.Time, error) {
	const q = `SELECT b.id, b.customer_id, b.show_id, b.seats_booked, b.total_amount, b.payment_method,
                      b.payment_ref, b.status, b.booked_at, b.cancelled_at, s.starts_at
               FROM bookings b
               JOIN shows s ON s.id = b.show_id
               WHERE b.id = ?
               FOR UPDATE`
	var b model.Booking
	var startsAt time.Time
	var ref sql.NullString
	var cancelledAt sql.NullTime
	err := tx.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.CustomerID, &b.ShowID, &b.SeatsBooked, &b.TotalAmount,
		&b.PaymentMethod, &ref, &b.Status, &b.BookedAt, &cancelledAt, &startsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrBookingNotFound
		}
		return nil, time.Time{}, err
	}
	if ref.Valid {
		b.PaymentRef = &ref.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	return &b, startsAt, nil
}

// CancelTx transitions a confirmed booking to cancelled.  ErrNotCancellable
// is returned when the booking is not in the confirmed state.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', cancelled_at = ? WHERE id = ? AND status = 'confirmed'`,
		at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotCancellable
	}
	return nil
}

const bookingDetailSelect = `SELECT b.id, b.customer_id, b.show_id, b.seats_booked, b.total_amount, b.payment_method,
       b.payment_ref, b.status, b.booked_at, b.cancelled_at,
       m.title, t.name, sc.name, s.starts_at
  FROM bookings b
  JOIN shows s    ON s.id = b.show_id
  JOIN movies m   ON m.id = s.movie_id
  JOIN screens sc ON sc.id = s.screen_id
  JOIN theatres t ON t.id = sc.theatre_id`

// ListByCustomer returns the customer's bookings, newest first, each with
// its seat codes.  When no bookings exist, an empty slice is returned.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` WHERE b.customer_id = ? ORDER BY b.booked_at DESC, b.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	details, err := scanBookingDetails(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// GetForCustomer returns a single booking owned by customerID.  A booking
// owned by someone else is reported as ErrBookingNotFound.
func (r *BookingRepo) GetForCustomer(ctx context.Context, id, customerID uint64) (*model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` WHERE b.id = ? AND b.customer_id = ?`, id, customerID)
	if err != nil {
		return nil, err
	}
	details, err := scanBookingDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrBookingNotFound
	}
	if err := r.attachSeats(ctx, details); err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListRecent returns the latest bookings across all customers.
func (r *BookingRepo) ListRecent(ctx context.Context, limit int) ([]model.BookingDetail, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` ORDER BY b.booked_at DESC, b.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	details, err := scanBookingDetails(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

func scanBookingDetails(rows *sql.Rows) ([]model.BookingDetail, error) {
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		var ref sql.NullString
		var cancelledAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.ShowID, &d.SeatsBooked, &d.TotalAmount, &d.PaymentMethod,
			&ref, &d.Status, &d.BookedAt, &cancelledAt,
			&d.MovieTitle, &d.TheatreName, &d.ScreenName, &d.StartsAt); err != nil {
			return nil, err
		}
		if ref.Valid {
			d.PaymentRef = &ref.String
		}
		if cancelledAt.Valid {
			d.CancelledAt = &cancelledAt.Time
		}
		d.Seats = []string{}
		out = append(out, d)
	}
	return out, rows.Err()
}

// attachSeats loads the seat codes of all given bookings with one IN query.
func (r *BookingRepo) attachSeats(ctx context.Context, details []model.BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(details))
	ids := make([]any, 0, len(details))
	for i, d := range details {
		index[d.ID] = i
		ids = append(ids, d.ID)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT booking_id, seat_code FROM seat_bookings WHERE booking_id IN (`+placeholders(len(ids))+`) ORDER BY booking_id, id`,
		ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookingID uint64
		var code string
		if err := rows.Scan(&bookingID, &code); err != nil {
			return err
		}
		if i, ok := index[bookingID]; ok {
			details[i].Seats = append(details[i].Seats, code)
		}
	}
	return rows.Err()
}
