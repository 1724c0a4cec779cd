// Package service holds the booking transaction processor: the only code
// path that writes seats, bookings and the remaining-seat counter.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// Payment methods accepted at booking time.  An empty method means upi.
var paymentMethods = map[string]bool{"upi": true, "card": true, "cash": true}

const defaultPaymentMethod = "upi"

// EventPublisher receives booking events after their transaction commits.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookRequest asks for specific seats on a show.
type BookRequest struct {
	ShowID        uint64
	CustomerID    uint64
	SeatCodes     []string
	PaymentMethod string
}

// CountRequest asks for a number of seats and lets the processor pick them.
type CountRequest struct {
	ShowID        uint64
	CustomerID    uint64
	Seats         int
	PaymentMethod string
}

// BookingResult describes a committed booking.
type BookingResult struct {
	BookingID     uint64   `json:"booking_id"`
	ShowID        uint64   `json:"show_id"`
	TotalAmount   uint32   `json:"total_amount"`
	BookedSeats   []string `json:"booked_seats"`
	PaymentMethod string   `json:"payment_method"`
	PaymentRef    string   `json:"payment_ref"`
}

// BookingService validates, prices and commits bookings and cancellations.
// Every operation runs in one database transaction that starts by locking
// the show row, so work on a single show is serialised while different
// shows proceed in parallel.
type BookingService struct {
	db        *sql.DB
	shows     *repository.ShowRepo
	seats     *repository.SeatBookingRepo
	bookings  *repository.BookingRepo
	publisher EventPublisher
	log       logrus.FieldLogger
	maxSeats  int
	now       func() time.Time
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithPublisher sets the event publisher.  Without one, events are dropped.
func WithPublisher(p EventPublisher) Option { return func(s *BookingService) { s.publisher = p } }

// WithMaxSeats bounds the number of seats in one booking.
func WithMaxSeats(n int) Option { return func(s *BookingService) { s.maxSeats = n } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// NewBookingService wires the processor.  All repositories must share db.
func NewBookingService(db *sql.DB, shows *repository.ShowRepo, seats *repository.SeatBookingRepo,
	bookings *repository.BookingRepo, log logrus.FieldLogger, opts ...Option) *BookingService {
	if db == nil || shows == nil || seats == nil || bookings == nil {
		panic("nil dependency passed to NewBookingService")
	}
	s := &BookingService{
		db:       db,
		shows:    shows,
		seats:    seats,
		bookings: bookings,
		log:      log.WithField("component", "booking"),
		maxSeats: 10,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// seatPicker decides which seats to book once the show is locked.
type seatPicker func(ctx context.Context, tx *sql.Tx, inv repository.ShowInventory) ([]string, error)

// Book reserves the requested seats.  Checks run in this order: caller
// identity, non-empty seat list, seat code format, payment method, show
// existence, seats exist on the screen, seats not already booked, enough
// remaining seats.  Any failure leaves the store untouched.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*BookingResult, error) {
	if req.CustomerID == 0 {
		return nil, UnauthorizedError{}
	}
	codes, err := NormalizeSeatCodes(req.SeatCodes)
	if err != nil {
		return nil, err
	}
	if len(codes) > s.maxSeats {
		return nil, ValidationError{Field: "selected_seats", Msg: "too many seats in one booking"}
	}
	method, err := normalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.ShowID == 0 {
		return nil, ValidationError{Field: "show_id", Msg: "show_id is required"}
	}

	pick := func(ctx context.Context, tx *sql.Tx, inv repository.ShowInventory) ([]string, error) {
		for _, c := range codes {
			sc, _ := ParseSeatCode(c)
			if !sc.InLayout(inv.Capacity) {
				return nil, ValidationError{Field: "selected_seats", Msg: "seat " + c + " does not exist for this show"}
			}
		}
		taken, err := s.seats.ActiveCodesTx(ctx, tx, inv.ShowID, codes)
		if err != nil {
			return nil, internal("booking failed", err)
		}
		if len(taken) > 0 {
			return nil, ConflictError{Msg: "seats already booked", Seats: taken}
		}
		return codes, nil
	}
	return s.book(ctx, req.ShowID, req.CustomerID, method, pick)
}

// BookByCount reserves the first free seats of the screen layout.  It uses
// the same transaction and seat ledger as Book, so both paths see each
// other's seats.
func (s *BookingService) BookByCount(ctx context.Context, req CountRequest) (*BookingResult, error) {
	if req.CustomerID == 0 {
		return nil, UnauthorizedError{}
	}
	if req.Seats <= 0 {
		return nil, ValidationError{Field: "seats", Msg: "no seats selected"}
	}
	if req.Seats > s.maxSeats {
		return nil, ValidationError{Field: "seats", Msg: "too many seats in one booking"}
	}
	method, err := normalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.ShowID == 0 {
		return nil, ValidationError{Field: "show_id", Msg: "show_id is required"}
	}

	pick := func(ctx context.Context, tx *sql.Tx, inv repository.ShowInventory) ([]string, error) {
		if int(inv.RemainingSeats) < req.Seats {
			return nil, ConflictError{Msg: "not enough seats available"}
		}
		taken, err := s.seats.ActiveCodesTx(ctx, tx, inv.ShowID, nil)
		if err != nil {
			return nil, internal("booking failed", err)
		}
		busy := make(map[string]bool, len(taken))
		for _, c := range taken {
			busy[c] = true
		}
		picked := make([]string, 0, req.Seats)
		for _, c := range SeatLayout(inv.Capacity) {
			if busy[c] {
				continue
			}
			picked = append(picked, c)
			if len(picked) == req.Seats {
				return picked, nil
			}
		}
		return nil, ConflictError{Msg: "not enough seats available"}
	}
	return s.book(ctx, req.ShowID, req.CustomerID, method, pick)
}

func (s *BookingService) book(ctx context.Context, showID, customerID uint64, method string, pick seatPicker) (*BookingResult, error) {
	log := s.log.WithFields(logrus.Fields{"show_id": showID, "customer_id": customerID})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("booking failed", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	inv, err := s.shows.LockTx(ctx, tx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return nil, NotFoundError{Resource: "show", Err: err}
		}
		return nil, s.fail(log, internal("booking failed", err))
	}

	codes, err := pick(ctx, tx, inv)
	if err != nil {
		return nil, s.fail(log, err)
	}
	if uint32(len(codes)) > inv.RemainingSeats {
		return nil, s.fail(log, ConflictError{Msg: "not enough seats available"})
	}

	total, prices, err := TotalPrice(inv.BasePrice, codes)
	if err != nil {
		return nil, s.fail(log, err)
	}

	ref := uuid.NewString()
	b := &model.Booking{
		CustomerID:    customerID,
		ShowID:        showID,
		SeatsBooked:   uint32(len(codes)),
		TotalAmount:   total,
		PaymentMethod: method,
		PaymentRef:    &ref,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, s.fail(log, internal("booking failed", err))
	}

	rows := make([]model.SeatBooking, len(codes))
	for i, c := range codes {
		rows[i] = model.SeatBooking{BookingID: b.ID, ShowID: showID, SeatCode: c, Price: prices[i]}
	}
	if err := s.seats.InsertBulkTx(ctx, tx, rows); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeat) {
			return nil, s.fail(log, s.seatConflict(ctx, tx, showID, codes, err))
		}
		return nil, s.fail(log, internal("booking failed", err))
	}

	if err := s.shows.DecrementSeatsTx(ctx, tx, showID, len(codes)); err != nil {
		if errors.Is(err, repository.ErrInsufficientSeats) {
			return nil, s.fail(log, ConflictError{Msg: "not enough seats available", Err: err})
		}
		return nil, s.fail(log, internal("booking failed", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail(log, internal("booking failed", err))
	}
	committed = true

	log.WithFields(logrus.Fields{"booking_id": b.ID, "seats": strings.Join(codes, ","), "total": total}).Info("booking confirmed")

	if s.publisher != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:     b.ID,
			CustomerID:    customerID,
			ShowID:        showID,
			StartsAt:      inv.StartsAt.UTC().Format(time.RFC3339),
			Seats:         codes,
			TotalAmount:   total,
			PaymentMethod: method,
			PaymentRef:    ref,
			ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			log.WithError(err).WithField("booking_id", b.ID).Warn("publish booking.confirmed failed")
		}
	}

	return &BookingResult{
		BookingID:     b.ID,
		ShowID:        showID,
		TotalAmount:   total,
		BookedSeats:   codes,
		PaymentMethod: method,
		PaymentRef:    ref,
	}, nil
}

// seatConflict builds the Conflict for a unique-key violation by reading
// which of the requested seats are now taken.
func (s *BookingService) seatConflict(ctx context.Context, tx *sql.Tx, showID uint64, codes []string, cause error) error {
	taken, err := s.seats.ActiveCodesTx(ctx, tx, showID, codes)
	if err != nil || len(taken) == 0 {
		taken = codes
	}
	return ConflictError{Msg: "seats already booked", Seats: taken, Err: cause}
}

// Cancel cancels a confirmed booking owned by customerID and releases its
// seats back to the show in the same transaction.  A booking that does not
// exist or belongs to someone else is NotFound; one that is already
// cancelled or whose show has started is a Conflict.
func (s *BookingService) Cancel(ctx context.Context, bookingID, customerID uint64) error {
	if customerID == 0 {
		return UnauthorizedError{}
	}
	if bookingID == 0 {
		return ValidationError{Field: "booking_id", Msg: "booking_id is required"}
	}
	log := s.log.WithFields(logrus.Fields{"booking_id": bookingID, "customer_id": customerID})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return internal("cancel failed", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, startsAt, err := s.bookings.LockWithShowTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return NotFoundError{Resource: "booking", Err: err}
		}
		return s.fail(log, internal("cancel failed", err))
	}
	if b.CustomerID != customerID {
		return NotFoundError{Resource: "booking"}
	}
	if b.Status != model.BookingConfirmed {
		return s.fail(log, ConflictError{Msg: "booking cannot be cancelled"})
	}
	now := s.now().UTC()
	if !startsAt.After(now) {
		return s.fail(log, ConflictError{Msg: "show already started"})
	}

	if err := s.bookings.CancelTx(ctx, tx, b.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotCancellable) {
			return s.fail(log, ConflictError{Msg: "booking cannot be cancelled", Err: err})
		}
		return s.fail(log, internal("cancel failed", err))
	}
	released, err := s.seats.ReleaseByBookingTx(ctx, tx, b.ID)
	if err != nil {
		return s.fail(log, internal("cancel failed", err))
	}
	if err := s.shows.IncrementSeatsTx(ctx, tx, b.ShowID, released); err != nil {
		return s.fail(log, internal("cancel failed", err))
	}
	if err := tx.Commit(); err != nil {
		return s.fail(log, internal("cancel failed", err))
	}
	committed = true

	log.WithFields(logrus.Fields{"show_id": b.ShowID, "seats_released": released}).Info("booking cancelled")

	if s.publisher != nil {
		ev := queue.BookingCancelledEvent{
			BookingID:     b.ID,
			CustomerID:    customerID,
			ShowID:        b.ShowID,
			SeatsReleased: released,
			CancelledAt:   now.Format(time.RFC3339),
		}
		if err := s.publisher.PublishBookingCancelled(ctx, ev); err != nil {
			log.WithError(err).Warn("publish booking.cancelled failed")
		}
	}
	return nil
}

// Reconcile recomputes a show's remaining-seat counter from the seat ledger
// and returns the corrected value.
func (s *BookingService) Reconcile(ctx context.Context, showID uint64) (uint32, error) {
	log := s.log.WithField("show_id", showID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, internal("reconcile failed", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	inv, err := s.shows.LockTx(ctx, tx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return 0, NotFoundError{Resource: "show", Err: err}
		}
		return 0, internal("reconcile failed", err)
	}
	active, err := s.seats.CountActiveTx(ctx, tx, showID)
	if err != nil {
		return 0, internal("reconcile failed", err)
	}
	if uint32(active) > inv.Capacity {
		return 0, internal("reconcile failed", errors.New("active seats exceed screen capacity"))
	}
	remaining := inv.Capacity - uint32(active)
	if remaining != inv.RemainingSeats {
		if err := s.shows.SetRemainingTx(ctx, tx, showID, remaining); err != nil {
			return 0, internal("reconcile failed", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, internal("reconcile failed", err)
	}
	committed = true

	if remaining != inv.RemainingSeats {
		log.WithFields(logrus.Fields{"was": inv.RemainingSeats, "now": remaining}).Warn("remaining seats corrected")
	}
	return remaining, nil
}

// fail logs a rejected or failed operation at a level matching its kind and
// returns err unchanged.
func (s *BookingService) fail(log logrus.FieldLogger, err error) error {
	var ie InternalError
	if errors.As(err, &ie) {
		log.WithError(ie.Err).Error(ie.Error())
		return err
	}
	entry := log.WithField("reason", err.Error())
	if seats := ConflictSeats(err); len(seats) > 0 {
		entry = entry.WithField("seats", strings.Join(seats, ","))
	}
	entry.Info("booking rejected")
	return err
}

func normalizePaymentMethod(m string) (string, error) {
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return defaultPaymentMethod, nil
	}
	if !paymentMethods[m] {
		return "", ValidationError{Field: "payment_method", Msg: "unsupported payment method"}
	}
	return m, nil
}
