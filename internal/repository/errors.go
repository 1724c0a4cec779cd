// Package repository defines error values that are reused across
// repositories.  These sentinels let the service and handler layers
// distinguish failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrShowNotFound indicates that a show was not located in the DB.
	ErrShowNotFound = errors.New("show not found")
	// ErrBookingNotFound indicates that a booking was not located in the DB.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrScreenNotFound is returned when a show references an unknown screen.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrScreenInactive is returned when scheduling on an inactive screen.
	ErrScreenInactive = errors.New("screen inactive")
	// ErrEmailExists is returned when registering a taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrDuplicateSeat means a seat_bookings insert hit the active-seat
	// unique key: another booking holds one of the seats.
	ErrDuplicateSeat = errors.New("seat already booked")
	// ErrInsufficientSeats is returned when a decrement would drive the
	// remaining-seat counter below zero.
	ErrInsufficientSeats = errors.New("not enough seats remaining")
	// ErrConflict signals a uniqueness clash on create, such as two shows
	// on one screen at the same start time.
	ErrConflict = errors.New("conflict")
	// ErrMovieNotFound is returned when a show references an unknown movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrTheatreNotFound is returned when a screen references an unknown theatre.
	ErrTheatreNotFound = errors.New("theatre not found")
	// ErrNotCancellable is returned when a cancel update matched no
	// confirmed booking.
	ErrNotCancellable = errors.New("booking not cancellable")
)

const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// isDuplicateKey reports whether err is a MySQL duplicate-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isMissingParent reports whether err is a foreign key violation on insert.
func isMissingParent(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoReferencedRow
}
