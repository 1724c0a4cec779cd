package model

import "time"

// Booking statuses.  confirmed → cancelled is the only transition.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Seat booking statuses.
const (
	SeatBooked   = "booked"
	SeatReleased = "released"
)

// Booking records a customer's purchase of one or more seats for a show.
// It owns its SeatBooking rows; both are created in the same transaction.
//
// Fields:
//  ID            – primary key identifier.
//  CustomerID    – user who booked.
//  ShowID        – show being booked.
//  SeatsBooked   – number of seats in the booking.
//  TotalAmount   – sum of seat prices in whole currency units.
//  PaymentMethod – upi, card or cash.
//  PaymentRef    – reference issued at booking time.
//  Status        – confirmed or cancelled.
//  BookedAt      – creation timestamp.
//  CancelledAt   – set once the booking is cancelled.
type Booking struct {
	ID            uint64     `json:"id"`                     // bookings.id
	CustomerID    uint64     `json:"customer_id"`            // bookings.customer_id
	ShowID        uint64     `json:"show_id"`                // bookings.show_id
	SeatsBooked   uint32     `json:"seats_booked"`           // bookings.seats_booked
	TotalAmount   uint32     `json:"total_amount"`           // bookings.total_amount
	PaymentMethod string     `json:"payment_method"`         // bookings.payment_method
	PaymentRef    *string    `json:"payment_ref,omitempty"`  // bookings.payment_ref (nullable)
	Status        string     `json:"status"`                 // bookings.status
	BookedAt      time.Time  `json:"booked_at"`              // bookings.booked_at
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"` // bookings.cancelled_at (nullable)
}

// SeatBooking binds one seat code to one booking for one show.  At most one
// row per (show, seat code) may be in the booked state.
type SeatBooking struct {
	ID        uint64 `json:"id"`         // seat_bookings.id
	BookingID uint64 `json:"booking_id"` // seat_bookings.booking_id
	ShowID    uint64 `json:"show_id"`    // seat_bookings.show_id
	SeatCode  string `json:"seat_code"`  // seat_bookings.seat_code
	Price     uint32 `json:"price"`      // seat_bookings.price
	Status    string `json:"status"`     // seat_bookings.status
}

// BookingDetail is a booking enriched with show context and its seat codes,
// as listed to the customer who owns it.
type BookingDetail struct {
	Booking
	MovieTitle  string    `json:"movie_title"`
	TheatreName string    `json:"theatre_name"`
	ScreenName  string    `json:"screen_name"`
	StartsAt    time.Time `json:"starts_at"`
	Seats       []string  `json:"seats"`
}
