// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// Queue and message types.  Both events travel on one durable queue and are
// told apart by the AMQP Type property.
const (
	BookingQueue         = "booking.events"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingConfirmedEvent is published after a booking commits.  It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	CustomerID    uint64   `json:"customer_id"`
	ShowID        uint64   `json:"show_id"`
	StartsAt      string   `json:"starts_at"`
	Seats         []string `json:"seats"`
	TotalAmount   uint32   `json:"total_amount"`
	PaymentMethod string   `json:"payment_method"`
	PaymentRef    string   `json:"payment_ref"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	BookingID     uint64 `json:"booking_id"`
	CustomerID    uint64 `json:"customer_id"`
	ShowID        uint64 `json:"show_id"`
	SeatsReleased int    `json:"seats_released"`
	CancelledAt   string `json:"cancelled_at"`
}
