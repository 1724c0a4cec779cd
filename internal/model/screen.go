package model

// Screen is an auditorium inside a theatre.  Capacity is the total number of
// bookable seats and bounds the seat layout generated for its shows.
//
// Fields:
//  ID        – primary key identifier.
//  TheatreID – containing theatre.
//  Name      – unique per theatre.
//  Type      – free-form label (standard, imax, 4dx ...).
//  Capacity  – number of seats.
//  Status    – active or inactive; inactive screens accept no new shows.
type Screen struct {
	ID        uint64 `json:"id"`         // screens.id
	TheatreID uint64 `json:"theatre_id"` // screens.theatre_id
	Name      string `json:"name"`       // screens.name
	Type      string `json:"type"`       // screens.type
	Capacity  uint32 `json:"capacity"`   // screens.capacity
	Status    string `json:"status"`     // screens.status
}

// ScreenActive marks a screen that can host shows.
const ScreenActive = "active"
