package model

import "time"

// Theatre represents a venue.  A theatre contains one or more screens.
type Theatre struct {
	ID        uint64    `json:"id"`         // theatres.id
	Name      string    `json:"name"`       // theatres.name
	City      string    `json:"city"`       // theatres.city
	Address   string    `json:"address"`    // theatres.address
	CreatedAt time.Time `json:"created_at"` // theatres.created_at
}
