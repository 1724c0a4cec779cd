package model

import "time"

// Movie statuses.
const (
	MovieNowShowing = "now_showing"
	MovieUpcoming   = "upcoming"
	MovieArchived   = "archived"
)

// Movie is a row of the `movies` table.
type Movie struct {
	ID          uint64    `json:"id"`           // movies.id
	Title       string    `json:"title"`        // movies.title
	Genre       string    `json:"genre"`        // movies.genre
	Language    string    `json:"language"`     // movies.language
	DurationMin uint32    `json:"duration_min"` // movies.duration_min
	Rating      float64   `json:"rating"`       // movies.rating
	Status      string    `json:"status"`       // movies.status
	CreatedAt   time.Time `json:"created_at"`   // movies.created_at
}
