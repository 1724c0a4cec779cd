package model

import "time"

// Show represents a scheduled screening of a movie on a screen.
// RemainingSeats is a cached counter that must always equal the screen
// capacity minus the number of active seat bookings for the show.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being screened.
//  ScreenID       – screen hosting the show.
//  StartsAt       – when the show begins (UTC).
//  PriceTier      – marketing label for the base price.
//  BasePrice      – price of a front-row seat in whole currency units.
//  RemainingSeats – unbooked seats.
type Show struct {
	ID             uint64    `json:"id"`              // shows.id
	MovieID        uint64    `json:"movie_id"`        // shows.movie_id
	ScreenID       uint64    `json:"screen_id"`       // shows.screen_id
	StartsAt       time.Time `json:"starts_at"`       // shows.starts_at
	PriceTier      string    `json:"price_tier"`      // shows.price_tier
	BasePrice      uint32    `json:"base_price"`      // shows.base_price
	RemainingSeats uint32    `json:"remaining_seats"` // shows.remaining_seats
}

// ShowDetail joins a show with the movie, screen and theatre it belongs to.
// It is the read model returned by the browse endpoints.
type ShowDetail struct {
	Show
	MovieTitle  string `json:"movie_title"`
	ScreenName  string `json:"screen_name"`
	ScreenType  string `json:"screen_type"`
	Capacity    uint32 `json:"capacity"`
	TheatreID   uint64 `json:"theatre_id"`
	TheatreName string `json:"theatre_name"`
	City        string `json:"city"`
}
