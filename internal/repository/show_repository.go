// Package repository contains data access logic.  This file holds the show
// repository, which owns the remaining-seat counter of every show.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons
	"fmt"
	"time"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ShowInventory is the locked view of a show used inside a booking
// transaction: everything needed to check availability and price seats.
type ShowInventory struct {
	ShowID         uint64
	BasePrice      uint32
	RemainingSeats uint32
	Capacity       uint32
	StartsAt       time.Time
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	if db == nil {
		panic("nil db passed to NewShowRepo")
	}
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new show with its remaining-seat counter initialised to
// the capacity of its screen.  The screen row is read under a shared lock
// in the same transaction so the capacity cannot change underneath the
// insert.  On success the generated ID and RemainingSeats are set on s.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var capacity uint32
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, status FROM screens WHERE id = ? LOCK IN SHARE MODE`, s.ScreenID,
	).Scan(&capacity, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScreenNotFound
		}
		return err
	}
	if status != model.ScreenActive {
		return ErrScreenInactive
	}

	const q = `INSERT INTO shows (movie_id, screen_id, starts_at, price_tier, base_price, remaining_seats)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.ScreenID, s.StartsAt.UTC(), s.PriceTier, s.BasePrice, capacity)
	if err != nil {
		switch {
		case isDuplicateKey(err):
			return ErrConflict
		case isMissingParent(err):
			return ErrMovieNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	s.ID = uint64(id)
	s.RemainingSeats = capacity
	return nil
}

const showDetailSelect = `SELECT s.id, s.movie_id, s.screen_id, s.starts_at, s.price_tier, s.base_price, s.remaining_seats,
       m.title, sc.name, sc.type, sc.capacity, t.id, t.name, t.city
  FROM shows s
  JOIN movies m    ON m.id = s.movie_id
  JOIN screens sc  ON sc.id = s.screen_id
  JOIN theatres t  ON t.id = sc.theatre_id`

func scanShowDetail(sc interface{ Scan(...any) error }) (model.ShowDetail, error) {
	var d model.ShowDetail
	err := sc.Scan(&d.ID, &d.MovieID, &d.ScreenID, &d.StartsAt, &d.PriceTier, &d.BasePrice, &d.RemainingSeats,
		&d.MovieTitle, &d.ScreenName, &d.ScreenType, &d.Capacity, &d.TheatreID, &d.TheatreName, &d.City)
	return d, err
}

// GetByID retrieves a show with its movie, screen and theatre.  It returns
// ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.ShowDetail, error) {
	d, err := scanShowDetail(r.db.QueryRowContext(ctx, showDetailSelect+` WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &d, nil
}

// LockTx reads the show's inventory with SELECT ... FOR UPDATE.  The row
// lock is held until tx ends, which serialises every booking, cancellation
// and reconciliation on the same show while leaving other shows free.
func (r *ShowRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (ShowInventory, error) {
	const q = `SELECT s.id, s.base_price, s.remaining_seats, sc.capacity, s.starts_at
               FROM shows s
               JOIN screens sc ON sc.id = s.screen_id
               WHERE s.id = ?
               FOR UPDATE`
	var inv ShowInventory
	err := tx.QueryRowContext(ctx, q, id).Scan(&inv.ShowID, &inv.BasePrice, &inv.RemainingSeats, &inv.Capacity, &inv.StartsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ShowInventory{}, ErrShowNotFound
		}
		return ShowInventory{}, err
	}
	return inv, nil
}

// DecrementSeatsTx subtracts n from the remaining-seat counter.  The guard in
// the WHERE clause keeps the counter from underflowing; when it does not
// match, ErrInsufficientSeats is returned.
func (r *ShowRepo) DecrementSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, n int) error {
	const q = `UPDATE shows SET remaining_seats = remaining_seats - ? WHERE id = ? AND remaining_seats >= ?`
	res, err := tx.ExecContext(ctx, q, n, id, n)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrInsufficientSeats
	}
	return nil
}

// IncrementSeatsTx adds n back to the remaining-seat counter.
func (r *ShowRepo) IncrementSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, n int) error {
	if n <= 0 {
		return nil
	}
	const q = `UPDATE shows SET remaining_seats = remaining_seats + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrShowNotFound
	}
	return nil
}

// SetRemainingTx overwrites the remaining-seat counter.
func (r *ShowRepo) SetRemainingTx(ctx context.Context, tx *sql.Tx, id uint64, remaining uint32) error {
	if _, err := tx.ExecContext(ctx, `UPDATE shows SET remaining_seats = ? WHERE id = ?`, remaining, id); err != nil {
		return fmt.Errorf("set remaining seats: %w", err)
	}
	return nil
}
