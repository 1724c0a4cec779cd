package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ScreenRepo manages screens.
type ScreenRepo struct {
	db *sql.DB
}

func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// Create inserts a screen.  A duplicate name inside the theatre yields
// ErrConflict and an unknown theatre yields ErrTheatreNotFound.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	if s.Status == "" {
		s.Status = model.ScreenActive
	}
	if s.Type == "" {
		s.Type = "standard"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO screens (theatre_id, name, type, capacity, status) VALUES (?, ?, ?, ?, ?)`,
		s.TheatreID, s.Name, s.Type, s.Capacity, s.Status)
	if err != nil {
		switch {
		case isDuplicateKey(err):
			return ErrConflict
		case isMissingParent(err):
			return ErrTheatreNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ListActive returns every active screen.
func (r *ScreenRepo) ListActive(ctx context.Context) ([]model.Screen, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, theatre_id, name, type, capacity, status FROM screens WHERE status = 'active' ORDER BY theatre_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Screen{}
	for rows.Next() {
		var s model.Screen
		if err := rows.Scan(&s.ID, &s.TheatreID, &s.Name, &s.Type, &s.Capacity, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
