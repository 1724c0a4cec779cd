package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// TheatreRepo manages theatres.
type TheatreRepo struct {
	db *sql.DB
}

func NewTheatreRepo(db *sql.DB) *TheatreRepo { return &TheatreRepo{db: db} }

// Create inserts a theatre and assigns the generated ID.
func (r *TheatreRepo) Create(ctx context.Context, t *model.Theatre) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO theatres (name, city, address) VALUES (?, ?, ?)`, t.Name, t.City, t.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// List returns every theatre ordered by city then name.
func (r *TheatreRepo) List(ctx context.Context) ([]model.Theatre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, city, address, created_at FROM theatres ORDER BY city, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Theatre{}
	for rows.Next() {
		var t model.Theatre
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
