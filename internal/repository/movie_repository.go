package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// MovieRepo manages the movies catalogue.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and assigns the generated ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if m.Status == "" {
		m.Status = model.MovieNowShowing
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, genre, language, duration_min, rating, status) VALUES (?, ?, ?, ?, ?, ?)`,
		m.Title, m.Genre, m.Language, m.DurationMin, m.Rating, m.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByStatus returns movies with the given status ordered by title.  An
// empty status lists everything that is not archived.
func (r *MovieRepo) ListByStatus(ctx context.Context, status string) ([]model.Movie, error) {
	q := `SELECT id, title, genre, language, duration_min, rating, status, created_at FROM movies`
	var args []any
	if status == "" {
		q += ` WHERE status <> 'archived'`
	} else {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.Language, &m.DurationMin, &m.Rating, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
