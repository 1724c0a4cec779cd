package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ShowSearchQuery defines filters & pagination for searching shows.
// Date is YYYY-MM-DD; empty filters are ignored.
type ShowSearchQuery struct {
	Movie    string
	Theatre  string
	City     string
	Date     string
	Page     int
	PageSize int
}

// SearchUpcoming lists shows that have not started yet, soonest first.
// It returns the page of rows and the total number of matches.
func (r *ShowRepo) SearchUpcoming(ctx context.Context, q ShowSearchQuery) ([]model.ShowDetail, int64, error) {
	where := []string{"s.starts_at >= UTC_TIMESTAMP()"}
	args := []any{}

	if q.Movie != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Movie)+"%")
	}
	if q.Theatre != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Theatre)+"%")
	}
	if q.City != "" {
		where = append(where, "LOWER(t.city) = ?")
		args = append(args, strings.ToLower(q.City))
	}
	if q.Date != "" {
		where = append(where, "DATE(s.starts_at) = ?")
		args = append(args, q.Date)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM shows s
		JOIN movies m   ON m.id = s.movie_id
		JOIN screens sc ON sc.id = s.screen_id
		JOIN theatres t ON t.id = sc.theatre_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := showDetailSelect + ` WHERE ` + cond + ` ORDER BY s.starts_at ASC, s.id ASC LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ShowDetail, 0, limit)
	for rows.Next() {
		d, err := scanShowDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
