package handler

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/repository"
)

var showDetailCols = []string{
	"id", "movie_id", "screen_id", "starts_at", "price_tier", "base_price", "remaining_seats",
	"title", "name", "type", "capacity", "theatre_id", "theatre_name", "city",
}

func catalogueServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log, _ := test.NewNullLogger()

	pub := &PublicHandler{
		Shows:    repository.NewShowRepo(db),
		Seats:    repository.NewSeatBookingRepo(db),
		Movies:   repository.NewMovieRepo(db),
		Theatres: repository.NewTheatreRepo(db),
		Screens:  repository.NewScreenRepo(db),
		Log:      log,
	}
	adm := &AdminHandler{
		Shows:      repository.NewShowRepo(db),
		Screens:    repository.NewScreenRepo(db),
		Reconciler: fakeReconciler{},
		Log:        log,
	}
	e := echo.New()
	e.GET("/v1/shows", pub.SearchShows)
	e.GET("/v1/shows/:id", pub.GetShow)
	e.GET("/v1/shows/:id/booked-seats", pub.BookedSeats)
	e.POST("/v1/admin/shows", adm.CreateShow)
	e.POST("/v1/admin/screens", adm.CreateScreen)
	e.POST("/v1/admin/shows/:id/reconcile", adm.ReconcileShow)
	return e, mock
}

type fakeReconciler struct{}

func (fakeReconciler) Reconcile(_ context.Context, showID uint64) (uint32, error) {
	return uint32(100 - showID), nil
}

func TestGetShow(t *testing.T) {
	e, mock := catalogueServer(t)
	starts := time.Date(2026, 11, 1, 18, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(showDetailCols).
			AddRow(4, 2, 3, starts, "standard", 220, 98, "Dune", "Screen 1", "imax", 100, 1, "Regal", "Pune"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = ?")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(showDetailCols))

	rec := send(e, http.MethodGet, "/v1/shows/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Dune", body["movie_title"])
	assert.Equal(t, float64(98), body["remaining_seats"])
	assert.Equal(t, float64(100), body["capacity"])

	rec = send(e, http.MethodGet, "/v1/shows/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(e, http.MethodGet, "/v1/shows/zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchShowsPaging(t *testing.T) {
	e, mock := catalogueServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WithArgs("%dune%", "2026-11-01").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(13))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.starts_at ASC, s.id ASC LIMIT ? OFFSET ?")).
		WithArgs("%dune%", "2026-11-01", showsPerPage, showsPerPage).
		WillReturnRows(sqlmock.NewRows(showDetailCols).
			AddRow(20, 2, 3, time.Now().Add(time.Hour), "standard", 220, 98, "Dune", "Screen 1", "imax", 100, 1, "Regal", "Pune"))

	rec := send(e, http.MethodGet, "/v1/shows?movie=Dune&date=2026-11-01&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(13), body["total"])
	assert.Equal(t, float64(2), body["pages"])
	assert.Equal(t, float64(2), body["page"])
	assert.Len(t, body["items"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())

	rec = send(e, http.MethodGet, "/v1/shows?date=01-11-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookedSeats(t *testing.T) {
	e, mock := catalogueServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seat_code FROM seat_bookings")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}).AddRow("A1").AddRow("B2"))

	rec := send(e, http.MethodGet, "/v1/shows/4/booked-seats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"show_id":4,"booked_seats":["A1","B2"]}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShowInitialisesInventory(t *testing.T) {
	e, mock := catalogueServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity, status FROM screens")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "status"}).AddRow(120, "active"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shows")).
		WithArgs(2, 3, time.Date(2026, 11, 1, 13, 0, 0, 0, time.UTC), "premium", 300, 120).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	rec := send(e, http.MethodPost, "/v1/admin/shows",
		`{"movie_id":2,"screen_id":3,"starts_at":"2026-11-01T18:30:00+05:30","price_tier":"premium","base_price":300}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(9), body["id"])
	assert.Equal(t, float64(120), body["remaining_seats"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShowRejects(t *testing.T) {
	e, mock := catalogueServer(t)

	rec := send(e, http.MethodPost, "/v1/admin/shows", `{"movie_id":2,"screen_id":3,"starts_at":"tomorrow","base_price":300}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity, status FROM screens")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "status"}).AddRow(120, "inactive"))
	mock.ExpectRollback()

	rec = send(e, http.MethodPost, "/v1/admin/shows",
		`{"movie_id":2,"screen_id":3,"starts_at":"2026-11-01T18:30:00Z","base_price":300}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileShow(t *testing.T) {
	e, _ := catalogueServer(t)
	rec := send(e, http.MethodPost, "/v1/admin/shows/4/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"show_id":4,"remaining_seats":96}`, rec.Body.String())
}
