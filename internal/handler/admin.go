package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// Reconciler recomputes a show's remaining-seat counter.
type Reconciler interface {
	Reconcile(ctx context.Context, showID uint64) (uint32, error)
}

// AdminHandler serves catalogue management for the ADMIN role.
type AdminHandler struct {
	Movies     *repository.MovieRepo
	Theatres   *repository.TheatreRepo
	Screens    *repository.ScreenRepo
	Shows      *repository.ShowRepo
	Bookings   *repository.BookingRepo
	Reconciler Reconciler
	Log        logrus.FieldLogger
}

var movieStatuses = map[string]bool{
	model.MovieNowShowing: true,
	model.MovieUpcoming:   true,
	model.MovieArchived:   true,
}

// CreateMovie handles POST /admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var m model.Movie
	if err := c.Bind(&m); err != nil {
		return badRequest(c, "invalid body")
	}
	m.ID = 0
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return badRequest(c, "title is required")
	}
	if m.Status != "" && !movieStatuses[m.Status] {
		return badRequest(c, "invalid status")
	}
	if m.Rating < 0 || m.Rating > 10 {
		return badRequest(c, "rating must be between 0 and 10")
	}
	if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
		h.Log.WithError(err).Error("create movie failed")
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, m)
}

// CreateTheatre handles POST /admin/theatres.
func (h *AdminHandler) CreateTheatre(c echo.Context) error {
	var t model.Theatre
	if err := c.Bind(&t); err != nil {
		return badRequest(c, "invalid body")
	}
	t.ID = 0
	t.Name = strings.TrimSpace(t.Name)
	t.City = strings.TrimSpace(t.City)
	if t.Name == "" || t.City == "" {
		return badRequest(c, "name and city are required")
	}
	if err := h.Theatres.Create(c.Request().Context(), &t); err != nil {
		h.Log.WithError(err).Error("create theatre failed")
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, t)
}

// CreateScreen handles POST /admin/screens.
func (h *AdminHandler) CreateScreen(c echo.Context) error {
	var s model.Screen
	if err := c.Bind(&s); err != nil {
		return badRequest(c, "invalid body")
	}
	s.ID = 0
	s.Name = strings.TrimSpace(s.Name)
	if s.TheatreID == 0 || s.Name == "" {
		return badRequest(c, "theatre_id and name are required")
	}
	if s.Capacity == 0 {
		return badRequest(c, "capacity must be positive")
	}
	err := h.Screens.Create(c.Request().Context(), &s)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, s)
	case errors.Is(err, repository.ErrTheatreNotFound):
		return respondError(c, http.StatusNotFound, codeNotFound, "theatre not found", nil)
	case errors.Is(err, repository.ErrConflict):
		return respondError(c, http.StatusConflict, codeConflict, "screen name already used in this theatre", nil)
	}
	h.Log.WithError(err).Error("create screen failed")
	return internalError(c)
}

type createShowReq struct {
	MovieID   uint64 `json:"movie_id"`
	ScreenID  uint64 `json:"screen_id"`
	StartsAt  string `json:"starts_at"`
	PriceTier string `json:"price_tier"`
	BasePrice uint32 `json:"base_price"`
}

// CreateShow handles POST /admin/shows.  The new show starts with every
// seat of its screen available.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.MovieID == 0 || req.ScreenID == 0 {
		return badRequest(c, "movie_id and screen_id are required")
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return badRequest(c, "starts_at must be RFC3339")
	}
	if req.BasePrice == 0 {
		return badRequest(c, "base_price must be positive")
	}
	tier := strings.TrimSpace(req.PriceTier)
	if tier == "" {
		tier = "standard"
	}
	show := model.Show{
		MovieID:   req.MovieID,
		ScreenID:  req.ScreenID,
		StartsAt:  startsAt.UTC(),
		PriceTier: tier,
		BasePrice: req.BasePrice,
	}
	err = h.Shows.Create(c.Request().Context(), &show)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, show)
	case errors.Is(err, repository.ErrScreenNotFound):
		return respondError(c, http.StatusNotFound, codeNotFound, "screen not found", nil)
	case errors.Is(err, repository.ErrMovieNotFound):
		return respondError(c, http.StatusNotFound, codeNotFound, "movie not found", nil)
	case errors.Is(err, repository.ErrScreenInactive):
		return respondError(c, http.StatusConflict, codeConflict, "screen is not active", nil)
	case errors.Is(err, repository.ErrConflict):
		return respondError(c, http.StatusConflict, codeConflict, "screen already has a show at that time", nil)
	}
	h.Log.WithError(err).Error("create show failed")
	return internalError(c)
}

// ListBookings returns the most recent bookings across all customers.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	items, err := h.Bookings.ListRecent(c.Request().Context(), 100)
	if err != nil {
		h.Log.WithError(err).Error("list bookings failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ReconcileShow recomputes the remaining-seat counter of a show.
func (h *AdminHandler) ReconcileShow(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid show id")
	}
	remaining, err := h.Reconciler.Reconcile(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"show_id": id, "remaining_seats": remaining})
}
