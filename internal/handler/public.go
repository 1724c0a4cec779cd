package handler

// Public catalogue routes.  None of them require a token.

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// showsPerPage is the page size of the upcoming-shows listing.
const showsPerPage = 12

// PublicHandler aggregates repositories needed for unauthenticated browsing.
type PublicHandler struct {
	Shows    *repository.ShowRepo
	Seats    *repository.SeatBookingRepo
	Movies   *repository.MovieRepo
	Theatres *repository.TheatreRepo
	Screens  *repository.ScreenRepo
	Log      logrus.FieldLogger
}

// SearchShows lists upcoming shows filtered by movie title, theatre name
// and calendar date (YYYY-MM-DD, UTC).
func (h *PublicHandler) SearchShows(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
	}
	page := queryInt(c, "page", 1)
	q := repository.ShowSearchQuery{
		Movie:    strings.TrimSpace(c.QueryParam("movie")),
		Theatre:  strings.TrimSpace(c.QueryParam("theatre")),
		City:     strings.TrimSpace(c.QueryParam("city")),
		Date:     date,
		Page:     page,
		PageSize: showsPerPage,
	}
	items, total, err := h.Shows.SearchUpcoming(c.Request().Context(), q)
	if err != nil {
		h.Log.WithError(err).Error("search shows failed")
		return internalError(c)
	}
	pages := (total + showsPerPage - 1) / showsPerPage
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"pages":     pages,
		"page_size": showsPerPage,
	})
}

// GetShow returns one show with its movie, screen and theatre.
func (h *PublicHandler) GetShow(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid show id")
	}
	show, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return respondError(c, http.StatusNotFound, codeNotFound, "show not found", nil)
		}
		h.Log.WithError(err).WithField("show_id", id).Error("get show failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, show)
}

// BookedSeats lists the seat codes currently booked for a show.
func (h *PublicHandler) BookedSeats(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid show id")
	}
	codes, err := h.Seats.ListActive(c.Request().Context(), id)
	if err != nil {
		h.Log.WithError(err).WithField("show_id", id).Error("list booked seats failed")
		return internalError(c)
	}
	if codes == nil {
		codes = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"show_id": id, "booked_seats": codes})
}

// ListMovies lists movies that are now showing.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.MovieNowShowing
	}
	movies, err := h.Movies.ListByStatus(c.Request().Context(), status)
	if err != nil {
		h.Log.WithError(err).Error("list movies failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

func (h *PublicHandler) ListTheatres(c echo.Context) error {
	theatres, err := h.Theatres.List(c.Request().Context())
	if err != nil {
		h.Log.WithError(err).Error("list theatres failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": theatres})
}

func (h *PublicHandler) ListScreens(c echo.Context) error {
	screens, err := h.Screens.ListActive(c.Request().Context())
	if err != nil {
		h.Log.WithError(err).Error("list screens failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": screens})
}
