package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

const secret = "router-secret"

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newEcho() *echo.Echo {
	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterAuth(e, &handler.AuthHandler{}, secret)
	RegisterPublic(e, &handler.PublicHandler{}, noop)
	RegisterCustomer(e, &handler.BookingHandler{}, secret, noop)
	RegisterAdmin(e, &handler.AdminHandler{}, secret)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newEcho()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"GET /v1/me",
		"GET /v1/shows",
		"GET /v1/shows/:id",
		"GET /v1/shows/:id/booked-seats",
		"GET /v1/movies",
		"GET /v1/theatres",
		"GET /v1/screens",
		"POST /v1/bookings",
		"POST /v1/bookings/quick",
		"POST /v1/bookings/cancel",
		"POST /v1/bookings/:id/cancel",
		"GET /v1/bookings/:id",
		"GET /v1/my-bookings",
		"POST /v1/admin/movies",
		"POST /v1/admin/theatres",
		"POST /v1/admin/screens",
		"POST /v1/admin/shows",
		"POST /v1/admin/shows/:id/reconcile",
		"GET /v1/admin/bookings",
	} {
		assert.True(t, have[want], want)
	}
}

func TestBookingRequiresToken(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	e := newEcho()
	at, err := utils.NewAccessToken(secret, 3, model.RoleCustomer, 5)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/bookings", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
