package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/model"
)

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers /v1/auth and the authenticated profile route.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
}

// RegisterPublic registers the unauthenticated catalogue.  cache wraps the
// listing routes; the booked-seats map is never cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/shows", p.SearchShows, cache)
	e.GET("/v1/shows/:id", p.GetShow, cache)
	e.GET("/v1/shows/:id/booked-seats", p.BookedSeats)
	e.GET("/v1/movies", p.ListMovies, cache)
	e.GET("/v1/theatres", p.ListTheatres, cache)
	e.GET("/v1/screens", p.ListScreens, cache)
}
