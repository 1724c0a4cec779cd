package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/movies", a.CreateMovie)
	g.POST("/theatres", a.CreateTheatre)
	g.POST("/screens", a.CreateScreen)
	g.POST("/shows", a.CreateShow)
	g.POST("/shows/:id/reconcile", a.ReconcileShow)
	g.GET("/bookings", a.ListBookings)
}
