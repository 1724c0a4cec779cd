package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/model"
)

// RegisterCustomer registers the booking endpoints.  They require a valid
// JWT for a CUSTOMER or ADMIN; limit throttles the write routes.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("/bookings", h.Book, limit)
	g.POST("/bookings/quick", h.QuickBook, limit)
	g.POST("/bookings/cancel", h.CancelByBody, limit)
	g.POST("/bookings/:id/cancel", h.Cancel, limit)
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/my-bookings", h.MyBookings)
}
