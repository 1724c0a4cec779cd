package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/service"
)

// Booker is the booking transaction processor as seen by HTTP.
type Booker interface {
	Book(ctx context.Context, req service.BookRequest) (*service.BookingResult, error)
	BookByCount(ctx context.Context, req service.CountRequest) (*service.BookingResult, error)
	Cancel(ctx context.Context, bookingID, customerID uint64) error
}

// BookingReader lists a customer's own bookings.
type BookingReader interface {
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.BookingDetail, error)
	GetForCustomer(ctx context.Context, id, customerID uint64) (*model.BookingDetail, error)
}

// BookingHandler serves the customer booking routes.
type BookingHandler struct {
	Booker   Booker
	Bookings BookingReader
	Log      logrus.FieldLogger
}

func NewBookingHandler(b Booker, r BookingReader, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{Booker: b, Bookings: r, Log: log}
}

type bookReq struct {
	ShowID        uint64   `json:"show_id"`
	SelectedSeats []string `json:"selected_seats"`
	PaymentMethod string   `json:"payment_method"`
}

type quickBookReq struct {
	ShowID        uint64 `json:"show_id"`
	Seats         int    `json:"seats"`
	PaymentMethod string `json:"payment_method"`
}

type cancelReq struct {
	BookingID uint64 `json:"booking_id"`
}

type bookResp struct {
	Success bool `json:"success"`
	*service.BookingResult
}

// Book reserves the seats named in selected_seats.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := h.Booker.Book(c.Request().Context(), service.BookRequest{
		ShowID:        req.ShowID,
		CustomerID:    middleware.UserID(c),
		SeatCodes:     req.SelectedSeats,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookResp{Success: true, BookingResult: res})
}

// QuickBook reserves a number of seats picked by the server.
func (h *BookingHandler) QuickBook(c echo.Context) error {
	var req quickBookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := h.Booker.BookByCount(c.Request().Context(), service.CountRequest{
		ShowID:        req.ShowID,
		CustomerID:    middleware.UserID(c),
		Seats:         req.Seats,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookResp{Success: true, BookingResult: res})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	return h.cancel(c, id)
}

// CancelByBody handles POST /bookings/cancel with {"booking_id": n}.
func (h *BookingHandler) CancelByBody(c echo.Context) error {
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.cancel(c, req.BookingID)
}

func (h *BookingHandler) cancel(c echo.Context, id uint64) error {
	if err := h.Booker.Cancel(c.Request().Context(), id, middleware.UserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MyBookings lists the caller's bookings, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == 0 {
		return respondServiceError(c, service.UnauthorizedError{})
	}
	items, err := h.Bookings.ListByCustomer(c.Request().Context(), uid)
	if err != nil {
		h.Log.WithError(err).WithField("customer_id", uid).Error("list bookings failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking returns one of the caller's bookings.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	uid := middleware.UserID(c)
	if uid == 0 {
		return respondServiceError(c, service.UnauthorizedError{})
	}
	b, err := h.Bookings.GetForCustomer(c.Request().Context(), id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return respondError(c, http.StatusNotFound, codeNotFound, "booking not found", nil)
		}
		h.Log.WithError(err).WithField("booking_id", id).Error("get booking failed")
		return internalError(c)
	}
	return c.JSON(http.StatusOK, b)
}
