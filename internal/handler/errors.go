package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/service"
)

// Error codes carried in the "code" field of every error body.
const (
	codeInvalid      = "invalid_request"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeInternal     = "internal"
)

// respondError writes {"success":false,"error","code","seats","request_id"}.
func respondError(c echo.Context, status int, code, msg string, seats []string) error {
	body := echo.Map{"success": false, "error": msg, "code": code}
	if len(seats) > 0 {
		body["seats"] = seats
	}
	if rid := middleware.RequestIDFrom(c); rid != "" {
		body["request_id"] = rid
	}
	return c.JSON(status, body)
}

// respondServiceError maps the service error kinds onto HTTP statuses.
// Anything unrecognised is a 500 with a generic message.
func respondServiceError(c echo.Context, err error) error {
	var (
		ve service.ValidationError
		ue service.UnauthorizedError
		ne service.NotFoundError
		ce service.ConflictError
		ie service.InternalError
	)
	switch {
	case errors.As(err, &ve):
		return respondError(c, http.StatusBadRequest, codeInvalid, ve.Error(), nil)
	case errors.As(err, &ue):
		return respondError(c, http.StatusUnauthorized, codeUnauthorized, ue.Error(), nil)
	case errors.As(err, &ne):
		return respondError(c, http.StatusNotFound, codeNotFound, ne.Error(), nil)
	case errors.As(err, &ce):
		return respondError(c, http.StatusConflict, codeConflict, ce.Msg, ce.Seats)
	case errors.As(err, &ie):
		return respondError(c, http.StatusInternalServerError, codeInternal, ie.Error(), nil)
	}
	return respondError(c, http.StatusInternalServerError, codeInternal, "internal error", nil)
}

func badRequest(c echo.Context, msg string) error {
	return respondError(c, http.StatusBadRequest, codeInvalid, msg, nil)
}

func internalError(c echo.Context) error {
	return respondError(c, http.StatusInternalServerError, codeInternal, "internal error", nil)
}
