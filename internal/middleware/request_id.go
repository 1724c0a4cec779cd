package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ctxRequestID = "request_id"

// RequestID propagates an incoming X-Request-ID or mints a new one, echoes
// it on the response and keeps it in the context for logs and error bodies.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			c.Set(ctxRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(c)
		}
	}
}

// RequestIDFrom returns the request ID stored by RequestID, if any.
func RequestIDFrom(c echo.Context) string {
	rid, _ := c.Get(ctxRequestID).(string)
	return rid
}
