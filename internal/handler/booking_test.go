package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/service"
)

type fakeBooker struct {
	bookReq   service.BookRequest
	countReq  service.CountRequest
	cancelled [2]uint64
	res       *service.BookingResult
	err       error
}

func (f *fakeBooker) Book(_ context.Context, req service.BookRequest) (*service.BookingResult, error) {
	f.bookReq = req
	return f.res, f.err
}

func (f *fakeBooker) BookByCount(_ context.Context, req service.CountRequest) (*service.BookingResult, error) {
	f.countReq = req
	return f.res, f.err
}

func (f *fakeBooker) Cancel(_ context.Context, bookingID, customerID uint64) error {
	f.cancelled = [2]uint64{bookingID, customerID}
	return f.err
}

type fakeReader struct {
	items []model.BookingDetail
	err   error
}

func (f *fakeReader) ListByCustomer(context.Context, uint64) ([]model.BookingDetail, error) {
	return f.items, f.err
}

func (f *fakeReader) GetForCustomer(_ context.Context, id, _ uint64) (*model.BookingDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

// asUser stands in for JWTAuth.
func asUser(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id != 0 {
				c.Set(middleware.CtxUserID, id)
			}
			return next(c)
		}
	}
}

func bookingServer(h *BookingHandler, uid uint64) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestID())
	g := e.Group("/v1", asUser(uid))
	g.POST("/bookings", h.Book)
	g.POST("/bookings/quick", h.QuickBook)
	g.POST("/bookings/cancel", h.CancelByBody)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.GET("/my-bookings", h.MyBookings)
	g.GET("/bookings/:id", h.GetBooking)
	return e
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func newBookingHandler(b *fakeBooker, r *fakeReader) *BookingHandler {
	log, _ := test.NewNullLogger()
	return NewBookingHandler(b, r, log)
}

func TestBookSuccess(t *testing.T) {
	b := &fakeBooker{res: &service.BookingResult{
		BookingID: 55, ShowID: 1, TotalAmount: 440, BookedSeats: []string{"A1", "B2"}, PaymentMethod: "upi",
	}}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings", `{"show_id":1,"selected_seats":["A1","B2"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(55), body["booking_id"])
	assert.Equal(t, float64(440), body["total_amount"])
	assert.Equal(t, []any{"A1", "B2"}, body["booked_seats"])

	assert.Equal(t, service.BookRequest{ShowID: 1, CustomerID: 7, SeatCodes: []string{"A1", "B2"}}, b.bookReq)
}

func TestBookErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", service.ValidationError{Field: "selected_seats", Msg: "no seats selected"}, http.StatusBadRequest, codeInvalid},
		{"unauthorized", service.UnauthorizedError{}, http.StatusUnauthorized, codeUnauthorized},
		{"not found", service.NotFoundError{Resource: "show"}, http.StatusNotFound, codeNotFound},
		{"conflict", service.ConflictError{Msg: "seats already booked", Seats: []string{"B2"}}, http.StatusConflict, codeConflict},
		{"internal", service.InternalError{Msg: "booking failed", Err: errors.New("deadlock")}, http.StatusInternalServerError, codeInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := bookingServer(newBookingHandler(&fakeBooker{err: tc.err}, &fakeReader{}), 7)
			rec := send(e, http.MethodPost, "/v1/bookings", `{"show_id":1,"selected_seats":["B2"]}`)
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tc.code, body["code"])
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["request_id"])
			assert.NotContains(t, body["error"], "deadlock")
		})
	}
}

func TestBookConflictListsSeats(t *testing.T) {
	b := &fakeBooker{err: service.ConflictError{Msg: "seats already booked", Seats: []string{"B2"}}}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings", `{"show_id":1,"selected_seats":["B2","C1"]}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "seats already booked", body["error"])
	assert.Equal(t, []any{"B2"}, body["seats"])
}

func TestBookMalformedBody(t *testing.T) {
	b := &fakeBooker{}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings", `{"show_id":"x"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, b.bookReq.ShowID)
}

func TestQuickBookPassesCount(t *testing.T) {
	b := &fakeBooker{res: &service.BookingResult{BookingID: 60, BookedSeats: []string{"A2", "A3"}}}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings/quick", `{"show_id":3,"seats":2,"payment_method":"cash"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.CountRequest{ShowID: 3, CustomerID: 7, Seats: 2, PaymentMethod: "cash"}, b.countReq)
}

func TestCancelRoutes(t *testing.T) {
	b := &fakeBooker{}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings/55/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, [2]uint64{55, 7}, b.cancelled)

	rec = send(e, http.MethodPost, "/v1/bookings/cancel", `{"booking_id":56}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]uint64{56, 7}, b.cancelled)

	rec = send(e, http.MethodPost, "/v1/bookings/abc/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelConflict(t *testing.T) {
	b := &fakeBooker{err: service.ConflictError{Msg: "booking cannot be cancelled"}}
	e := bookingServer(newBookingHandler(b, &fakeReader{}), 7)

	rec := send(e, http.MethodPost, "/v1/bookings/55/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	_, hasSeats := decode(t, rec)["seats"]
	assert.False(t, hasSeats)
}

func TestMyBookings(t *testing.T) {
	r := &fakeReader{items: []model.BookingDetail{
		{Booking: model.Booking{ID: 1, CustomerID: 7}, MovieTitle: "Dune", Seats: []string{"A1"}},
	}}
	e := bookingServer(newBookingHandler(&fakeBooker{}, r), 7)

	rec := send(e, http.MethodGet, "/v1/my-bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].(map[string]any)["movie_title"])

	rec = send(e, http.MethodGet, "/v1/bookings/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = send(e, http.MethodGet, "/v1/bookings/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	r.err = errors.New("db down")
	rec = send(e, http.MethodGet, "/v1/my-bookings", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestMyBookingsRequiresUser(t *testing.T) {
	e := bookingServer(newBookingHandler(&fakeBooker{}, &fakeReader{}), 0)
	rec := send(e, http.MethodGet, "/v1/my-bookings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
