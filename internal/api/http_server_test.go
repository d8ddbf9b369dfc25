package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	t       *testing.T
	db      *database.DB
	handler http.Handler
}

func newTestAPI(t *testing.T, rateLimit config.APIRateLimitConfig) *testAPI {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := func() time.Time { return testNow }
	bus := events.NewEventBus(&logger)
	bookings := service.NewBookingService(db, bus, &logger).WithClock(clock)
	svc := Services{
		Bookings: bookings,
		Items:    service.NewItemService(db, bookings, bus, &logger).WithClock(clock),
		Users:    service.NewUserService(db, &logger),
		Requests: service.NewRequestService(db, &logger).WithClock(clock),
	}
	pagination := config.PaginationConfig{BookingsSize: 10, ItemsSize: 5, RequestsSize: 5, MaxExportRows: 100}
	srv := NewHTTPServer(config.APIConfig{RateLimit: rateLimit}, pagination, svc, db, &logger)
	return &testAPI{t: t, db: db, handler: srv.Handler()}
}

func (a *testAPI) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(models.UserIDHeader, fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func (a *testAPI) createUser(name, email string) int64 {
	rec := a.do(http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[userResponse](a.t, rec).ID
}

func (a *testAPI) createItem(ownerID int64, name string, available bool) int64 {
	rec := a.do(http.MethodPost, "/items", ownerID, map[string]any{
		"name": name, "description": name + " description", "available": available,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[itemResponse](a.t, rec).ID
}

func (a *testAPI) createBooking(bookerID, itemID int64, start, end time.Duration) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  testNow.Add(start).Format(models.TimestampLayout),
		"end":    testNow.Add(end).Format(models.TimestampLayout),
	})
}

func TestBookingFlow(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	owner := a.createUser("Owner", "owner@example.com")
	booker := a.createUser("Booker", "booker@example.com")
	stranger := a.createUser("Stranger", "stranger@example.com")
	item := a.createItem(owner, "Drill", true)

	rec := a.createBooking(booker, item, time.Hour, 2*time.Hour)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[bookingResponse](t, rec)
	assert.Equal(t, "WAITING", created.Status)
	assert.Equal(t, booker, created.Booker.ID)
	assert.Equal(t, "Drill", created.Item.Name)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "2025-06-15T13:00:00", raw["start"])

	rec = a.do(http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", created.ID), booker, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "booker cannot decide")

	rec = a.do(http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", created.ID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", decode[bookingResponse](t, rec).Status)

	rec = a.do(http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=false", created.ID), owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "already decided")

	rec = a.do(http.MethodGet, fmt.Sprintf("/bookings/%d", created.ID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, fmt.Sprintf("/bookings/%d", created.ID), owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/bookings?state=FUTURE", booker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bookingResponse](t, rec), 1)

	rec = a.do(http.MethodGet, "/bookings/owner", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bookingResponse](t, rec), 1)

	rec = a.do(http.MethodGet, fmt.Sprintf("/items/%d", item), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[itemViewResponse](t, rec)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, created.ID, view.NextBooking.ID)
	assert.Nil(t, view.LastBooking)

	rec = a.do(http.MethodGet, fmt.Sprintf("/items/%d", item), booker, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Nil(t, raw["nextBooking"])
	assert.Equal(t, []any{}, raw["comments"])
}

func TestBookingErrors(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	owner := a.createUser("Owner", "owner@example.com")
	booker := a.createUser("Booker", "booker@example.com")
	item := a.createItem(owner, "Drill", true)
	hidden := a.createItem(owner, "Saw", false)

	tests := []struct {
		name   string
		rec    *httptest.ResponseRecorder
		status int
	}{
		{"self booking", a.createBooking(owner, item, time.Hour, 2*time.Hour), http.StatusConflict},
		{"unavailable", a.createBooking(booker, hidden, time.Hour, 2*time.Hour), http.StatusBadRequest},
		{"bad interval", a.createBooking(booker, item, 2*time.Hour, time.Hour), http.StatusBadRequest},
		{"unknown item", a.createBooking(booker, 999, time.Hour, 2*time.Hour), http.StatusNotFound},
		{"unknown user", a.createBooking(999, item, time.Hour, 2*time.Hour), http.StatusNotFound},
		{"missing header", a.do(http.MethodGet, "/bookings", 0, nil), http.StatusBadRequest},
		{"missing body fields", a.do(http.MethodPost, "/bookings", booker, map[string]any{"itemId": item}), http.StatusBadRequest},
		{"bad approved flag", a.do(http.MethodPatch, "/bookings/1?approved=maybe", owner, nil), http.StatusBadRequest},
		{"bad id", a.do(http.MethodGet, "/bookings/abc", owner, nil), http.StatusBadRequest},
		{"bad page", a.do(http.MethodGet, "/bookings?from=-1", booker, nil), http.StatusBadRequest},
		{"non numeric size", a.do(http.MethodGet, "/bookings?size=x", booker, nil), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.rec.Code, tt.rec.Body.String())
			assert.NotEmpty(t, errorMessage(t, tt.rec))
		})
	}
}

func TestUnsupportedState(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	booker := a.createUser("Booker", "booker@example.com")

	for _, state := range []string{"UNSUPPORTED_STATUS", "APPROVED", "all"} {
		rec := a.do(http.MethodGet, "/bookings/owner?state="+state, booker, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", errorMessage(t, rec))
	}
}

func TestItemsAndComments(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	owner := a.createUser("Owner", "owner@example.com")
	booker := a.createUser("Booker", "booker@example.com")
	item := a.createItem(owner, "Drill", true)
	a.createItem(owner, "Ladder", true)

	rec := a.do(http.MethodPatch, fmt.Sprintf("/items/%d", item), booker, map[string]any{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, fmt.Sprintf("/items/%d", item), owner, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[itemResponse](t, rec).Available)

	rec = a.do(http.MethodGet, "/items/search?text=LADD", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]itemResponse](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "Ladder", found[0].Name)

	rec = a.do(http.MethodGet, "/items/search?text=", 0, nil)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = a.do(http.MethodGet, "/items?from=0&size=1", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]itemViewResponse](t, rec), 1)

	rec = a.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item), booker, map[string]string{"text": "nice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "has not rented or rental period not yet ended", errorMessage(t, rec))

	past := &models.Booking{
		Start: testNow.Add(-48 * time.Hour), End: testNow.Add(-24 * time.Hour),
		ItemID: item, BookerID: booker, Status: models.StatusApproved, CreatedAt: testNow,
	}
	require.NoError(t, a.db.CreateBooking(context.Background(), past))

	rec = a.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item), booker, map[string]string{"text": "nice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	comment := decode[commentResponse](t, rec)
	assert.Equal(t, "Booker", comment.AuthorName)
	assert.Equal(t, "nice", comment.Text)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/items/%d", item), booker, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodDelete, fmt.Sprintf("/items/%d", item), owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, fmt.Sprintf("/items/%d", item), owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersEndpoints(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	id := a.createUser("Ann", "ann@example.com")

	rec := a.do(http.MethodPost, "/users", 0, map[string]string{"name": "Dup", "email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPatch, fmt.Sprintf("/users/%d", id), 0, map[string]string{"name": "Anna"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Anna", decode[userResponse](t, rec).Name)

	rec = a.do(http.MethodGet, "/users", 0, nil)
	assert.Len(t, decode[[]userResponse](t, rec), 1)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/users/%d", id), 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, fmt.Sprintf("/users/%d", id), 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/users", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty body")
}

func TestRequestsEndpoints(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	owner := a.createUser("Owner", "owner@example.com")
	asker := a.createUser("Asker", "asker@example.com")

	rec := a.do(http.MethodPost, "/requests", asker, map[string]string{"description": "need a kayak"})
	require.Equal(t, http.StatusOK, rec.Code)
	req := decode[itemRequestResponse](t, rec)
	assert.Equal(t, "2025-06-15T12:00:00", req.Created.Format(models.TimestampLayout))

	rec = a.do(http.MethodPost, "/items", owner, map[string]any{
		"name": "Kayak", "description": "Blue kayak", "available": true, "requestId": req.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/requests", asker, nil)
	own := decode[[]itemRequestResponse](t, rec)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, "Kayak", own[0].Items[0].Name)

	rec = a.do(http.MethodGet, "/requests/all?from=0&size=5", owner, nil)
	assert.Len(t, decode[[]itemRequestResponse](t, rec), 1)
	rec = a.do(http.MethodGet, "/requests/all", asker, nil)
	assert.Empty(t, decode[[]itemRequestResponse](t, rec))

	rec = a.do(http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, "/requests/999", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportOwnerBookings(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	owner := a.createUser("Owner", "owner@example.com")
	booker := a.createUser("Booker", "booker@example.com")
	item := a.createItem(owner, "Drill", true)
	require.Equal(t, http.StatusOK, a.createBooking(booker, item, time.Hour, 2*time.Hour).Code)

	rec := a.do(http.MethodGet, "/bookings/owner/export", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHealthAndMiddleware(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})

	rec := a.do(http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = a.do(http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	out := httptest.NewRecorder()
	a.handler.ServeHTTP(out, req)
	assert.Equal(t, "fixed-id", out.Header().Get(RequestIDHeader))

	require.NoError(t, a.db.Close())
	rec = a.do(http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{})
	require.NoError(t, a.db.Close())

	rec := a.do(http.MethodGet, "/users", 0, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
}

func TestRateLimit(t *testing.T) {
	a := newTestAPI(t, config.APIRateLimitConfig{RPS: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", 1, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", 1, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, a.do(http.MethodGet, "/healthz", 1, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", 2, nil).Code, "separate bucket per user")
}
