package booking

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentals/internal/domain"
	"rentals/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Set("role", c.GetHeader("X-Test-Role"))
	})
	NewHandler(f.svc).RegisterRoutes(api, protected)
	return r
}

func do(r *gin.Engine, method, path, user, role string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_CreateBooking(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).Return(nil, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCreated", mock.Anything, mock.Anything).Return(nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{
		"productId": 7,
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13T00:00:00Z",
		"pricing":   gin.H{"total": 3540},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var data struct {
		Booking BookingResponse `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(999), data.Booking.ID)
	assert.Equal(t, int64(7), data.Booking.ProductID)
	assert.Equal(t, "renter-1", data.Booking.RenterID)
	assert.Equal(t, domain.BookingPending, data.Booking.Status)
	assert.Equal(t, 3540.0, data.Booking.Pricing.Total)
	assert.Equal(t, day(10), data.Booking.StartDate)
}

func TestHandler_CreateBooking_AnyAuthenticatedRole(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).Return(nil, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCreated", mock.Anything, mock.Anything).Return(nil)
	r := newTestRouter(f)

	// an owner renting someone else's product
	w, _ := do(r, http.MethodPost, "/api/bookings", "owner-2", "owner", gin.H{
		"productId": 7,
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// but never their own
	w, env := do(r, http.MethodPost, "/api/bookings", "owner-1", "owner", gin.H{
		"productId": 7,
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_CreateBooking_QuoteMismatch(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).Return(nil, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{
		"productId": 7,
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13",
		"pricing":   gin.H{"total": 1},
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "QUOTE_MISMATCH", env.Error.Code)

	var details struct {
		Quote pricing.Quote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, 3540.0, details.Quote.Total)
}

func TestHandler_CreateBooking_Validation(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{
		"productId": 7,
		"startDate": "next tuesday",
		"endDate":   "2025-02-13",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "startDate")

	w, env = do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{"startDate": "2025-02-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_CreateBooking_SlotUnavailable(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).
		Return([]pricing.Window{{Start: day(10), End: day(15)}}, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{
		"productId": 7,
		"startDate": "2025-02-12",
		"endDate":   "2025-02-13",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_UNAVAILABLE", env.Error.Code)
	assert.JSONEq(t, `{"nextAvailableDate":"2025-02-15T00:00:00Z"}`, string(env.Error.Details))
}

func TestHandler_CreateBooking_RateUnavailable(t *testing.T) {
	f := newFixture(t)
	p := testProduct()
	p.PricePerDay = nil
	f.products.On("GetByID", mock.Anything, int64(7)).Return(p, nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).Return(nil, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/bookings", "renter-1", "renter", gin.H{
		"productId": 7,
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "RATE_UNAVAILABLE", env.Error.Code)
}

func TestHandler_Quote(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).Return(nil, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPost, "/api/products/7/quote", "", "", gin.H{
		"startDate": "2025-02-10",
		"endDate":   "2025-02-13",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var res QuoteResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Available)
	require.NotNil(t, res.Quote)
	assert.Equal(t, 540.0, res.Quote.Tax)
}

func TestHandler_BookingStatus(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(7)).Return(testProduct(), nil)
	f.bookings.On("ListWindows", mock.Anything, int64(7), domain.BlockingStatuses, int64(0)).
		Return([]pricing.Window{{Start: day(1), End: day(4)}}, nil)
	r := newTestRouter(f)

	w, _ := do(r, http.MethodGet, "/api/products/booking-status/7", "", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "rented", body["currentStatus"])
	assert.Equal(t, "2025-02-04T00:00:00Z", body["nextAvailableDate"])
	assert.NotEmpty(t, body["statusMessage"])
	assert.NotContains(t, body, "data")
}

func TestHandler_BookingStatus_NotFound(t *testing.T) {
	f := newFixture(t)
	f.products.On("GetByID", mock.Anything, int64(9)).Return(nil, ErrNotFound)
	r := newTestRouter(f)

	w, env := do(r, http.MethodGet, "/api/products/booking-status/9", "", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHandler_UpdateStatus_RequiresOwnerRole(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPatch, "/api/bookings/42/status", "renter-1", "renter", gin.H{"status": "accepted"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	f.bookings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandler_UpdateStatus_BadStatus(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPatch, "/api/bookings/42/status", "owner-1", "owner", gin.H{"status": "completed"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	f := newFixture(t)
	b := pendingBooking()
	b.Status = domain.BookingCancelled
	f.bookings.On("GetByID", mock.Anything, int64(42)).Return(b, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodPatch, "/api/bookings/42/status", "owner-1", "owner", gin.H{"status": "accepted"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)
}

func TestHandler_Cancel_NoBody(t *testing.T) {
	f := newFixture(t)
	cancelled := pendingBooking()
	cancelled.Status = domain.BookingCancelled
	f.bookings.On("GetByID", mock.Anything, int64(42)).Return(pendingBooking(), nil).Once()
	f.bookings.On("GetByID", mock.Anything, int64(42)).Return(cancelled, nil).Once()
	f.bookings.On("UpdateStatus", mock.Anything, int64(42), domain.BookingPending, domain.BookingCancelled, "").Return(nil)
	f.notifs.On("NotifyBookingStatusChanged", mock.Anything, "owner-1", cancelled).Return(nil)
	r := newTestRouter(f)

	w, _ := do(r, http.MethodPost, "/api/bookings/42/cancel", "renter-1", "renter", nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHandler_ListMyBookings(t *testing.T) {
	f := newFixture(t)
	f.bookings.On("ListByRenter", mock.Anything, "renter-1", 5, 10).Return([]domain.Booking{*pendingBooking()}, nil)
	r := newTestRouter(f)

	w, env := do(r, http.MethodGet, "/api/bookings/my?limit=5&offset=10", "renter-1", "renter", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Bookings []BookingResponse `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Bookings, 1)
	assert.Equal(t, int64(42), data.Bookings[0].ID)
}

func TestHandler_InternalError(t *testing.T) {
	f := newFixture(t)
	f.bookings.On("ListByOwner", mock.Anything, "owner-1", 20, 0).Return([]domain.Booking(nil), errors.New("db down"))
	r := newTestRouter(f)

	w, env := do(r, http.MethodGet, "/api/bookings/owner", "owner-1", "owner", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
