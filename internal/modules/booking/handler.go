package booking

import (
	"errors"
	"net/http"

	"rentals/internal/domain"
	"rentals/internal/lock"
	"rentals/internal/middleware"
	"rentals/internal/pkg/response"
	"rentals/internal/pkg/utils"
	"rentals/internal/pricing"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public product probes on public and the booking
// endpoints on protected, which must already carry JWT auth. Booking and
// cancelling are open to any signed-in user; ownership is checked by the service.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/products/booking-status/:id", h.GetBookingStatus)
	public.POST("/products/:id/quote", h.Quote)

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/my", h.ListMyBookings)
		bookings.GET("/owner", middleware.RequireAnyRole(string(domain.RoleOwner), string(domain.RoleAdmin)), h.ListOwnerBookings)
		bookings.PATCH("/:id/status", middleware.RequireAnyRole(string(domain.RoleOwner), string(domain.RoleAdmin)), h.UpdateStatus)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

func (h *Handler) GetBookingStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid product id", nil)
		return
	}

	report, err := h.service.GetBookingStatus(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Listing pages read these fields at the top level.
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"currentStatus":     report.Status,
		"statusMessage":     report.Message,
		"nextAvailableDate": report.NextAvailableDate,
	})
}

func (h *Handler) Quote(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid product id", nil)
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "Invalid request body", nil)
		return
	}
	w, fieldErrs := parseWindow(req.StartDate, req.EndDate)
	if fieldErrs != nil {
		response.Invalid(c, "Invalid booking dates", fieldErrs)
		return
	}

	res, err := h.service.Quote(c.Request.Context(), id, w)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "Invalid request body", nil)
		return
	}
	w, fieldErrs := parseWindow(req.StartDate, req.EndDate)
	if fieldErrs != nil {
		response.Invalid(c, "Invalid booking dates", fieldErrs)
		return
	}

	in := CreateBookingInput{
		ProductID: req.ProductID,
		Window:    w,
		Notes:     req.Notes,
	}
	if req.Pricing != nil {
		in.QuotedTotal = req.Pricing.Total
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetString("user_id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	limit, offset := utils.Pagination(c)
	items, err := h.service.ListRenterBookings(c.Request.Context(), c.GetString("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(items), "limit": limit, "offset": offset})
}

func (h *Handler) ListOwnerBookings(c *gin.Context) {
	limit, offset := utils.Pagination(c)
	items, err := h.service.ListOwnerBookings(c.Request.Context(), c.GetString("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(items), "limit": limit, "offset": offset})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid booking id", nil)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "status must be accepted or rejected", nil)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, c.GetString("user_id"), domain.BookingStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid booking id", nil)
		return
	}

	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, "Invalid request body", nil)
			return
		}
	}

	b, err := h.service.Cancel(c.Request.Context(), id, c.GetString("user_id"), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var mismatch *QuoteMismatchError

	switch {
	case errors.As(err, &mismatch):
		response.ErrorWithDetails(c, http.StatusConflict, response.CodeQuoteMismatch, "Price has changed, please review the new quote", gin.H{"quote": mismatch.Quote})
	case pricing.AsValidationError(err) != nil:
		response.Invalid(c, "Invalid booking dates", pricing.AsValidationError(err).Fields())
	case pricing.AsSlotUnavailableError(err) != nil:
		response.ErrorWithDetails(c, http.StatusConflict, response.CodeSlotUnavailable, "Product is already booked for the selected dates",
			gin.H{"nextAvailableDate": pricing.AsSlotUnavailableError(err).NextAvailableDate})
	case errors.Is(err, pricing.ErrRateUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeRateUnavailable, "Product has no price configured")
	case errors.Is(err, ErrSelfBooking):
		response.Invalid(c, "You cannot book your own product", nil)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Access denied")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "Booking cannot move to that status")
	case errors.Is(err, ErrOverbooking), errors.Is(err, lock.ErrNotAcquired):
		response.Error(c, http.StatusConflict, response.CodeBookingConflict, "Product is not available for the selected dates")
	default:
		response.Internal(c, err, "Something went wrong")
	}
}

func toBookingResponses(items []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for i := range items {
		out = append(out, toBookingResponse(&items[i]))
	}
	return out
}
