package booking

import (
	"strings"
	"time"

	"rentals/internal/domain"
	"rentals/internal/pricing"
)

const dateLayout = "2006-01-02"

type QuoteRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ClientPricing struct {
	Total *float64 `json:"total"`
}

type CreateBookingRequest struct {
	ProductID int64          `json:"productId" binding:"required,gt=0"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Notes     string         `json:"notes" binding:"max=1000"`
	Pricing   *ClientPricing `json:"pricing"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateBookingInput is a parsed CreateBookingRequest.
type CreateBookingInput struct {
	ProductID   int64
	Window      pricing.Window
	Notes       string
	QuotedTotal *float64
}

type QuoteResult struct {
	Available         bool           `json:"available"`
	NextAvailableDate *time.Time     `json:"nextAvailableDate"`
	Quote             *pricing.Quote `json:"quote"`
}

type SweepResult struct {
	Expired   int64 `json:"expired"`
	Completed int64 `json:"completed"`
}

// BookingResponse is the submitted booking payload.
type BookingResponse struct {
	ID        int64                `json:"id"`
	ProductID int64                `json:"productId"`
	RenterID  string               `json:"renterId"`
	OwnerID   string               `json:"ownerId"`
	StartDate time.Time            `json:"startDate"`
	EndDate   time.Time            `json:"endDate"`
	Notes     string               `json:"notes,omitempty"`
	Pricing   domain.Pricing       `json:"pricing"`
	Status    domain.BookingStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Notes:     b.Notes,
		Pricing:   b.Pricing,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

// parseWindow accepts RFC 3339 instants or bare dates (UTC midnight). Empty
// values stay zero so window validation can report them.
func parseWindow(start, end string) (pricing.Window, map[string]string) {
	var (
		w    pricing.Window
		errs map[string]string
	)
	fail := func(field string) {
		if errs == nil {
			errs = map[string]string{}
		}
		errs[field] = "must be an ISO 8601 date or timestamp"
	}

	var ok bool
	if w.Start, ok = parseInstant(start); !ok {
		fail("startDate")
	}
	if w.End, ok = parseInstant(end); !ok {
		fail("endDate")
	}
	return w, errs
}

func parseInstant(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
