package domain

import (
	"time"

	"rentals/internal/pricing"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingExpired   BookingStatus = "expired"
)

// BlockingStatuses hold a product's slot.
var BlockingStatuses = []BookingStatus{BookingPending, BookingAccepted}

func (s BookingStatus) Blocking() bool {
	return s == BookingPending || s == BookingAccepted
}

// Pricing is the quote attached to a booking when it was submitted.
type Pricing struct {
	Tier        pricing.Tier `json:"tier"`
	BasePrice   float64      `json:"basePrice"`
	TotalHours  int          `json:"totalHours"`
	TotalDays   int          `json:"totalDays"`
	Units       float64      `json:"units"`
	Subtotal    float64      `json:"subtotal"`
	TaxRate     float64      `json:"taxRate"`
	Tax         float64      `json:"tax"`
	PlatformFee float64      `json:"platformFee"`
	Total       float64      `json:"total"`
	Currency    string       `json:"currency"`
}

func PricingFromQuote(q *pricing.Quote) Pricing {
	return Pricing{
		Tier:        q.Tier,
		BasePrice:   q.BasePrice,
		TotalHours:  q.TotalHours,
		TotalDays:   q.TotalDays,
		Units:       q.Units,
		Subtotal:    q.Subtotal,
		TaxRate:     q.TaxRate,
		Tax:         q.Tax,
		PlatformFee: q.PlatformFee,
		Total:       q.Total,
		Currency:    q.Currency,
	}
}

type Booking struct {
	ID                 int64         `json:"id"`
	ProductID          int64         `json:"productId"`
	RenterID           string        `json:"renterId"`
	OwnerID            string        `json:"ownerId"`
	StartDate          time.Time     `json:"startDate"`
	EndDate            time.Time     `json:"endDate"`
	Notes              string        `json:"notes,omitempty"`
	Status             BookingStatus `json:"status"`
	Pricing            Pricing       `json:"pricing"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

func (b *Booking) Window() pricing.Window {
	return pricing.Window{Start: b.StartDate, End: b.EndDate}
}
