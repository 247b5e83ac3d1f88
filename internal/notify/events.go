package notify

import (
	"time"

	"rentals/internal/domain"
)

type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventPong                 EventType = "pong"
)

type Event struct {
	Type      EventType       `json:"type"`
	Booking   *domain.Booking `json:"booking,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func newEvent(t EventType, b *domain.Booking) Event {
	return Event{Type: t, Booking: b, Timestamp: time.Now().UTC()}
}
