package notify

import (
	"context"
	"log"

	"rentals/internal/domain"
)

// Notifier adapts the hub to the booking service's notification port.
// Offline users simply miss the event; bookings stay queryable over HTTP.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) NotifyBookingCreated(_ context.Context, b *domain.Booking) error {
	if !n.hub.SendToUser(b.OwnerID, newEvent(EventBookingCreated, b)) {
		log.Printf("notify_skipped event=%s user_id=%s booking_id=%d", EventBookingCreated, b.OwnerID, b.ID)
	}
	return nil
}

func (n *Notifier) NotifyBookingStatusChanged(_ context.Context, recipientID string, b *domain.Booking) error {
	if !n.hub.SendToUser(recipientID, newEvent(EventBookingStatusChanged, b)) {
		log.Printf("notify_skipped event=%s user_id=%s booking_id=%d", EventBookingStatusChanged, recipientID, b.ID)
	}
	return nil
}
