package booking

import (
	"context"
	"time"

	"rentals/internal/domain"
	"rentals/internal/pricing"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListWindows(ctx context.Context, productID int64, statuses []domain.BookingStatus, excludeID int64) ([]pricing.Window, error)
	ListByRenter(ctx context.Context, renterID string, limit, offset int) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	CompleteFinished(ctx context.Context, now time.Time) (int64, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// NotificationSender delivers booking events to the other party.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking) error
	NotifyBookingStatusChanged(ctx context.Context, recipientID string, b *domain.Booking) error
}
