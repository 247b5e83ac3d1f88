package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"rentals/internal/domain"
	"rentals/internal/lock"
	"rentals/internal/pricing"
	"rentals/internal/repository"
)

const defaultLockTTL = 10 * time.Second

type Service struct {
	bookings BookingRepository
	products ProductRepository
	locker   lock.Locker
	engine   *pricing.Engine
	notifs   NotificationSender
	lockTTL  time.Duration
	now      func() time.Time
}

func NewService(
	bookings BookingRepository,
	products ProductRepository,
	locker lock.Locker,
	engine *pricing.Engine,
	notifs NotificationSender,
	lockTTL time.Duration,
) *Service {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Service{
		bookings: bookings,
		products: products,
		locker:   locker,
		engine:   engine,
		notifs:   notifs,
		lockTTL:  lockTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Quote prices a candidate window against the product's current bookings.
// An occupied slot is reported in the result, not as an error.
func (s *Service) Quote(ctx context.Context, productID int64, w pricing.Window) (*QuoteResult, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookings.ListWindows(ctx, product.ID, domain.BlockingStatuses, 0)
	if err != nil {
		return nil, err
	}

	q, err := s.engine.Quote(pricing.QuoteRequest{
		Rates:    product.RateCard(),
		Window:   w,
		Existing: existing,
		Now:      s.now(),
	})
	if slot := pricing.AsSlotUnavailableError(err); slot != nil {
		next := slot.NextAvailableDate
		return &QuoteResult{Available: false, NextAvailableDate: &next}, nil
	}
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Available: true, Quote: q}, nil
}

// CreateBooking recomputes the quote under the product lock and stores a
// pending booking. A client total that drifts from the server total by a cent
// or more is rejected.
func (s *Service) CreateBooking(ctx context.Context, renterID string, in CreateBookingInput) (*domain.Booking, error) {
	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID == renterID {
		return nil, ErrSelfBooking
	}
	if err := pricing.ValidateWindow(in.Window, s.now()); err != nil {
		return nil, err
	}

	b, err := s.createLocked(ctx, product, renterID, in)
	if err != nil {
		return nil, err
	}

	// sent after the product lock is released
	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(ctx, b); err != nil {
			log.Printf("notify_failed event=booking.created booking_id=%d error=%v", b.ID, err)
		}
	}

	return b, nil
}

func (s *Service) createLocked(ctx context.Context, product *domain.Product, renterID string, in CreateBookingInput) (*domain.Booking, error) {
	release, err := s.locker.Acquire(ctx, lock.ProductKey(product.ID), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock product %d: %w", product.ID, err)
	}
	defer release()

	existing, err := s.bookings.ListWindows(ctx, product.ID, domain.BlockingStatuses, 0)
	if err != nil {
		return nil, err
	}

	q, err := s.engine.Quote(pricing.QuoteRequest{
		Rates:    product.RateCard(),
		Window:   in.Window,
		Existing: existing,
		Now:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	if in.QuotedTotal != nil && pricing.Round2(math.Abs(*in.QuotedTotal-q.Total)) >= 0.01 {
		return nil, &QuoteMismatchError{Submitted: *in.QuotedTotal, Quote: q}
	}

	b := &domain.Booking{
		ProductID: product.ID,
		RenterID:  renterID,
		OwnerID:   product.OwnerID,
		StartDate: in.Window.Start.UTC(),
		EndDate:   in.Window.End.UTC(),
		Notes:     in.Notes,
		Status:    domain.BookingPending,
		Pricing:   domain.PricingFromQuote(q),
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrOverbooking
		}
		return nil, err
	}
	return b, nil
}

// GetBookingStatus reports whether the product is rented, preparing or free
// right now.
func (s *Service) GetBookingStatus(ctx context.Context, productID int64) (pricing.StatusReport, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return pricing.StatusReport{}, err
	}

	existing, err := s.bookings.ListWindows(ctx, product.ID, domain.BlockingStatuses, 0)
	if err != nil {
		return pricing.StatusReport{}, err
	}
	return s.engine.Status(existing, s.now()), nil
}

func (s *Service) ListRenterBookings(ctx context.Context, renterID string, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByRenter(ctx, renterID, limit, offset)
}

func (s *Service) ListOwnerBookings(ctx context.Context, ownerID string, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID, limit, offset)
}

// UpdateStatus lets the product owner accept or reject a pending booking.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, actorID string, newStatus domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	switch newStatus {
	case domain.BookingAccepted:
		if err := s.acceptLocked(ctx, b); err != nil {
			return nil, err
		}
	case domain.BookingRejected:
		if err := s.transition(ctx, b, newStatus, ""); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated.RenterID, updated)
	return updated, nil
}

// acceptLocked re-checks the accepted bookings of the product and accepts b
// while holding the product lock.
func (s *Service) acceptLocked(ctx context.Context, b *domain.Booking) error {
	release, err := s.locker.Acquire(ctx, lock.ProductKey(b.ProductID), s.lockTTL)
	if err != nil {
		return fmt.Errorf("lock product %d: %w", b.ProductID, err)
	}
	defer release()

	accepted, err := s.bookings.ListWindows(ctx, b.ProductID, []domain.BookingStatus{domain.BookingAccepted}, b.ID)
	if err != nil {
		return err
	}
	if !pricing.CheckAvailability(accepted, b.Window()).Available {
		return ErrOverbooking
	}
	return s.transition(ctx, b, domain.BookingAccepted, "")
}

// Cancel withdraws a pending or accepted booking before it starts.
func (s *Service) Cancel(ctx context.Context, bookingID int64, actorID, reason string) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != actorID {
		return nil, ErrForbidden
	}
	if !b.Status.Blocking() || !s.now().Before(b.StartDate) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.transition(ctx, b, domain.BookingCancelled, reason); err != nil {
		return nil, err
	}

	updated, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated.OwnerID, updated)
	return updated, nil
}

// SweepLifecycle expires pending bookings that were never answered and
// completes accepted bookings that have ended.
func (s *Service) SweepLifecycle(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	expired, err := s.bookings.ExpirePending(ctx, now)
	if err != nil {
		return res, fmt.Errorf("expire pending: %w", err)
	}
	res.Expired = expired

	completed, err := s.bookings.CompleteFinished(ctx, now)
	if err != nil {
		return res, fmt.Errorf("complete finished: %w", err)
	}
	res.Completed = completed

	return res, nil
}

func (s *Service) transition(ctx context.Context, b *domain.Booking, to domain.BookingStatus, reason string) error {
	err := s.bookings.UpdateStatus(ctx, b.ID, b.Status, to, reason)
	if errors.Is(err, repository.ErrConflict) {
		// Either the status moved underneath us or the overlap constraint fired.
		if to == domain.BookingAccepted {
			return ErrOverbooking
		}
		return ErrInvalidStatusTransition
	}
	return err
}

func (s *Service) notifyStatus(ctx context.Context, recipientID string, b *domain.Booking) {
	if s.notifs == nil {
		return
	}
	if err := s.notifs.NotifyBookingStatusChanged(ctx, recipientID, b); err != nil {
		log.Printf("notify_failed event=booking.status_changed booking_id=%d error=%v", b.ID, err)
	}
}

func (s *Service) loadProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *Service) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return b, err
}
