package repository

import (
	"context"
	"time"

	"rentals/internal/domain"
	"rentals/internal/pricing"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type pricingColumns struct {
	Tier        string  `gorm:"column:tier"`
	BasePrice   float64 `gorm:"column:base_price"`
	TotalHours  int     `gorm:"column:total_hours"`
	TotalDays   int     `gorm:"column:total_days"`
	Units       float64 `gorm:"column:units"`
	Subtotal    float64 `gorm:"column:subtotal"`
	TaxRate     float64 `gorm:"column:tax_rate"`
	Tax         float64 `gorm:"column:tax"`
	PlatformFee float64 `gorm:"column:platform_fee"`
	Total       float64 `gorm:"column:total"`
	Currency    string  `gorm:"column:currency"`
}

type bookingModel struct {
	ID                 int64          `gorm:"column:id;primaryKey"`
	ProductID          int64          `gorm:"column:product_id;index:idx_bookings_product_start;not null"`
	RenterID           string         `gorm:"column:renter_id;index;not null"`
	OwnerID            string         `gorm:"column:owner_id;index;not null"`
	StartDate          time.Time      `gorm:"column:start_date;index:idx_bookings_product_start;not null"`
	EndDate            time.Time      `gorm:"column:end_date;not null"`
	Notes              *string        `gorm:"column:notes;type:text"`
	Status             string         `gorm:"column:status;index;not null"`
	Pricing            pricingColumns `gorm:"embedded;embeddedPrefix:pricing_"`
	CancellationReason *string        `gorm:"column:cancellation_reason;type:text"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:        m.ID,
		ProductID: m.ProductID,
		RenterID:  m.RenterID,
		OwnerID:   m.OwnerID,
		StartDate: m.StartDate.UTC(),
		EndDate:   m.EndDate.UTC(),
		Notes:     deref(m.Notes),
		Status:    domain.BookingStatus(m.Status),
		Pricing: domain.Pricing{
			Tier:        pricing.Tier(m.Pricing.Tier),
			BasePrice:   m.Pricing.BasePrice,
			TotalHours:  m.Pricing.TotalHours,
			TotalDays:   m.Pricing.TotalDays,
			Units:       m.Pricing.Units,
			Subtotal:    m.Pricing.Subtotal,
			TaxRate:     m.Pricing.TaxRate,
			Tax:         m.Pricing.Tax,
			PlatformFee: m.Pricing.PlatformFee,
			Total:       m.Pricing.Total,
			Currency:    m.Pricing.Currency,
		},
		CancellationReason: deref(m.CancellationReason),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:        b.ID,
		ProductID: b.ProductID,
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		StartDate: b.StartDate.UTC(),
		EndDate:   b.EndDate.UTC(),
		Notes:     optional(b.Notes),
		Status:    string(b.Status),
		Pricing: pricingColumns{
			Tier:        string(b.Pricing.Tier),
			BasePrice:   b.Pricing.BasePrice,
			TotalHours:  b.Pricing.TotalHours,
			TotalDays:   b.Pricing.TotalDays,
			Units:       b.Pricing.Units,
			Subtotal:    b.Pricing.Subtotal,
			TaxRate:     b.Pricing.TaxRate,
			Tax:         b.Pricing.Tax,
			PlatformFee: b.Pricing.PlatformFee,
			Total:       b.Pricing.Total,
			Currency:    b.Pricing.Currency,
		},
		CancellationReason: optional(b.CancellationReason),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, mapError(err)
	}
	return toDomainBooking(m), nil
}

// ListWindows returns the reservation windows of a product held by bookings in
// one of statuses, ordered by start. excludeID skips one booking (0 skips none).
func (r *BookingRepository) ListWindows(ctx context.Context, productID int64, statuses []domain.BookingStatus, excludeID int64) ([]pricing.Window, error) {
	var rows []bookingModel
	q := r.db.WithContext(ctx).
		Select("start_date", "end_date").
		Where("product_id = ?", productID).
		Where("status IN ?", statusStrings(statuses))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]pricing.Window, 0, len(rows))
	for _, m := range rows {
		out = append(out, pricing.Window{Start: m.StartDate.UTC(), End: m.EndDate.UTC()})
	}
	return out, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "renter_id = ?", renterID, limit, offset)
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "owner_id = ?", ownerID, limit, offset)
}

func (r *BookingRepository) list(ctx context.Context, cond string, arg any, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatus moves a booking from one status to another. It reports
// ErrConflict when the booking is no longer in from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) error {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return mapError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// ExpirePending marks pending bookings whose start has passed as expired.
func (r *BookingRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	return r.sweep(ctx, domain.BookingPending, domain.BookingExpired, "start_date <= ?", now.UTC())
}

// CompleteFinished marks accepted bookings whose end has passed as completed.
func (r *BookingRepository) CompleteFinished(ctx context.Context, now time.Time) (int64, error) {
	return r.sweep(ctx, domain.BookingAccepted, domain.BookingCompleted, "end_date <= ?", now.UTC())
}

func (r *BookingRepository) sweep(ctx context.Context, from, to domain.BookingStatus, cond string, at time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("status = ?", string(from)).
		Where(cond, at).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}
