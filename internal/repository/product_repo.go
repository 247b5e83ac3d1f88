package repository

import (
	"context"
	"time"

	"rentals/internal/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	OwnerID      string    `gorm:"column:owner_id;index;not null"`
	Title        string    `gorm:"column:title;not null"`
	Description  *string   `gorm:"column:description;type:text"`
	Category     string    `gorm:"column:category;index"`
	Location     string    `gorm:"column:location"`
	PricePerHour *float64  `gorm:"column:price_per_hour"`
	PricePerDay  *float64  `gorm:"column:price_per_day"`
	PricePerWeek *float64  `gorm:"column:price_per_week"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

func toDomainProduct(m productModel) *domain.Product {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Product{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Description:  desc,
		Category:     m.Category,
		Location:     m.Location,
		PricePerHour: m.PricePerHour,
		PricePerDay:  m.PricePerDay,
		PricePerWeek: m.PricePerWeek,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toProductModel(p *domain.Product) productModel {
	var desc *string
	if p.Description != "" {
		v := p.Description
		desc = &v
	}

	return productModel{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  desc,
		Category:     p.Category,
		Location:     p.Location,
		PricePerHour: p.PricePerHour,
		PricePerDay:  p.PricePerDay,
		PricePerWeek: p.PricePerWeek,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m := toProductModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*p = *toDomainProduct(m)
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m productModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, mapError(err)
	}
	return toDomainProduct(m), nil
}

func (r *ProductRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{}).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var rows []productModel
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainProduct(m))
	}
	return out, nil
}

// UpdateRates replaces all three tiers, so a nil pointer clears a tier.
func (r *ProductRepository) UpdateRates(ctx context.Context, id int64, hour, day, week *float64) (*domain.Product, error) {
	tx := r.db.WithContext(ctx).Model(&productModel{ID: id}).Updates(map[string]any{
		"price_per_hour": hour,
		"price_per_day":  day,
		"price_per_week": week,
		"updated_at":     time.Now().UTC(),
	})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
