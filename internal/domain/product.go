package domain

import (
	"time"

	"rentals/internal/pricing"
)

type Product struct {
	ID           int64     `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	PricePerHour *float64  `json:"pricePerHour,omitempty" validate:"omitempty,gte=0"`
	PricePerDay  *float64  `json:"pricePerDay,omitempty" validate:"omitempty,gte=0"`
	PricePerWeek *float64  `json:"pricePerWeek,omitempty" validate:"omitempty,gte=0"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Product) RateCard() pricing.RateCard {
	return pricing.RateCard{
		PricePerHour: p.PricePerHour,
		PricePerDay:  p.PricePerDay,
		PricePerWeek: p.PricePerWeek,
	}
}
