package catalog

import "rentals/internal/pricing"

type CreateProductRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Category     string   `json:"category" validate:"max=100"`
	Location     string   `json:"location" validate:"max=200"`
	PricePerHour *float64 `json:"pricePerHour,omitempty" validate:"omitempty,gte=0"`
	PricePerDay  *float64 `json:"pricePerDay,omitempty" validate:"omitempty,gte=0"`
	PricePerWeek *float64 `json:"pricePerWeek,omitempty" validate:"omitempty,gte=0"`
}

func (r CreateProductRequest) rateCard() pricing.RateCard {
	return pricing.RateCard{PricePerHour: r.PricePerHour, PricePerDay: r.PricePerDay, PricePerWeek: r.PricePerWeek}
}

// UpdateRatesRequest replaces every tier; an omitted tier is cleared.
type UpdateRatesRequest struct {
	PricePerHour *float64 `json:"pricePerHour" validate:"omitempty,gte=0"`
	PricePerDay  *float64 `json:"pricePerDay" validate:"omitempty,gte=0"`
	PricePerWeek *float64 `json:"pricePerWeek" validate:"omitempty,gte=0"`
}

func (r UpdateRatesRequest) rateCard() pricing.RateCard {
	return pricing.RateCard{PricePerHour: r.PricePerHour, PricePerDay: r.PricePerDay, PricePerWeek: r.PricePerWeek}
}
