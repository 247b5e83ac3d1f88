package catalog

import (
	"context"
	"errors"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/pkg/validator"
	"rentals/internal/repository"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error)
	UpdateRates(ctx context.Context, id int64, hour, day, week *float64) (*domain.Product, error)
}

type Service struct {
	products ProductRepository
}

func NewService(products ProductRepository) *Service {
	return &Service{products: products}
}

/* ---------- PRODUCTS ---------- */

func (s *Service) CreateProduct(ctx context.Context, ownerID string, req CreateProductRequest) (*domain.Product, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if !req.rateCard().HasAny() {
		return nil, ErrNoRateTier
	}

	p := &domain.Product{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Location:     req.Location,
		PricePerHour: req.PricePerHour,
		PricePerDay:  req.PricePerDay,
		PricePerWeek: req.PricePerWeek,
		IsActive:     true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	return s.products.List(ctx, strings.ToLower(strings.TrimSpace(category)), limit, offset)
}

// UpdateRates replaces the price tiers. Only the owner may change them and at
// least one tier must remain.
func (s *Service) UpdateRates(ctx context.Context, productID int64, actorID string, req UpdateRatesRequest) (*domain.Product, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if !req.rateCard().HasAny() {
		return nil, ErrNoRateTier
	}

	updated, err := s.products.UpdateRates(ctx, productID, req.PricePerHour, req.PricePerDay, req.PricePerWeek)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}
