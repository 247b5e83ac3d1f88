package catalog

import (
	"errors"
	"net/http"

	"rentals/internal/domain"
	"rentals/internal/middleware"
	"rentals/internal/pkg/response"
	"rentals/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/products", h.ListProducts)
	public.GET("/products/:id", h.GetProduct)

	owners := protected.Group("/products")
	owners.Use(middleware.RequireAnyRole(string(domain.RoleOwner), string(domain.RoleAdmin)))
	{
		owners.POST("", h.CreateProduct)
		owners.PATCH("/:id/rates", h.UpdateRates)
	}
}

/* ---------- PRODUCT HANDLERS ---------- */

// ListProducts handles GET /api/products?category=&limit=&offset=
func (h *Handler) ListProducts(c *gin.Context) {
	limit, offset := utils.Pagination(c)

	items, err := h.service.ListProducts(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"products": items,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid product id", nil)
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": p})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "Invalid request body", nil)
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"product": p})
}

func (h *Handler) UpdateRates(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Invalid(c, "Invalid product id", nil)
		return
	}

	var req UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "Invalid request body", nil)
		return
	}

	p, err := h.service.UpdateRates(c.Request.Context(), id, c.GetString("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": p})
}

func handleError(c *gin.Context, err error) {
	var ve *ValidationError

	switch {
	case errors.As(err, &ve):
		response.Invalid(c, "Invalid product", ve.Fields)
	case errors.Is(err, ErrNoRateTier):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeRateUnavailable, "At least one of pricePerHour, pricePerDay or pricePerWeek is required")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Product not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "You don't own this product")
	default:
		response.Internal(c, err, "Something went wrong")
	}
}
