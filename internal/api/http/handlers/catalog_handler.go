package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// CatalogHandler exposes storefront reads and admin writes for the catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// ListProducts handles GET /products. Public; supports search and category
// filtering for the storefront's search-as-you-type widget.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page, perPage := pagination(c)
	filter := repository.ProductFilter{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("q"),
		ActiveOnly: true,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}

	products, err := h.catalog.ListProducts(c.UserContext(), filter)
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// CreateProduct handles POST /admin/products.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.catalog.CreateProduct(c.UserContext(), actor, productInput(req))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": productResponse(product)})
}

// UpdateProduct handles PUT /admin/products/:id.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.catalog.UpdateProduct(c.UserContext(), actor, c.Params("id"), productInput(req))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// DeleteProduct handles DELETE /admin/products/:id.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteProduct(c.UserContext(), actor, c.Params("id")); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

// ListCategories handles GET /categories. Public.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateCategory handles POST /admin/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// UpdateCategory handles PUT /admin/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.UpdateCategory(c.UserContext(), actor, c.Params("id"), req.Name, req.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("category", nil)
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

// DeleteCategory handles DELETE /admin/categories/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCategory(c.UserContext(), actor, c.Params("id")); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("category", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

func actorID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.User.ID, nil
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}
}

func productResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

func categoryResponse(c *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}
