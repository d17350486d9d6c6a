package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// CatalogService manages products and categories. Write operations record an
// audit entry attributed to the acting admin.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
}

// NewCatalogService builds the service.
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, audit repository.AuditRepository, dispatcher events.Dispatcher) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		audit:      audit,
		dispatcher: dispatcher,
	}
}

// ProductInput carries fields for product create/update. Numeric fields are
// pointers so a partial update can leave them untouched; zero is a settable
// value, not "absent".
type ProductInput struct {
	CategoryID  string
	Name        string
	Description string
	PriceCents  *int64
	Stock       *int
	ImageURL    string
	Active      *bool
}

// CreateProduct validates input and persists a new catalog product.
func (s *CatalogService) CreateProduct(ctx context.Context, actorID string, input ProductInput) (*domain.Product, error) {
	if input.Name == "" || input.CategoryID == "" {
		return nil, errors.New("name and category_id required")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, errors.New("price must not be negative")
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("category not found")
		}
		return nil, err
	}

	product := &domain.Product{
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Active:      true,
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.record(ctx, actorID, "product.create", "product", product.ID, product.Name)
	s.publish(ctx, events.EventProductCreated, product.ID, events.ProductCreatedPayload{Name: product.Name, Slug: product.Slug})
	return product, nil
}

// UpdateProduct applies changed fields to an existing product.
func (s *CatalogService) UpdateProduct(ctx context.Context, actorID, id string, input ProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != product.Name {
		product.Name = input.Name
		product.Slug = Slugify(input.Name)
	}
	if input.CategoryID != "" {
		product.CategoryID = input.CategoryID
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, errors.New("price must not be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "product.update", "product", product.ID, product.Name)
	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, actorID, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "product.delete", "product", id, "")
	return nil
}

// GetProduct fetches a single product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.products.List(ctx, filter)
}

// CreateCategory persists a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, actorID, name, description string) (*domain.Category, error) {
	if name == "" {
		return nil, errors.New("name required")
	}
	category := &domain.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "category.create", "category", category.ID, category.Name)
	return category, nil
}

// UpdateCategory applies changed fields to an existing category.
func (s *CatalogService) UpdateCategory(ctx context.Context, actorID, id, name, description string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" && name != category.Name {
		category.Name = name
		category.Slug = Slugify(name)
	}
	if description != "" {
		category.Description = description
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "category.update", "category", category.ID, category.Name)
	return category, nil
}

// DeleteCategory removes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, actorID, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "category.delete", "category", id, "")
	return nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Slugify converts a display name into a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *CatalogService) record(ctx context.Context, actorID, action, entity, entityID, detail string) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, &domain.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
}

func (s *CatalogService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
