package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/application/txscope"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	variantRepo    catalog.VariantRepository
	scope          txscope.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	scope txscope.TransactionScope,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		scope:       scope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for catalog events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a product. Its category is stored once and not re-derived
// on every read.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	var category catalog.Category
	if req.Category != "" {
		c, ok := catalog.ParseCategory(req.Category)
		if !ok {
			return nil, shared.NewValidationError("unknown product category %q", req.Category)
		}
		category = c
	}
	product, err := catalog.NewProductWithCategory(req.Name, category)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.String("category", product.Category.String()),
	)
	s.publishEvents(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns a product with its variants
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns products ordered by name
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	products, err := s.productRepo.FindAll(ctx, filter.ActiveOnly, f)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, nil
}

// Update renames, toggles visibility, or reclassifies a product from its name
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Reclassify && product.Reclassify() {
		s.logger.Warn("product reclassified",
			zap.String("product_id", product.ID.String()),
			zap.String("category", product.Category.String()),
		)
	}
	if req.Active != nil {
		product.SetActive(*req.Active)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publishEvents(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product without variants
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	variants, err := s.variantRepo.FindByProduct(ctx, id)
	if err != nil {
		return err
	}
	if len(variants) > 0 {
		return shared.NewBusinessRuleViolation(
			fmt.Sprintf("product has %d variant(s); delete them first", len(variants)))
	}
	return s.productRepo.Delete(ctx, id)
}

// AddVariant adds a variant to a product
func (s *ProductService) AddVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	variant, err := catalog.NewVariant(productID, req.Label, req.SizeL, req.PriceTTC)
	if err != nil {
		return nil, err
	}
	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, fmt.Errorf("save variant: %w", err)
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// UpdateVariant changes label or default price. Size is fixed once created
// because delivered volume is computed from it.
func (s *ProductService) UpdateVariant(ctx context.Context, variantID uuid.UUID, req UpdateVariantRequest) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if req.Label != nil {
		variant.Label = *req.Label
	}
	switch {
	case req.ClearPrice:
		variant.PriceTTC = nil
	case req.PriceTTC != nil:
		if req.PriceTTC.IsNegative() {
			return nil, shared.NewValidationError("variant price cannot be negative")
		}
		variant.PriceTTC = req.PriceTTC
	}
	variant.Touch()
	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, fmt.Errorf("save variant: %w", err)
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// DeleteVariant removes an unused variant together with its stock row and
// reorder rule.
func (s *ProductService) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.VariantRepo().FindByID(ctx, variantID); err != nil {
			return err
		}
		used, err := repos.VariantRepo().IsReferenced(ctx, variantID)
		if err != nil {
			return err
		}
		if used {
			return shared.NewBusinessRuleViolation("variant is referenced by ledger movements")
		}
		if err := repos.ReorderRuleRepo().Delete(ctx, variantID); err != nil && !isNotFound(err) {
			return err
		}
		if err := repos.StockRepo().Delete(ctx, variantID); err != nil {
			return err
		}
		return repos.VariantRepo().Delete(ctx, variantID)
	})
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish catalog events", zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
