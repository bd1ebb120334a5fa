package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product with its variants
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll lists products ordered by name; activeOnly hides inactive ones
	FindAll(ctx context.Context, activeOnly bool, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product (variants are saved separately)
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product that has no variants
	Delete(ctx context.Context, id uuid.UUID) error
}

// VariantRepository defines the interface for variant persistence
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)

	// FindByIDs returns the variants found, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Variant, error)

	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Variant, error)

	// FindAllWithProduct returns every variant joined with its product
	FindAllWithProduct(ctx context.Context) ([]VariantWithProduct, error)

	// FindWithProductByIDs is FindAllWithProduct limited to the given ids
	FindWithProductByIDs(ctx context.Context, ids []uuid.UUID) ([]VariantWithProduct, error)

	Save(ctx context.Context, variant *Variant) error

	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferenced reports whether any movement points at the variant
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// VariantWithProduct is a read model joining a variant to its product.
type VariantWithProduct struct {
	Variant     Variant
	ProductName string
	Category    Category
	Active      bool
}
