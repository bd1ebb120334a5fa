package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID with its variants
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants", orderVariants).
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll lists products ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context, activeOnly bool, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if err := query.Preload("Variants", orderVariants).
		Order("name ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product. Variants are persisted through the
// variant repository.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func orderVariants(db *gorm.DB) *gorm.DB {
	return db.Order("size_l ASC, label ASC")
}

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var variant catalog.Variant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindByIDs finds variants by IDs
func (r *GormVariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	if len(ids) == 0 {
		return []catalog.Variant{}, nil
	}
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByProduct lists the variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Scopes(orderVariants).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// variantProductRow is the flat result of joining variants to products
type variantProductRow struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	Label           string
	SizeL           decimal.Decimal  `gorm:"column:size_l"`
	PriceTTC        *decimal.Decimal `gorm:"column:price_ttc"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProductName     string
	ProductCategory catalog.Category
	ProductActive   bool
}

func (row variantProductRow) toDomain() catalog.VariantWithProduct {
	return catalog.VariantWithProduct{
		Variant: catalog.Variant{
			BaseEntity: shared.BaseEntity{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
			ProductID:  row.ProductID,
			Label:      row.Label,
			SizeL:      row.SizeL,
			PriceTTC:   row.PriceTTC,
		},
		ProductName: row.ProductName,
		Category:    row.ProductCategory,
		Active:      row.ProductActive,
	}
}

func (r *GormVariantRepository) joinedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("variants").
		Select("variants.id, variants.product_id, variants.label, variants.size_l, variants.price_ttc, " +
			"variants.created_at, variants.updated_at, " +
			"products.name AS product_name, products.category AS product_category, products.active AS product_active").
		Joins("JOIN products ON products.id = variants.product_id").
		Order("products.name ASC, variants.size_l ASC, variants.label ASC")
}

// FindAllWithProduct returns every variant joined with its product
func (r *GormVariantRepository) FindAllWithProduct(ctx context.Context) ([]catalog.VariantWithProduct, error) {
	var rows []variantProductRow
	if err := r.joinedQuery(ctx).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return variantRowsToDomain(rows), nil
}

// FindWithProductByIDs returns the given variants joined with their product
func (r *GormVariantRepository) FindWithProductByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.VariantWithProduct, error) {
	if len(ids) == 0 {
		return []catalog.VariantWithProduct{}, nil
	}
	var rows []variantProductRow
	if err := r.joinedQuery(ctx).Where("variants.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return variantRowsToDomain(rows), nil
}

func variantRowsToDomain(rows []variantProductRow) []catalog.VariantWithProduct {
	out := make([]catalog.VariantWithProduct, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.Variant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// Delete deletes a variant
func (r *GormVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Variant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IsReferenced reports whether any movement points at the variant
func (r *GormVariantRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Where("variant_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure the repositories implement the catalog interfaces
var (
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
	_ catalog.VariantRepository = (*GormVariantRepository)(nil)
)
