package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry (a beer, a cup type, an equipment-only marker).
// Its Category is computed once from the name and stored; later renames keep
// it unless Reclassify is called.
type Product struct {
	shared.BaseAggregateRoot
	Name     string    `gorm:"type:varchar(200);not null"`
	Category Category  `gorm:"type:varchar(32);not null;index"`
	Active   bool      `gorm:"not null"`
	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product classified from its name. Maintenance cups
// start inactive so they stay out of the active catalog.
func NewProduct(name string) (*Product, error) {
	return NewProductWithCategory(name, "")
}

// NewProductWithCategory creates a product with an explicit category. An
// empty category falls back to Classify.
func NewProductWithCategory(name string, category Category) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if category == "" {
		category = Classify(name)
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("unknown product category %q", category)
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Category:          category,
		Active:            category.ListedInCatalog(),
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Rename changes the display name. The stored category is left untouched.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Touch()
	return nil
}

// Reclassify recomputes the category from the current name and reports
// whether it changed.
func (p *Product) Reclassify() bool {
	next := Classify(p.Name)
	if next == p.Category {
		return false
	}
	prev := p.Category
	p.Category = next
	p.Touch()
	p.AddDomainEvent(NewProductReclassifiedEvent(p, prev))
	return true
}

// SetActive toggles catalog visibility.
func (p *Product) SetActive(active bool) {
	p.Active = active
	p.Touch()
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("product name cannot exceed 200 characters")
	}
	return nil
}

// Variant is a sellable format of a product (e.g. a 30 L keg).
type Variant struct {
	shared.BaseEntity
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Label     string           `gorm:"type:varchar(100);not null;default:''"`
	SizeL     decimal.Decimal  `gorm:"column:size_l;type:decimal(10,3);not null;default:0"`
	PriceTTC  *decimal.Decimal `gorm:"column:price_ttc;type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a variant. A nil size is stored as zero, the sentinel
// for non-volumetric variants.
func NewVariant(productID uuid.UUID, label string, sizeL *decimal.Decimal, price *decimal.Decimal) (*Variant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("variant must belong to a product")
	}
	size := decimal.Zero
	if sizeL != nil {
		if sizeL.IsNegative() {
			return nil, shared.NewValidationError("variant size cannot be negative")
		}
		size = *sizeL
	}
	if price != nil && price.IsNegative() {
		return nil, shared.NewValidationError("variant price cannot be negative")
	}
	return &Variant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Label:      strings.TrimSpace(label),
		SizeL:      size,
		PriceTTC:   price,
	}, nil
}

// IsVolumetric reports whether the variant has a real volume.
func (v *Variant) IsVolumetric() bool {
	return v.SizeL.IsPositive()
}

// DisplayName joins product name and variant label for messages.
func DisplayName(productName string, v *Variant) string {
	if v == nil {
		return productName
	}
	label := v.Label
	if label == "" && v.IsVolumetric() {
		label = v.SizeL.String() + " L"
	}
	if label == "" {
		return productName
	}
	return productName + " " + label
}
