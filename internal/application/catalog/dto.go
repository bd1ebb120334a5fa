package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Category is optional; when empty it is derived from the name.
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"omitempty,oneof=REUSABLE_CUP MAINTENANCE_CUP EQUIPMENT_ONLY STANDARD_UNIT"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=200"`
	Active     *bool   `json:"active"`
	Reclassify bool    `json:"reclassify"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	ActiveOnly bool `form:"active_only"`
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// CreateVariantRequest represents a request to add a variant to a product
type CreateVariantRequest struct {
	Label    string           `json:"label" binding:"max=100"`
	SizeL    *decimal.Decimal `json:"size_l"`
	PriceTTC *decimal.Decimal `json:"price_ttc"`
}

// UpdateVariantRequest represents a request to update a variant
type UpdateVariantRequest struct {
	Label      *string          `json:"label" binding:"omitempty,max=100"`
	PriceTTC   *decimal.Decimal `json:"price_ttc"`
	ClearPrice bool             `json:"clear_price"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Category  catalog.Category  `json:"category"`
	Active    bool              `json:"active"`
	Variants  []VariantResponse `json:"variants"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Label     string           `json:"label"`
	SizeL     decimal.Decimal  `json:"size_l"`
	PriceTTC  *decimal.Decimal `json:"price_ttc,omitempty"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Active:    p.Active,
		Variants:  make([]VariantResponse, 0, len(p.Variants)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, ToVariantResponse(&p.Variants[i]))
	}
	return resp
}

// ToVariantResponse converts a domain variant
func ToVariantResponse(v *catalog.Variant) VariantResponse {
	return VariantResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Label:     v.Label,
		SizeL:     v.SizeL,
		PriceTTC:  v.PriceTTC,
	}
}
