package catalog

import (
	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductReclassified = "ProductReclassified"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
	}
}

// ProductReclassifiedEvent is published when a stored category changes.
type ProductReclassifiedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	From      Category  `json:"from"`
	To        Category  `json:"to"`
}

// NewProductReclassifiedEvent creates a new ProductReclassifiedEvent
func NewProductReclassifiedEvent(p *Product, from Category) *ProductReclassifiedEvent {
	return &ProductReclassifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductReclassified, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		From:            from,
		To:              p.Category,
	}
}
