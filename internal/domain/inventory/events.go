package inventory

import (
	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStock = "Stock"

// Event type constants
const (
	EventTypeStockBelowThreshold = "StockBelowThreshold"
	EventTypeStockRebuilt        = "StockRebuilt"
)

// StockBelowThresholdEvent is raised when a committed change leaves a ruled
// variant below its minimum.
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	Qty         int64     `json:"qty"`
	MinQty      int64     `json:"min_qty"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(a Alert) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStock, a.VariantID),
		VariantID:       a.VariantID,
		ProductName:     a.ProductName,
		Qty:             a.Qty,
		MinQty:          a.MinQty,
	}
}

// Shortfall returns how many units are missing to reach the minimum
func (e *StockBelowThresholdEvent) Shortfall() int64 {
	return e.MinQty - e.Qty
}

// StockRebuiltEvent is raised when a cached quantity was overwritten by the
// ledger fold.
type StockRebuiltEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	Previous  int64     `json:"previous"`
	Rebuilt   int64     `json:"rebuilt"`
}

// NewStockRebuiltEvent creates a new StockRebuiltEvent
func NewStockRebuiltEvent(variantID uuid.UUID, previous, rebuilt int64) *StockRebuiltEvent {
	return &StockRebuiltEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRebuilt, AggregateTypeStock, variantID),
		VariantID:       variantID,
		Previous:        previous,
		Rebuilt:         rebuilt,
	}
}
