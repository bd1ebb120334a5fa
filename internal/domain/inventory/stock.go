package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
)

// StockLevel is the cached on-premises quantity of a variant. It is a
// projection of the ledger and can be rebuilt from it.
type StockLevel struct {
	VariantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Qty       int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "inventory"
}

// ReorderRule is the minimum on-hand quantity below which a variant alerts.
type ReorderRule struct {
	VariantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	MinQty    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReorderRule) TableName() string {
	return "reorder_rules"
}

// NewReorderRule creates a rule for a variant
func NewReorderRule(variantID uuid.UUID, minQty int64) (*ReorderRule, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewValidationError("reorder rule requires a variant")
	}
	if minQty < 0 {
		return nil, shared.NewValidationError("minimum quantity cannot be negative (got %d)", minQty)
	}
	now := time.Now()
	return &ReorderRule{VariantID: variantID, MinQty: minQty, CreatedAt: now, UpdatedAt: now}, nil
}

// LedgerStock folds movements into the stock each variant should hold:
// OUT removes qty, FULL adds it, returns leave stock alone.
func LedgerStock(movements []ledger.Movement) map[uuid.UUID]int64 {
	stock := make(map[uuid.UUID]int64)
	for i := range movements {
		m := &movements[i]
		if m.Type != ledger.MovementTypeOut && m.Type != ledger.MovementTypeFull {
			continue
		}
		stock[m.VariantID] += m.InventoryDelta()
	}
	return stock
}

// Drift compares the cached quantity of a variant with the ledger fold.
type Drift struct {
	VariantID   uuid.UUID `json:"variant_id" db:"variant_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Cached      int64     `json:"cached" db:"cached_qty"`
	Ledger      int64     `json:"ledger" db:"ledger_qty"`
}

// Diff is cached minus ledger; zero means the cache is consistent.
func (d Drift) Diff() int64 {
	return d.Cached - d.Ledger
}
