package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// LedgerLine is a movement joined to its variant and product, the unit every
// aggregation folds over.
type LedgerLine struct {
	MovementID   uuid.UUID
	ClientID     uuid.UUID
	VariantID    uuid.UUID
	ProductName  string
	VariantLabel string
	Category     catalog.Category
	Type         MovementType
	Qty          int64
	SizeL        decimal.Decimal
	VariantPrice *decimal.Decimal
	UnitPrice    *decimal.Decimal
	Deposit      *decimal.Decimal
	Notes        string
	// Equipment holds structured rows. When empty the notes are parsed as
	// legacy annotations.
	Equipment  []MovementEquipment
	OccurredAt time.Time
}

// EquipmentCounts returns the equipment carried by the line.
func (l *LedgerLine) EquipmentCounts() EquipmentCounts {
	if len(l.Equipment) == 0 {
		return ParseEquipmentNotes(l.Notes)
	}
	counts := NewEquipmentCounts()
	for _, e := range l.Equipment {
		if e.Kind.IsValid() && e.Qty > 0 {
			counts[e.Kind] += e.Qty
		}
	}
	return counts
}

// EffectiveCategory prefers the stored category and classifies the product
// name for rows written before categories were stored.
func (l *LedgerLine) EffectiveCategory() catalog.Category {
	if l.Category.IsValid() {
		return l.Category
	}
	return catalog.Classify(l.ProductName)
}

// DisplayName is the product name followed by the variant label, if any.
func (l *LedgerLine) DisplayName() string {
	if l.VariantLabel == "" {
		return l.ProductName
	}
	return l.ProductName + " " + l.VariantLabel
}
