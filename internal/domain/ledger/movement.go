package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType is the kind of stock event recorded in the ledger.
type MovementType string

const (
	MovementTypeOut    MovementType = "OUT"
	MovementTypeIn     MovementType = "IN"
	MovementTypeDefect MovementType = "DEFECT"
	MovementTypeFull   MovementType = "FULL"
)

// AllMovementTypes lists the accepted movement types.
var AllMovementTypes = []MovementType{MovementTypeOut, MovementTypeIn, MovementTypeDefect, MovementTypeFull}

// ParseMovementType accepts a type name case-insensitively.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("unknown movement type %q", s)
	}
	return t, nil
}

// IsValid reports whether t is a known movement type
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeOut, MovementTypeIn, MovementTypeDefect, MovementTypeFull:
		return true
	}
	return false
}

// Sign is the client-side direction of a movement: +1 for deliveries, -1
// for returns, write-offs and refills, 0 for anything else.
func (t MovementType) Sign() int64 {
	switch t {
	case MovementTypeOut:
		return 1
	case MovementTypeIn, MovementTypeDefect, MovementTypeFull:
		return -1
	default:
		return 0
	}
}

// InventoryDelta is the on-premises stock change caused by creating a
// movement of this type. Deleting the movement applies the negation.
func (t MovementType) InventoryDelta(qty int64) int64 {
	switch t {
	case MovementTypeOut:
		return -qty
	case MovementTypeFull:
		return qty
	default:
		return 0
	}
}

// IsReturn is true for lines that bring units back from the client and must
// not exceed what is still open.
func (t MovementType) IsReturn() bool {
	return t == MovementTypeIn || t == MovementTypeDefect
}

// Movement is one ledger row. Rows are appended or deleted, never updated.
type Movement struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClientID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	VariantID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	BatchID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Type          MovementType        `gorm:"type:varchar(10);not null"`
	Qty           int64               `gorm:"not null;default:0"`
	UnitPriceTTC  *decimal.Decimal    `gorm:"column:unit_price_ttc;type:decimal(18,4)"`
	DepositPerKeg *decimal.Decimal    `gorm:"column:deposit_per_keg;type:decimal(18,4)"`
	Notes         string              `gorm:"type:text;not null;default:''"`
	OccurredAt    time.Time           `gorm:"not null;index"`
	CreatedAt     time.Time           `gorm:"not null"`
	Equipment     []MovementEquipment `gorm:"foreignKey:MovementID"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// InventoryDelta is the stock change this movement applied when recorded.
func (m *Movement) InventoryDelta() int64 {
	return m.Type.InventoryDelta(m.Qty)
}

// Line is one user-submitted movement line before it is validated.
type Line struct {
	VariantID  uuid.UUID
	Type       MovementType
	Qty        int64
	UnitPrice  *decimal.Decimal
	Deposit    *decimal.Decimal
	Notes      string
	Equipment  EquipmentCounts
	OccurredAt *time.Time
}

// NewMovement turns a submitted line into a ledger row. Equipment-only lines
// have quantity, price and deposit forced to zero. Negative price or deposit
// overrides are refused.
func NewMovement(clientID, batchID uuid.UUID, line Line, category catalog.Category, now time.Time) (*Movement, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("movement requires a client")
	}
	if line.VariantID == uuid.Nil {
		return nil, shared.NewValidationError("movement requires a variant")
	}
	if !line.Type.IsValid() {
		return nil, shared.NewValidationError("unknown movement type %q", line.Type)
	}
	if line.Qty < 0 {
		return nil, shared.NewValidationError("quantity cannot be negative (got %d)", line.Qty)
	}

	if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit price cannot be negative (got %s)", line.UnitPrice)
	}
	if line.Deposit != nil && line.Deposit.IsNegative() {
		return nil, shared.NewValidationError("deposit cannot be negative (got %s)", line.Deposit)
	}

	price := copyAmount(line.UnitPrice)
	deposit := copyAmount(line.Deposit)
	qty := line.Qty
	if category == catalog.CategoryEquipmentOnly {
		zero := decimal.Zero
		qty = 0
		price = &zero
		deposit = &zero
	}

	equipment := line.Equipment.Positive()
	if qty == 0 && equipment.Total() == 0 {
		return nil, shared.NewValidationError("line has neither quantity nor equipment")
	}

	// Blank notes carry the equipment in the legacy text form for exports
	// that only read notes.
	notes := line.Notes
	if strings.TrimSpace(notes) == "" && equipment.Total() > 0 {
		notes = FormatEquipmentNotes(equipment)
	}

	occurredAt := now
	if line.OccurredAt != nil && !line.OccurredAt.IsZero() {
		occurredAt = *line.OccurredAt
	}

	m := &Movement{
		ID:            uuid.New(),
		ClientID:      clientID,
		VariantID:     line.VariantID,
		BatchID:       batchID,
		Type:          line.Type,
		Qty:           qty,
		UnitPriceTTC:  price,
		DepositPerKeg: deposit,
		Notes:         notes,
		OccurredAt:    occurredAt,
		CreatedAt:     now,
	}
	for _, kind := range AllEquipmentKinds {
		if n := equipment[kind]; n > 0 {
			m.Equipment = append(m.Equipment, MovementEquipment{MovementID: m.ID, Kind: kind, Qty: n})
		}
	}
	return m, nil
}

func copyAmount(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
