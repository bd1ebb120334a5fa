package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// LineInput is one raw line of a submitted batch. Numeric fields are kept as
// text: a malformed quantity rejects the line, malformed overrides fall back
// to defaults.
type LineInput struct {
	VariantID  uuid.UUID        `json:"variant_id" binding:"required"`
	Type       string           `json:"type" binding:"required,movement_type"`
	Qty        string           `json:"qty"`
	UnitPrice  string           `json:"unit_price_ttc"`
	Deposit    string           `json:"deposit_per_keg"`
	Notes      string           `json:"notes"`
	Equipment  map[string]int64 `json:"equipment"`
	OccurredAt *time.Time       `json:"occurred_at"`
}

// RecordBatchRequest is an all-or-nothing submission of movement lines for
// one client.
type RecordBatchRequest struct {
	ClientID       uuid.UUID   `json:"client_id" binding:"required"`
	IdempotencyKey string      `json:"idempotency_key"`
	OccurredAt     *time.Time  `json:"occurred_at"`
	Lines          []LineInput `json:"lines" binding:"required,min=1,dive"`
}

// RecordMovementRequest records a single line
type RecordMovementRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	LineInput
}

// BatchResult is returned after a batch was committed
type BatchResult struct {
	BatchID   uuid.UUID          `json:"batch_id"`
	ClientID  uuid.UUID          `json:"client_id"`
	Movements []MovementResponse `json:"movements"`
}

// MovementResponse represents a movement in API responses
type MovementResponse struct {
	ID            uuid.UUID              `json:"id"`
	ClientID      uuid.UUID              `json:"client_id"`
	VariantID     uuid.UUID              `json:"variant_id"`
	BatchID       uuid.UUID              `json:"batch_id"`
	Type          ledger.MovementType    `json:"type"`
	Qty           int64                  `json:"qty"`
	UnitPriceTTC  *decimal.Decimal       `json:"unit_price_ttc,omitempty"`
	DepositPerKeg *decimal.Decimal       `json:"deposit_per_keg,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	Equipment     ledger.EquipmentCounts `json:"equipment"`
	OccurredAt    time.Time              `json:"occurred_at"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *ledger.Movement) MovementResponse {
	equipment := ledger.NewEquipmentCounts()
	if len(m.Equipment) == 0 {
		equipment = ledger.ParseEquipmentNotes(m.Notes)
	}
	for _, e := range m.Equipment {
		equipment[e.Kind] += e.Qty
	}
	return MovementResponse{
		ID:            m.ID,
		ClientID:      m.ClientID,
		VariantID:     m.VariantID,
		BatchID:       m.BatchID,
		Type:          m.Type,
		Qty:           m.Qty,
		UnitPriceTTC:  m.UnitPriceTTC,
		DepositPerKeg: m.DepositPerKeg,
		Notes:         m.Notes,
		Equipment:     equipment,
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// ClientSummaryResponse is the per-client account projection
type ClientSummaryResponse struct {
	ClientName string `json:"client_name"`
	ledger.ClientSummary
}
