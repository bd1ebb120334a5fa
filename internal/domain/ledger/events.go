package ledger

import (
	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

const AggregateTypeClientLedger = "ClientLedger"

const (
	EventTypeBatchRecorded   = "MovementBatchRecorded"
	EventTypeMovementDeleted = "MovementDeleted"
	EventTypeAnomalyDetected = "LedgerAnomalyDetected"
)

// BatchRecordedEvent is published after a batch was appended to a client ledger
type BatchRecordedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID   `json:"client_id"`
	BatchID     uuid.UUID   `json:"batch_id"`
	MovementIDs []uuid.UUID `json:"movement_ids"`
	VariantIDs  []uuid.UUID `json:"variant_ids"`
}

// NewBatchRecordedEvent creates a new BatchRecordedEvent
func NewBatchRecordedEvent(clientID, batchID uuid.UUID, movements []*Movement) *BatchRecordedEvent {
	e := &BatchRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchRecorded, AggregateTypeClientLedger, clientID),
		ClientID:        clientID,
		BatchID:         batchID,
	}
	seen := make(map[uuid.UUID]bool)
	for _, m := range movements {
		e.MovementIDs = append(e.MovementIDs, m.ID)
		if !seen[m.VariantID] {
			seen[m.VariantID] = true
			e.VariantIDs = append(e.VariantIDs, m.VariantID)
		}
	}
	return e
}

// MovementDeletedEvent is published after a movement was removed
type MovementDeletedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID    `json:"movement_id"`
	ClientID   uuid.UUID    `json:"client_id"`
	VariantID  uuid.UUID    `json:"variant_id"`
	Type       MovementType `json:"type"`
	Qty        int64        `json:"qty"`
}

// NewMovementDeletedEvent creates a new MovementDeletedEvent
func NewMovementDeletedEvent(m *Movement) *MovementDeletedEvent {
	return &MovementDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementDeleted, AggregateTypeClientLedger, m.ClientID),
		MovementID:      m.ID,
		ClientID:        m.ClientID,
		VariantID:       m.VariantID,
		Type:            m.Type,
		Qty:             m.Qty,
	}
}

// AnomalyDetectedEvent reports negative open balances found by aggregation.
type AnomalyDetectedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID        `json:"client_id"`
	Anomalies []VariantBalance `json:"anomalies"`
}

// NewAnomalyDetectedEvent creates a new AnomalyDetectedEvent
func NewAnomalyDetectedEvent(clientID uuid.UUID, anomalies []VariantBalance) *AnomalyDetectedEvent {
	return &AnomalyDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAnomalyDetected, AggregateTypeClientLedger, clientID),
		ClientID:        clientID,
		Anomalies:       anomalies,
	}
}
