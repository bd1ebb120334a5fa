package partner

import (
	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

const AggregateTypeClient = "Client"

const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeClientDeleted = "ClientDeleted"
)

// ClientCreatedEvent is published when a client account is opened
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID),
		ClientID:        c.ID,
		Name:            c.Name,
	}
}

// ClientDeletedEvent is published after a client and its ledger were removed
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID       uuid.UUID `json:"client_id"`
	Name           string    `json:"name"`
	MovementsCount int       `json:"movements_count"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(c *Client, movements int) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, c.ID),
		ClientID:        c.ID,
		Name:            c.Name,
		MovementsCount:  movements,
	}
}
