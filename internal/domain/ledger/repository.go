package ledger

import (
	"context"

	"github.com/google/uuid"
)

// MovementRepository defines the interface for ledger persistence.
// Movements are inserted or deleted, never updated.
type MovementRepository interface {
	// FindByID loads a movement with its equipment rows
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByClient returns every movement of a client, oldest first
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Movement, error)

	// FindByTypes returns movements of the given types, optionally limited
	// to one variant (uuid.Nil means all variants)
	FindByTypes(ctx context.Context, variantID uuid.UUID, types ...MovementType) ([]Movement, error)

	// LinesByClient returns the client's movements joined to variant and product
	LinesByClient(ctx context.Context, clientID uuid.UUID) ([]LedgerLine, error)

	// CreateBatch inserts the movements and their equipment rows
	CreateBatch(ctx context.Context, movements []*Movement) error

	// Delete removes a movement and its equipment rows
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByClient removes every movement of a client and returns the count
	DeleteByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}
