package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByIDForUpdate loads the client and holds a row lock until the
	// surrounding transaction ends. Ledger writes for one client serialize on it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Client, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)

	Save(ctx context.Context, client *Client) error

	Delete(ctx context.Context, id uuid.UUID) error
}
