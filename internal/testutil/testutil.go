// Package testutil provides fixtures shared by the application and HTTP
// tests: an in-memory SQLite database with the ledger schema, seed helpers
// and an event recorder.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/partner"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Repos bundles the repositories of one test database
type Repos struct {
	DB       *persistence.Database
	Scope    *persistence.GormTransactionScope
	Client   *persistence.GormClientRepository
	Product  *persistence.GormProductRepository
	Variant  *persistence.GormVariantRepository
	Movement *persistence.GormMovementRepository
	Stock    *persistence.GormStockRepository
	Rule     *persistence.GormReorderRuleRepository
}

// NewSQLiteRepos opens a private in-memory SQLite database and returns its
// repositories. The database is closed on test cleanup.
func NewSQLiteRepos(t *testing.T) *Repos {
	t.Helper()
	db, err := persistence.NewSQLiteDatabase(":memory:")
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })
	return NewRepos(db)
}

// NewRepos wires the repositories on top of an open database
func NewRepos(db *persistence.Database) *Repos {
	return &Repos{
		DB:       db,
		Scope:    persistence.NewGormTransactionScope(db.DB),
		Client:   persistence.NewGormClientRepository(db.DB),
		Product:  persistence.NewGormProductRepository(db.DB),
		Variant:  persistence.NewGormVariantRepository(db.DB),
		Movement: persistence.NewGormMovementRepository(db.DB),
		Stock:    persistence.NewGormStockRepository(db.DB),
		Rule:     persistence.NewGormReorderRuleRepository(db.DB),
	}
}

// SeedClient saves a client with the given name
func (r *Repos) SeedClient(t *testing.T, name string) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(name, partner.ContactInfo{})
	require.NoError(t, err)
	require.NoError(t, r.Client.Save(context.Background(), c))
	return c
}

// SeedVariant saves a product of the given category with one variant. A
// zero price leaves the variant without a default price.
func (r *Repos) SeedVariant(t *testing.T, productName string, category catalog.Category, label string, sizeL, price string) *catalog.Variant {
	t.Helper()
	ctx := context.Background()
	p, err := catalog.NewProductWithCategory(productName, category)
	require.NoError(t, err)
	require.NoError(t, r.Product.Save(ctx, p))

	size := decimal.RequireFromString(sizeL)
	var pricePtr *decimal.Decimal
	if price != "" {
		d := decimal.RequireFromString(price)
		pricePtr = &d
	}
	v, err := catalog.NewVariant(p.ID, label, &size, pricePtr)
	require.NoError(t, err)
	require.NoError(t, r.Variant.Save(ctx, v))
	return v
}

// EventRecorder is an EventPublisher that keeps every published event
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewEventRecorder creates an empty recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records the events
func (r *EventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// OfType returns the recorded events with the given type
func (r *EventRecorder) OfType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range r.Events() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets the recorded events
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ shared.EventPublisher = (*EventRecorder)(nil)

// IDs returns the ids of a list of variants
func IDs(variants ...*catalog.Variant) []uuid.UUID {
	out := make([]uuid.UUID, len(variants))
	for i, v := range variants {
		out[i] = v.ID
	}
	return out
}
