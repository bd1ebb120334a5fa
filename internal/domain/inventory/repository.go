package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockRepository persists the cached stock per variant
type StockRepository interface {
	// Get returns the cached quantity; a missing row reads as zero
	Get(ctx context.Context, variantID uuid.UUID) (int64, error)

	// FindAll returns every cached quantity keyed by variant
	FindAll(ctx context.Context) (map[uuid.UUID]int64, error)

	// Increment atomically adds delta, creating the row when missing
	Increment(ctx context.Context, variantID uuid.UUID, delta int64) error

	// Set overwrites the quantity, creating the row when missing
	Set(ctx context.Context, variantID uuid.UUID, qty int64) error

	// Delete removes the cached row of a variant
	Delete(ctx context.Context, variantID uuid.UUID) error
}

// ReorderRuleRepository persists reorder thresholds
type ReorderRuleRepository interface {
	FindByVariant(ctx context.Context, variantID uuid.UUID) (*ReorderRule, error)

	// FindAll returns min quantities keyed by variant
	FindAll(ctx context.Context) (map[uuid.UUID]int64, error)

	// Save upserts the rule of a variant
	Save(ctx context.Context, rule *ReorderRule) error

	Delete(ctx context.Context, variantID uuid.UUID) error
}

// DriftReader computes cached-versus-ledger stock for every variant
type DriftReader interface {
	StockDrift(ctx context.Context) ([]Drift, error)
}
