package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// Get returns the cached quantity of a variant; no row means zero
func (r *GormStockRepository) Get(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).First(&level, "variant_id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return level.Qty, nil
}

// FindAll returns every cached quantity keyed by variant
func (r *GormStockRepository) FindAll(ctx context.Context) (map[uuid.UUID]int64, error) {
	var levels []inventory.StockLevel
	if err := r.db.WithContext(ctx).Find(&levels).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(levels))
	for _, l := range levels {
		out[l.VariantID] = l.Qty
	}
	return out, nil
}

// Increment adds delta to the cached quantity in a single upsert statement,
// so concurrent increments never lose an update.
func (r *GormStockRepository) Increment(ctx context.Context, variantID uuid.UUID, delta int64) error {
	level := inventory.StockLevel{VariantID: variantID, Qty: delta, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"qty":        gorm.Expr("inventory.qty + excluded.qty"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&level).Error
}

// Set overwrites the cached quantity
func (r *GormStockRepository) Set(ctx context.Context, variantID uuid.UUID, qty int64) error {
	level := inventory.StockLevel{VariantID: variantID, Qty: qty, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"qty", "updated_at"}),
		}).
		Create(&level).Error
}

// Delete removes the cached row of a variant; a missing row is not an error
func (r *GormStockRepository) Delete(ctx context.Context, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&inventory.StockLevel{}, "variant_id = ?", variantID).Error
}

// GormReorderRuleRepository implements ReorderRuleRepository using GORM
type GormReorderRuleRepository struct {
	db *gorm.DB
}

// NewGormReorderRuleRepository creates a new GormReorderRuleRepository
func NewGormReorderRuleRepository(db *gorm.DB) *GormReorderRuleRepository {
	return &GormReorderRuleRepository{db: db}
}

// FindByVariant finds the rule of a variant
func (r *GormReorderRuleRepository) FindByVariant(ctx context.Context, variantID uuid.UUID) (*inventory.ReorderRule, error) {
	var rule inventory.ReorderRule
	if err := r.db.WithContext(ctx).First(&rule, "variant_id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindAll returns min quantities keyed by variant
func (r *GormReorderRuleRepository) FindAll(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rules []inventory.ReorderRule
	if err := r.db.WithContext(ctx).Find(&rules).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rules))
	for _, rule := range rules {
		out[rule.VariantID] = rule.MinQty
	}
	return out, nil
}

// Save creates the rule or replaces the minimum of an existing one
func (r *GormReorderRuleRepository) Save(ctx context.Context, rule *inventory.ReorderRule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_qty", "updated_at"}),
		}).
		Create(rule).Error
}

// Delete deletes the rule of a variant
func (r *GormReorderRuleRepository) Delete(ctx context.Context, variantID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.ReorderRule{}, "variant_id = ?", variantID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure the repositories implement the inventory interfaces
var (
	_ inventory.StockRepository       = (*GormStockRepository)(nil)
	_ inventory.ReorderRuleRepository = (*GormReorderRuleRepository)(nil)
)
