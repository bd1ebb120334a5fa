package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

const movementOrder = "occurred_at ASC, created_at ASC, id ASC"

// FindByID finds a movement by its ID with its equipment rows
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	var movement ledger.Movement
	if err := r.db.WithContext(ctx).
		Preload("Equipment").
		First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByClient returns the movements of a client, oldest first
func (r *GormMovementRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	if err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("client_id = ?", clientID).
		Order(movementOrder).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByTypes returns movements of the given types, for one variant or all
func (r *GormMovementRepository) FindByTypes(ctx context.Context, variantID uuid.UUID, types ...ledger.MovementType) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.db.WithContext(ctx).Model(&ledger.Movement{})
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	if variantID != uuid.Nil {
		query = query.Where("variant_id = ?", variantID)
	}
	if err := query.Order(movementOrder).Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ledgerLineRow is one movement joined to its variant and product
type ledgerLineRow struct {
	MovementID      uuid.UUID
	ClientID        uuid.UUID
	VariantID       uuid.UUID
	ProductName     string
	VariantLabel    string
	ProductCategory catalog.Category
	Type            ledger.MovementType
	Qty             int64
	SizeL           decimal.Decimal  `gorm:"column:size_l"`
	VariantPrice    *decimal.Decimal `gorm:"column:variant_price"`
	UnitPriceTTC    *decimal.Decimal `gorm:"column:unit_price_ttc"`
	DepositPerKeg   *decimal.Decimal `gorm:"column:deposit_per_keg"`
	Notes           string
	OccurredAt      time.Time
}

// LinesByClient returns the client's movements joined to variant and
// product, oldest first, with equipment rows attached
func (r *GormMovementRepository) LinesByClient(ctx context.Context, clientID uuid.UUID) ([]ledger.LedgerLine, error) {
	var rows []ledgerLineRow
	if err := r.db.WithContext(ctx).
		Table("movements").
		Select("movements.id AS movement_id, movements.client_id, movements.variant_id, " +
			"products.name AS product_name, variants.label AS variant_label, products.category AS product_category, " +
			"movements.type, movements.qty, variants.size_l, variants.price_ttc AS variant_price, " +
			"movements.unit_price_ttc, movements.deposit_per_keg, movements.notes, movements.occurred_at").
		Joins("JOIN variants ON variants.id = movements.variant_id").
		Joins("JOIN products ON products.id = variants.product_id").
		Where("movements.client_id = ?", clientID).
		Order("movements.occurred_at ASC, movements.created_at ASC, movements.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]ledger.LedgerLine, len(rows))
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.MovementID
		lines[i] = ledger.LedgerLine{
			MovementID:   row.MovementID,
			ClientID:     row.ClientID,
			VariantID:    row.VariantID,
			ProductName:  row.ProductName,
			VariantLabel: row.VariantLabel,
			Category:     row.ProductCategory,
			Type:         row.Type,
			Qty:          row.Qty,
			SizeL:        row.SizeL,
			VariantPrice: row.VariantPrice,
			UnitPrice:    row.UnitPriceTTC,
			Deposit:      row.DepositPerKeg,
			Notes:        row.Notes,
			OccurredAt:   row.OccurredAt,
		}
	}
	if len(ids) == 0 {
		return lines, nil
	}

	var equipment []ledger.MovementEquipment
	if err := r.db.WithContext(ctx).Where("movement_id IN ?", ids).Find(&equipment).Error; err != nil {
		return nil, err
	}
	byMovement := make(map[uuid.UUID][]ledger.MovementEquipment)
	for _, e := range equipment {
		byMovement[e.MovementID] = append(byMovement[e.MovementID], e)
	}
	for i := range lines {
		lines[i].Equipment = byMovement[lines[i].MovementID]
	}
	return lines, nil
}

// CreateBatch inserts the movements, then their equipment rows
func (r *GormMovementRepository) CreateBatch(ctx context.Context, movements []*ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&movements).Error; err != nil {
		return err
	}
	var equipment []ledger.MovementEquipment
	for _, m := range movements {
		equipment = append(equipment, m.Equipment...)
	}
	if len(equipment) == 0 {
		return nil
	}
	return db.Create(&equipment).Error
}

// Delete removes a movement and its equipment rows
func (r *GormMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("movement_id = ?", id).Delete(&ledger.MovementEquipment{}).Error; err != nil {
		return err
	}
	result := db.Delete(&ledger.Movement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByClient removes every movement of a client with its equipment rows
func (r *GormMovementRepository) DeleteByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	ids := db.Model(&ledger.Movement{}).Select("id").Where("client_id = ?", clientID)
	if err := db.Where("movement_id IN (?)", ids).Delete(&ledger.MovementEquipment{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("client_id = ?", clientID).Delete(&ledger.Movement{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
