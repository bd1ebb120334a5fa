package persistence

import (
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/partner"
)

// models lists the persisted types in dependency order
func models() []any {
	return []any{
		&partner.Client{},
		&catalog.Product{},
		&catalog.Variant{},
		&ledger.Movement{},
		&ledger.MovementEquipment{},
		&inventory.StockLevel{},
		&inventory.ReorderRule{},
	}
}
