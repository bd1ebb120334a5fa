package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/inventory"
)

// StockRowResponse represents a variant stock row in API responses
type StockRowResponse struct {
	VariantID    uuid.UUID        `json:"variant_id"`
	ProductName  string           `json:"product_name"`
	VariantLabel string           `json:"variant_label"`
	Category     catalog.Category `json:"category"`
	Qty          int64            `json:"qty"`
	MinQty       *int64           `json:"min_qty,omitempty"`
	Alert        bool             `json:"alert"`
}

// AlertResponse represents a reorder alert
type AlertResponse struct {
	VariantID    uuid.UUID `json:"variant_id"`
	ProductName  string    `json:"product_name"`
	VariantLabel string    `json:"variant_label"`
	Qty          int64     `json:"qty"`
	MinQty       int64     `json:"min_qty"`
	Shortfall    int64     `json:"shortfall"`
}

// RebuildResult is the outcome of rebuilding one variant from the ledger
type RebuildResult struct {
	VariantID uuid.UUID `json:"variant_id"`
	Previous  int64     `json:"previous"`
	Rebuilt   int64     `json:"rebuilt"`
}

// DriftResponse compares cached and ledger stock of a variant
type DriftResponse struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	Cached      int64     `json:"cached"`
	Ledger      int64     `json:"ledger"`
	Diff        int64     `json:"diff"`
}

// AdjustStockRequest represents a request to add a delta to stock
type AdjustStockRequest struct {
	Delta int64 `json:"delta"`
}

// SetStockRequest represents a request to overwrite stock
type SetStockRequest struct {
	Qty *int64 `json:"qty" binding:"required"`
}

// SetReorderRuleRequest represents a request to set a reorder threshold
type SetReorderRuleRequest struct {
	MinQty *int64 `json:"min_qty" binding:"required,min=0"`
}

// ToStockRowResponse converts a domain stock row
func ToStockRowResponse(r inventory.StockRow) StockRowResponse {
	return StockRowResponse{
		VariantID:    r.VariantID,
		ProductName:  r.ProductName,
		VariantLabel: r.VariantLabel,
		Category:     r.Category,
		Qty:          r.Qty,
		MinQty:       r.MinQty,
		Alert:        r.Alert,
	}
}

// ToStockRowResponses converts a list of stock rows
func ToStockRowResponses(rows []inventory.StockRow) []StockRowResponse {
	out := make([]StockRowResponse, len(rows))
	for i, r := range rows {
		out[i] = ToStockRowResponse(r)
	}
	return out
}

// ToAlertResponses converts domain alerts
func ToAlertResponses(alerts []inventory.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse(a)
	}
	return out
}

// ToDriftResponse converts a drift row
func ToDriftResponse(d inventory.Drift) DriftResponse {
	return DriftResponse{
		VariantID:   d.VariantID,
		ProductName: d.ProductName,
		Cached:      d.Cached,
		Ledger:      d.Ledger,
		Diff:        d.Diff(),
	}
}

func sortRebuildResults(results []RebuildResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].VariantID.String() < results[j].VariantID.String()
	})
}
