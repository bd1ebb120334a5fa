package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
)

// StockRow is the per-variant stock projection.
type StockRow struct {
	VariantID    uuid.UUID        `json:"variant_id"`
	ProductName  string           `json:"product_name"`
	VariantLabel string           `json:"variant_label"`
	Category     catalog.Category `json:"category"`
	Qty          int64            `json:"qty"`
	MinQty       *int64           `json:"min_qty,omitempty"`
	Alert        bool             `json:"alert"`
}

// Alert is a variant whose stock is below its reorder threshold.
type Alert struct {
	VariantID    uuid.UUID `json:"variant_id"`
	ProductName  string    `json:"product_name"`
	VariantLabel string    `json:"variant_label"`
	Qty          int64     `json:"qty"`
	MinQty       int64     `json:"min_qty"`
	Shortfall    int64     `json:"shortfall"`
}

// BuildStockRows joins variants with cached stock and rules. A variant with
// no stock row counts as zero.
func BuildStockRows(variants []catalog.VariantWithProduct, stock map[uuid.UUID]int64, rules map[uuid.UUID]int64) []StockRow {
	rows := make([]StockRow, 0, len(variants))
	for _, v := range variants {
		row := StockRow{
			VariantID:    v.Variant.ID,
			ProductName:  v.ProductName,
			VariantLabel: v.Variant.Label,
			Category:     v.Category,
			Qty:          stock[v.Variant.ID],
		}
		if threshold, ok := rules[v.Variant.ID]; ok {
			row.MinQty = &threshold
			row.Alert = row.Qty < threshold
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProductName != rows[j].ProductName {
			return rows[i].ProductName < rows[j].ProductName
		}
		return rows[i].VariantLabel < rows[j].VariantLabel
	})
	return rows
}

// BuildReorderAlerts keeps rows below their threshold, worst shortfall first
// and then by product name.
func BuildReorderAlerts(rows []StockRow) []Alert {
	alerts := make([]Alert, 0)
	for _, r := range rows {
		if r.MinQty == nil || r.Qty >= *r.MinQty {
			continue
		}
		alerts = append(alerts, Alert{
			VariantID:    r.VariantID,
			ProductName:  r.ProductName,
			VariantLabel: r.VariantLabel,
			Qty:          r.Qty,
			MinQty:       *r.MinQty,
			Shortfall:    *r.MinQty - r.Qty,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Shortfall != alerts[j].Shortfall {
			return alerts[i].Shortfall > alerts[j].Shortfall
		}
		if alerts[i].ProductName != alerts[j].ProductName {
			return alerts[i].ProductName < alerts[j].ProductName
		}
		return alerts[i].VariantLabel < alerts[j].VariantLabel
	})
	return alerts
}
