package ledger

import "github.com/shopspring/decimal"

// BeerTotals is cumulative delivered volume and billed amount.
type BeerTotals struct {
	Liters decimal.Decimal `json:"liters"`
	Billed decimal.Decimal `json:"billed"`
}

// ComputeBeerTotals sums qty*size and qty*price over OUT lines of billable
// categories. Returns do not reverse recognized revenue.
func ComputeBeerTotals(lines []LedgerLine) BeerTotals {
	totals := BeerTotals{Liters: decimal.Zero, Billed: decimal.Zero}
	for i := range lines {
		l := &lines[i]
		if l.Type != MovementTypeOut || l.Qty == 0 {
			continue
		}
		if !l.EffectiveCategory().IsBillable() {
			continue
		}
		qty := decimal.NewFromInt(l.Qty)
		totals.Liters = totals.Liters.Add(qty.Mul(l.SizeL))
		totals.Billed = totals.Billed.Add(qty.Mul(EffectiveUnitPrice(l.UnitPrice, l.VariantPrice)))
	}
	return totals
}

// EffectiveUnitPrice is the line override, else the variant price, else zero.
func EffectiveUnitPrice(override, variantPrice *decimal.Decimal) decimal.Decimal {
	switch {
	case override != nil:
		return *override
	case variantPrice != nil:
		return *variantPrice
	default:
		return decimal.Zero
	}
}
