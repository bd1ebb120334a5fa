package ledger

import (
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// DepositSplit is the outstanding deposit, split between reusable cups and
// everything else (kegs). Values may be negative after over-returns.
type DepositSplit struct {
	CupDeposit decimal.Decimal `json:"cup_deposit"`
	CupQtyNet  int64           `json:"cup_qty_net"`
	KegDeposit decimal.Decimal `json:"keg_deposit"`
	KegQtyNet  int64           `json:"keg_qty_net"`
}

// Total is cup plus keg deposit.
func (d DepositSplit) Total() decimal.Decimal {
	return d.CupDeposit.Add(d.KegDeposit)
}

// ComputeDepositSplit folds sign * deposit * qty into the cup or keg bucket.
// Equipment-only lines are skipped. The line override is used when present
// and not negative, else the category default.
func ComputeDepositSplit(lines []LedgerLine) DepositSplit {
	split := DepositSplit{CupDeposit: decimal.Zero, KegDeposit: decimal.Zero}
	for i := range lines {
		l := &lines[i]
		if l.Qty == 0 {
			continue
		}
		sign := l.Type.Sign()
		if sign == 0 {
			continue
		}
		category := l.EffectiveCategory()
		if !category.CarriesDeposit() {
			continue
		}

		amount := LineDeposit(l.Deposit, category).Mul(decimal.NewFromInt(sign * l.Qty))
		if category.CountsAsCup() {
			split.CupDeposit = split.CupDeposit.Add(amount)
			split.CupQtyNet += sign * l.Qty
		} else {
			split.KegDeposit = split.KegDeposit.Add(amount)
			split.KegQtyNet += sign * l.Qty
		}
	}
	return split
}

// LineDeposit resolves the per-unit deposit of a line: the stored override
// when there is one, else the category default.
func LineDeposit(override *decimal.Decimal, category catalog.Category) decimal.Decimal {
	if override != nil {
		return *override
	}
	return category.DefaultDeposit()
}
