package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// OpenQuantityByVariant folds lines into OUT minus IN+DEFECT+FULL per
// variant. Values are signed and never clamped; the fold is order-independent.
func OpenQuantityByVariant(lines []LedgerLine) map[uuid.UUID]int64 {
	open := make(map[uuid.UUID]int64)
	for i := range lines {
		sign := lines[i].Type.Sign()
		if sign == 0 {
			continue
		}
		open[lines[i].VariantID] += sign * lines[i].Qty
	}
	return open
}

// PositiveTotal sums the balances above zero. It is the display total; the
// per-variant values stay signed.
func PositiveTotal(open map[uuid.UUID]int64) int64 {
	var total int64
	for _, n := range open {
		if n > 0 {
			total += n
		}
	}
	return total
}

// VariantBalance is the open quantity of one variant at one client.
type VariantBalance struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	Open        int64     `json:"open"`
}

// Balances returns one row per variant seen in the lines, ordered by name.
func Balances(lines []LedgerLine) []VariantBalance {
	open := OpenQuantityByVariant(lines)
	names := make(map[uuid.UUID]string, len(open))
	for i := range lines {
		names[lines[i].VariantID] = lines[i].DisplayName()
	}

	out := make([]VariantBalance, 0, len(open))
	for id, n := range open {
		out = append(out, VariantBalance{VariantID: id, ProductName: names[id], Open: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].VariantID.String() < out[j].VariantID.String()
	})
	return out
}

// Anomalies keeps the balances below zero: more was returned than delivered.
func Anomalies(balances []VariantBalance) []VariantBalance {
	var out []VariantBalance
	for _, b := range balances {
		if b.Open < 0 {
			out = append(out, b)
		}
	}
	return out
}
