package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variant(name, label string) catalog.VariantWithProduct {
	v := catalog.Variant{Label: label, SizeL: decimal.Zero}
	v.ID = uuid.New()
	return catalog.VariantWithProduct{Variant: v, ProductName: name, Category: catalog.Classify(name), Active: true}
}

func TestLedgerStock(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	movements := []ledger.Movement{
		{VariantID: a, Type: ledger.MovementTypeFull, Qty: 20},
		{VariantID: a, Type: ledger.MovementTypeOut, Qty: 5},
		{VariantID: a, Type: ledger.MovementTypeIn, Qty: 3},
		{VariantID: a, Type: ledger.MovementTypeDefect, Qty: 1},
		{VariantID: b, Type: ledger.MovementTypeOut, Qty: 2},
		{VariantID: uuid.New(), Type: ledger.MovementTypeIn, Qty: 9},
	}
	stock := LedgerStock(movements)
	assert.Equal(t, map[uuid.UUID]int64{a: 15, b: -2}, stock)
}

func TestBuildReorderAlerts(t *testing.T) {
	ipa := variant("IPA", "30L")
	stout := variant("Stout", "20L")
	amber := variant("Amber", "30L")
	cup := variant("Ecocup", "")
	unruled := variant("Lager", "30L")

	stock := map[uuid.UUID]int64{
		ipa.Variant.ID:     2,
		stout.Variant.ID:   9,
		cup.Variant.ID:     100,
		unruled.Variant.ID: -4,
	}
	rules := map[uuid.UUID]int64{
		ipa.Variant.ID:   10,
		stout.Variant.ID: 10,
		amber.Variant.ID: 8,
		cup.Variant.ID:   50,
	}

	rows := BuildStockRows([]catalog.VariantWithProduct{ipa, stout, amber, cup, unruled}, stock, rules)
	require.Len(t, rows, 5)
	assert.Equal(t, "Amber", rows[0].ProductName)
	assert.Equal(t, int64(0), rows[0].Qty)
	assert.True(t, rows[0].Alert)
	assert.Nil(t, rows[3].MinQty)
	assert.False(t, rows[3].Alert)

	alerts := BuildReorderAlerts(rows)
	require.Len(t, alerts, 3)
	assert.Equal(t, "Amber", alerts[0].ProductName)
	assert.Equal(t, int64(8), alerts[0].Shortfall)
	assert.Equal(t, "IPA", alerts[1].ProductName)
	assert.Equal(t, int64(8), alerts[1].Shortfall)
	assert.Equal(t, "Stout", alerts[2].ProductName)
	assert.Equal(t, int64(1), alerts[2].Shortfall)
}

func TestBuildReorderAlerts_NoRulesNoAlerts(t *testing.T) {
	v := variant("IPA", "")
	rows := BuildStockRows([]catalog.VariantWithProduct{v}, map[uuid.UUID]int64{v.Variant.ID: -100}, nil)
	assert.Empty(t, BuildReorderAlerts(rows))
}

func TestNewReorderRule(t *testing.T) {
	_, err := NewReorderRule(uuid.New(), -1)
	assert.Error(t, err)
	_, err = NewReorderRule(uuid.Nil, 1)
	assert.Error(t, err)

	r, err := NewReorderRule(uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.MinQty)
}

func TestDrift(t *testing.T) {
	assert.Equal(t, int64(3), Drift{Cached: 5, Ledger: 2}.Diff())
	e := NewStockBelowThresholdEvent(Alert{VariantID: uuid.New(), Qty: 1, MinQty: 4})
	assert.Equal(t, int64(3), e.Shortfall())
	assert.Equal(t, EventTypeStockBelowThreshold, e.EventType())
}
