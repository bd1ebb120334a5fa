package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSnapshotReader struct {
	snap StockSnapshot
	err  error
}

func (f *fakeSnapshotReader) StockSnapshot(context.Context) (StockSnapshot, error) {
	return f.snap, f.err
}

func gaugeValue(t *testing.T, rm metricdata.ResourceMetrics, name string) (int64, bool) {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0, false
	}
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "%s is not an int64 gauge", name)
	if len(gauge.DataPoints) == 0 {
		return 0, false
	}
	return gauge.DataPoints[0].Value, true
}

func TestRegisterStockGauges(t *testing.T) {
	reader, provider := newManualMeter(t)
	src := &fakeSnapshotReader{snap: StockSnapshot{OnHand: 42, BelowThreshold: 2, Shortfall: 7}}

	reg, err := RegisterStockGauges(provider.Meter("test"), src, zap.NewNop())
	require.NoError(t, err)

	rm := collect(t, reader)
	for name, want := range map[string]int64{
		"keg_stock_on_hand":         42,
		"keg_stock_below_threshold": 2,
		"keg_stock_shortfall":       7,
	} {
		got, ok := gaugeValue(t, rm, name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	require.NoError(t, reg.Unregister())
	src.snap.OnHand = 1
	rm = collect(t, reader)
	_, ok := gaugeValue(t, rm, "keg_stock_on_hand")
	assert.False(t, ok, "unregistered callback should not observe")
}

func TestRegisterStockGauges_ReadErrorSkipsCollection(t *testing.T) {
	reader, provider := newManualMeter(t)
	core, logs := observer.New(zapcore.WarnLevel)

	_, err := RegisterStockGauges(provider.Meter("test"), &fakeSnapshotReader{err: errors.New("database is locked")}, zap.New(core))
	require.NoError(t, err)

	rm := collect(t, reader)
	_, ok := gaugeValue(t, rm, "keg_stock_on_hand")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("stock snapshot failed").Len())
}

func TestRegisterStockGauges_NilMeter(t *testing.T) {
	_, err := RegisterStockGauges(nil, &fakeSnapshotReader{}, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestGormStockSnapshotReader(t *testing.T) {
	repos := testutil.NewSQLiteRepos(t)
	ctx := context.Background()

	t.Run("empty database reads zero", func(t *testing.T) {
		snap, err := NewGormStockSnapshotReader(repos.DB.DB).StockSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, StockSnapshot{}, snap)
	})

	t.Run("aggregates stock and reorder rules", func(t *testing.T) {
		stocked := repos.SeedVariant(t, "Blonde", catalog.CategoryStandardUnit, "20L", "20", "")
		low := repos.SeedVariant(t, "Ambree", catalog.CategoryStandardUnit, "30L", "30", "")
		never := repos.SeedVariant(t, "Gobelet", catalog.CategoryReusableCup, "25cl", "0.25", "")

		require.NoError(t, repos.Stock.Set(ctx, stocked.ID, 10))
		require.NoError(t, repos.Stock.Set(ctx, low.ID, 2))
		for v, minQty := range map[*catalog.Variant]int64{stocked: 5, low: 5, never: 4} {
			rule, err := inventory.NewReorderRule(v.ID, minQty)
			require.NoError(t, err)
			require.NoError(t, repos.Rule.Save(ctx, rule))
		}

		snap, err := NewGormStockSnapshotReader(repos.DB.DB).StockSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, StockSnapshot{OnHand: 12, BelowThreshold: 2, Shortfall: 7}, snap)
	})
}
