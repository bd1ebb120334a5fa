package ledger_test

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/kegledger/backend/internal/application/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/cache"
	"github.com/kegledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func counterBy(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.Emit()] += dp.Value
			}
		}
	}
	return out
}

func TestMovementService_LedgerMetrics(t *testing.T) {
	f := newMovementFixture(t)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := telemetry.NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)
	f.service.SetLedgerMetrics(metrics)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	f.service.SetIdempotencyStore(store, shared.IdempotencyConfig{TTL: time.Hour, Enabled: true})
	ctx := context.Background()

	req := ledgerapp.RecordBatchRequest{
		ClientID:       f.client,
		IdempotencyKey: "k1",
		Lines:          []ledgerapp.LineInput{in(f.keg, "OUT", "3"), in(f.cup, "OUT", "50")},
	}
	result, err := f.service.RecordBatch(ctx, req)
	require.NoError(t, err)
	_, err = f.service.RecordBatch(ctx, req)
	require.ErrorIs(t, err, shared.ErrDuplicateBatch)
	_, err = f.service.RecordBatch(ctx, ledgerapp.RecordBatchRequest{
		ClientID: f.client,
		Lines:    []ledgerapp.LineInput{in(f.keg, "IN", "10")},
	})
	require.Error(t, err)
	require.NoError(t, f.service.DeleteMovement(ctx, result.Movements[1].ID))

	assert.Equal(t, map[string]int64{"recorded": 1, "duplicate": 1, "rejected": 1},
		counterBy(t, reader, "keg_ledger_batches_total", "outcome"))
	assert.Equal(t, map[string]int64{"OUT": 53},
		counterBy(t, reader, "keg_ledger_units_total", "type"))
	assert.Equal(t, map[string]int64{"OUT": 1},
		counterBy(t, reader, "keg_ledger_movements_deleted_total", "type"))
}
