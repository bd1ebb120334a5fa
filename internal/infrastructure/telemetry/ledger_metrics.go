package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/kegledger/backend/internal/domain/ledger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BatchOutcome labels what happened to a submitted batch
type BatchOutcome string

const (
	BatchRecorded  BatchOutcome = "recorded"
	BatchRejected  BatchOutcome = "rejected"
	BatchDuplicate BatchOutcome = "duplicate"
)

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerMetrics counts ledger and stock cache activity. A nil *LedgerMetrics
// records nothing, so services can hold one unconditionally.
type LedgerMetrics struct {
	batches      metric.Int64Counter
	lines        metric.Int64Counter
	units        metric.Int64Counter
	batchSize    metric.Int64Histogram
	deletions    metric.Int64Counter
	rebuilds     metric.Int64Counter
	driftUnits   metric.Int64Counter
	reorderAlert metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error
	if m.batches, err = meter.Int64Counter("keg_ledger_batches_total",
		metric.WithDescription("Movement batches submitted, by outcome"),
		metric.WithUnit("{batches}")); err != nil {
		return nil, instrumentError("keg_ledger_batches_total", err)
	}
	if m.lines, err = meter.Int64Counter("keg_ledger_lines_total",
		metric.WithDescription("Movement lines recorded, by type"),
		metric.WithUnit("{lines}")); err != nil {
		return nil, instrumentError("keg_ledger_lines_total", err)
	}
	if m.units, err = meter.Int64Counter("keg_ledger_units_total",
		metric.WithDescription("Kegs and cups moved, by movement type"),
		metric.WithUnit("{units}")); err != nil {
		return nil, instrumentError("keg_ledger_units_total", err)
	}
	if m.batchSize, err = meter.Int64Histogram("keg_ledger_batch_lines",
		metric.WithDescription("Lines per recorded batch"),
		metric.WithUnit("{lines}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50, 100)); err != nil {
		return nil, instrumentError("keg_ledger_batch_lines", err)
	}
	if m.deletions, err = meter.Int64Counter("keg_ledger_movements_deleted_total",
		metric.WithDescription("Movements deleted from client ledgers"),
		metric.WithUnit("{movements}")); err != nil {
		return nil, instrumentError("keg_ledger_movements_deleted_total", err)
	}
	if m.rebuilds, err = meter.Int64Counter("keg_stock_rebuilds_total",
		metric.WithDescription("Variants whose cached stock was rebuilt from the ledger, by drift"),
		metric.WithUnit("{variants}")); err != nil {
		return nil, instrumentError("keg_stock_rebuilds_total", err)
	}
	if m.driftUnits, err = meter.Int64Counter("keg_stock_drift_units_total",
		metric.WithDescription("Absolute stock cache drift repaired by rebuilds"),
		metric.WithUnit("{units}")); err != nil {
		return nil, instrumentError("keg_stock_drift_units_total", err)
	}
	if m.reorderAlert, err = meter.Int64Counter("keg_stock_reorder_alerts_total",
		metric.WithDescription("Below-threshold alerts raised after stock changes"),
		metric.WithUnit("{alerts}")); err != nil {
		return nil, instrumentError("keg_stock_reorder_alerts_total", err)
	}
	return m, nil
}

func instrumentError(name string, err error) error {
	return fmt.Errorf("create instrument %s: %w", name, err)
}

// RecordBatch counts a submitted batch. Lines and units are only counted
// for recorded batches.
func (m *LedgerMetrics) RecordBatch(ctx context.Context, outcome BatchOutcome, movements []*ledger.Movement) {
	if m == nil {
		return
	}
	m.batches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	if outcome != BatchRecorded {
		return
	}
	m.batchSize.Record(ctx, int64(len(movements)))
	for _, mv := range movements {
		attrs := metric.WithAttributes(attribute.String("type", string(mv.Type)))
		m.lines.Add(ctx, 1, attrs)
		if mv.Qty > 0 {
			m.units.Add(ctx, mv.Qty, attrs)
		}
	}
}

// RecordDeletion counts a deleted movement
func (m *LedgerMetrics) RecordDeletion(ctx context.Context, movementType ledger.MovementType) {
	if m == nil {
		return
	}
	m.deletions.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(movementType))))
}

// RecordRebuild counts one rebuilt variant and the drift it repaired
func (m *LedgerMetrics) RecordRebuild(ctx context.Context, previous, rebuilt int64) {
	if m == nil {
		return
	}
	drift := rebuilt - previous
	m.rebuilds.Add(ctx, 1, metric.WithAttributes(attribute.Bool("drifted", drift != 0)))
	if drift < 0 {
		drift = -drift
	}
	if drift > 0 {
		m.driftUnits.Add(ctx, drift)
	}
}

// RecordReorderAlerts counts alerts raised by a threshold check
func (m *LedgerMetrics) RecordReorderAlerts(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reorderAlert.Add(ctx, int64(n))
}
