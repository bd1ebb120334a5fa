package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockSnapshot is the stock state read at each metric collection
type StockSnapshot struct {
	OnHand         int64 // sum of cached stock over all variants
	BelowThreshold int64 // variants under their reorder rule
	Shortfall      int64 // units needed to bring them back to their rule
}

// StockSnapshotReader reads the current StockSnapshot
type StockSnapshotReader interface {
	StockSnapshot(ctx context.Context) (StockSnapshot, error)
}

// GormStockSnapshotReader aggregates the inventory and reorder_rules tables
type GormStockSnapshotReader struct {
	db *gorm.DB
}

// NewGormStockSnapshotReader creates a GormStockSnapshotReader
func NewGormStockSnapshotReader(db *gorm.DB) *GormStockSnapshotReader {
	return &GormStockSnapshotReader{db: db}
}

// StockSnapshot implements StockSnapshotReader. A variant with a rule and no
// inventory row counts as zero stock.
func (r *GormStockSnapshotReader) StockSnapshot(ctx context.Context) (StockSnapshot, error) {
	var snap StockSnapshot
	if err := r.db.WithContext(ctx).
		Table("inventory").
		Select("COALESCE(SUM(qty), 0)").
		Scan(&snap.OnHand).Error; err != nil {
		return StockSnapshot{}, fmt.Errorf("sum stock on hand: %w", err)
	}

	var below struct {
		Variants  int64
		Shortfall int64
	}
	if err := r.db.WithContext(ctx).
		Table("reorder_rules AS r").
		Joins("LEFT JOIN inventory AS i ON i.variant_id = r.variant_id").
		Where("COALESCE(i.qty, 0) < r.min_qty").
		Select("COUNT(*) AS variants, COALESCE(SUM(r.min_qty - COALESCE(i.qty, 0)), 0) AS shortfall").
		Scan(&below).Error; err != nil {
		return StockSnapshot{}, fmt.Errorf("count variants below threshold: %w", err)
	}
	snap.BelowThreshold = below.Variants
	snap.Shortfall = below.Shortfall
	return snap, nil
}

// RegisterStockGauges observes reader on every collection of meter. The
// returned registration stops the observation when unregistered.
func RegisterStockGauges(meter metric.Meter, reader StockSnapshotReader, logger *zap.Logger) (metric.Registration, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	onHand, err := meter.Int64ObservableGauge("keg_stock_on_hand",
		metric.WithDescription("Kegs and cups in the warehouse according to the stock cache"),
		metric.WithUnit("{units}"))
	if err != nil {
		return nil, instrumentError("keg_stock_on_hand", err)
	}
	below, err := meter.Int64ObservableGauge("keg_stock_below_threshold",
		metric.WithDescription("Variants under their reorder threshold"),
		metric.WithUnit("{variants}"))
	if err != nil {
		return nil, instrumentError("keg_stock_below_threshold", err)
	}
	shortfall, err := meter.Int64ObservableGauge("keg_stock_shortfall",
		metric.WithDescription("Units needed to bring every variant back to its reorder threshold"),
		metric.WithUnit("{units}"))
	if err != nil {
		return nil, instrumentError("keg_stock_shortfall", err)
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		snap, err := reader.StockSnapshot(ctx)
		if err != nil {
			// a failed read skips this collection only
			logger.Warn("stock snapshot failed", zap.Error(err))
			return nil
		}
		o.ObserveInt64(onHand, snap.OnHand)
		o.ObserveInt64(below, snap.BelowThreshold)
		o.ObserveInt64(shortfall, snap.Shortfall)
		return nil
	}, onHand, below, shortfall)
}
