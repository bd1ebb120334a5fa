package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "telemetry:started_at"

// DBConfig controls GORM instrumentation
type DBConfig struct {
	Enabled            bool
	DBSystem           string // postgresql or sqlite
	LogFullSQL         bool   // keep query variables in span statements
	SlowQueryThreshold time.Duration
	TracerProvider     trace.TracerProvider // nil uses the global provider
	Meter              metric.Meter         // nil skips the slow query counter
}

type dbInstrumentation struct {
	cfg  DBConfig
	slow metric.Int64Counter
}

// InstrumentDatabase adds otelgorm spans to every statement of db and marks
// statements slower than the threshold on their span and in the
// keg_db_slow_queries_total counter.
func InstrumentDatabase(db *gorm.DB, cfg DBConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutMetrics(),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	inst := &dbInstrumentation{cfg: cfg}
	if cfg.Meter != nil {
		slow, err := cfg.Meter.Int64Counter("keg_db_slow_queries_total",
			metric.WithDescription("Statements slower than the slow query threshold, by table"),
			metric.WithUnit("{queries}"))
		if err != nil {
			return instrumentError("keg_db_slow_queries_total", err)
		}
		inst.slow = slow
	}
	if err := inst.register(db); err != nil {
		return fmt.Errorf("register slow query callbacks: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

// register hooks a timer around each GORM operation. The after hooks run
// before otelgorm's, which end the span.
func (d *dbInstrumentation) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", d.start),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("telemetry:after_create", d.finish),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", d.start),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("telemetry:after_query", d.finish),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", d.start),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("telemetry:after_update", d.finish),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", d.start),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("telemetry:after_delete", d.finish),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", d.start),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("telemetry:after_row", d.finish),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", d.start),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("telemetry:after_raw", d.finish),
	)
}

func (d *dbInstrumentation) start(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (d *dbInstrumentation) finish(db *gorm.DB) {
	v, ok := db.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	startedAt, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startedAt)
	if elapsed <= d.cfg.SlowQueryThreshold {
		return
	}
	ctx := db.Statement.Context
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	if d.slow != nil {
		d.slow.Add(ctx, 1, metric.WithAttributes(attribute.String("table", db.Statement.Table)))
	}
}
