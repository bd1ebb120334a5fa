package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kegledger/backend/internal/domain/inventory"
)

// SqlxLedgerReportReader runs the reconciliation queries as plain SQL
// through sqlx. It shares the connection pool of the GORM database.
type SqlxLedgerReportReader struct {
	db *sqlx.DB
}

// NewSqlxLedgerReportReader creates a new SqlxLedgerReportReader
func NewSqlxLedgerReportReader(db *sqlx.DB) *SqlxLedgerReportReader {
	return &SqlxLedgerReportReader{db: db}
}

// NewSqlxLedgerReportReaderFromDatabase wraps the pool behind a Database.
// driverName selects the bind variable style ("postgres", "sqlite3").
func NewSqlxLedgerReportReaderFromDatabase(d *Database, driverName string) (*SqlxLedgerReportReader, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return NewSqlxLedgerReportReader(sqlx.NewDb(sqlDB, driverName)), nil
}

const stockDriftQuery = `
SELECT v.id AS variant_id,
       p.name AS product_name,
       COALESCE(i.qty, 0) AS cached_qty,
       COALESCE(SUM(CASE
           WHEN m.type = 'OUT' THEN -m.qty
           WHEN m.type = 'FULL' THEN m.qty
           ELSE 0
       END), 0) AS ledger_qty
FROM variants v
JOIN products p ON p.id = v.product_id
LEFT JOIN inventory i ON i.variant_id = v.id
LEFT JOIN movements m ON m.variant_id = v.id
GROUP BY v.id, p.name, v.label, i.qty
ORDER BY p.name, v.label`

// StockDrift compares the cached stock of every variant with the quantity
// folded from the ledger
func (r *SqlxLedgerReportReader) StockDrift(ctx context.Context) ([]inventory.Drift, error) {
	var drifts []inventory.Drift
	if err := r.db.SelectContext(ctx, &drifts, stockDriftQuery); err != nil {
		return nil, fmt.Errorf("query stock drift: %w", err)
	}
	return drifts, nil
}

// Ensure SqlxLedgerReportReader implements DriftReader
var _ inventory.DriftReader = (*SqlxLedgerReportReader)(nil)
