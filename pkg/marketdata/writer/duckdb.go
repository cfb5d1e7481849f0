package writer

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-dca/internal/types"
)

// DuckDBWriter buffers daily bars in an in-memory DuckDB table and exports
// them to a parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	written    int
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath is the parquet file written by Finalize.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		db:         nil,
		tx:         nil,
		stmt:       nil,
		outputPath: outputPath,
		written:    0,
	}
}

// Initialize opens the database, creates the market_data table, begins a
// transaction and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	if w.db != nil {
		return nil
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE
		)
	`)
	if err != nil {
		db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	w.db = db
	w.tx = tx
	w.stmt = stmt
	w.written = 0

	return nil
}

// Write inserts one bar within the open transaction.
func (w *DuckDBWriter) Write(symbol string, record types.DailyRecord) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		record.Time,
		symbol,
		record.Open.InexactFloat64(),
		record.High.InexactFloat64(),
		record.Low.InexactFloat64(),
		record.Close.InexactFloat64(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	w.written++

	return nil
}

// Written returns the number of bars inserted since Initialize.
func (w *DuckDBWriter) Written() int {
	return w.written
}

// Finalize commits the transaction and exports the bars, ordered by time, to parquet.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.stmt.Close(); err != nil {
		return "", fmt.Errorf("failed to close statement: %w", err)
	}

	w.stmt = nil

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	escaped := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err = w.db.Exec(fmt.Sprintf(
		`COPY (SELECT id, time, symbol, open, high, low, close FROM market_data ORDER BY time) TO '%s' (FORMAT PARQUET)`,
		escaped,
	))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close releases the statement, rolls back an unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to rollback transaction: %w", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	return errors.Join(closeErrors...)
}

// GetOutputPath returns the parquet file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
