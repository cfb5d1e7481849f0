package datasource

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"go.uber.org/zap"
)

const marketDataView = "market_data"

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source. path is the DuckDB database
// location; an empty path or ":memory:" keeps everything in memory.
// This is distinct from Initialize() which loads the daily bars.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return fmt.Errorf("failed to drop existing view: %w", err)
	}

	// Squirrel has no CREATE VIEW support.
	_, err = d.db.Exec(viewQuery(path))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load market data from %s", path)
	}

	return nil
}

// ReadHistory implements DataSource.
func (d *DuckDBDataSource) ReadHistory(filter Filter) (types.PriceHistory, error) {
	query, args, err := applyFilter(
		d.sq.Select("time", "open", "high", "low", "close").From(marketDataView),
		filter,
	).OrderBy("time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	history := make(types.PriceHistory, 0)

	for rows.Next() {
		var (
			timestamp                    time.Time
			open, high, low, closePrice float64
		)

		if err := rows.Scan(&timestamp, &open, &high, &low, &closePrice); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := types.NewDailyRecord(timestamp, open, high, low, closePrice)
		if err := validateRecord(record); err != nil {
			return nil, err
		}

		history = append(history, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	d.logger.Debug("Loaded price history", zap.Int("records", len(history)))

	return history, nil
}

// Symbols implements DataSource.
func (d *DuckDBDataSource) Symbols() ([]string, error) {
	query, args, err := d.sq.
		Select("DISTINCT symbol").
		From(marketDataView).
		Where(squirrel.NotEq{"symbol": ""}).
		OrderBy("symbol ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list symbols", err)
	}
	defer rows.Close()

	symbols := make([]string, 0)

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
