package datasource

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// viewQuery returns the statement exposing a data file as the market_data view
// with columns time, symbol, open, high, low, close.
func viewQuery(path string) string {
	escaped := strings.ReplaceAll(path, "'", "''")

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		// Yahoo style exports: Date,Open,High,Low,Close,Adj Close,Volume.
		// The symbol comes from the file name.
		symbol := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), "'", "''")

		return fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT CAST("Date" AS TIMESTAMP) AS time,
			'%s' AS symbol,
			CAST("Open" AS DOUBLE) AS open,
			CAST("High" AS DOUBLE) AS high,
			CAST("Low" AS DOUBLE) AS low,
			CAST("Close" AS DOUBLE) AS close
		FROM read_csv_auto('%s', header = true);
	`, symbol, escaped)
	}

	return fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT time, symbol, open, high, low, close FROM read_parquet('%s');
	`, escaped)
}

func applyFilter(builder squirrel.SelectBuilder, filter Filter) squirrel.SelectBuilder {
	if filter.Symbol.IsSome() {
		builder = builder.Where(squirrel.Eq{"symbol": filter.Symbol.Unwrap()})
	}

	if filter.Start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": filter.Start.Unwrap()})
	}

	if filter.End.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": filter.End.Unwrap()})
	}

	return builder
}

func matches(filter Filter, symbol string, record types.DailyRecord) bool {
	if filter.Symbol.IsSome() && filter.Symbol.Unwrap() != symbol {
		return false
	}

	if filter.Start.IsSome() && record.Time.Before(filter.Start.Unwrap()) {
		return false
	}

	if filter.End.IsSome() && record.Time.After(filter.End.Unwrap()) {
		return false
	}

	return true
}

// validateRecord rejects bars with a non-positive price. High/low ordering is
// left to the data provider.
func validateRecord(record types.DailyRecord) error {
	names := []string{"open", "high", "low", "close"}
	values := []decimal.Decimal{record.Open, record.High, record.Low, record.Close}

	for i, value := range values {
		if !value.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidPrice, "non-positive %s price on %s", names[i], record.Time.Format(time.DateOnly))
		}
	}

	return nil
}
