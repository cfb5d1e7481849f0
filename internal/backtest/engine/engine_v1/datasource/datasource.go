package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dca/internal/types"
)

// Filter narrows the rows a DataSource returns. Unset fields do not filter.
type Filter struct {
	Symbol optional.Option[string]
	Start  optional.Option[time.Time]
	End    optional.Option[time.Time]
}

// NoFilter returns a filter matching every row.
func NoFilter() Filter {
	return Filter{
		Symbol: optional.None[string](),
		Start:  optional.None[time.Time](),
		End:    optional.None[time.Time](),
	}
}

// ForSymbol returns a filter matching every row of one symbol.
func ForSymbol(symbol string) Filter {
	filter := NoFilter()
	if symbol != "" {
		filter.Symbol = optional.Some(symbol)
	}

	return filter
}

type DataSource interface {
	// Initialize loads daily bars from a parquet or CSV file. Glob patterns are accepted for parquet.
	Initialize(path string) error
	// ReadHistory returns the matching daily records in ascending time order.
	ReadHistory(filter Filter) (types.PriceHistory, error)
	// Symbols lists the distinct symbols in the loaded data.
	Symbols() ([]string, error)
	// Close releases any resources held by the data source.
	Close() error
}
