package datasource

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
)

// InMemoryIndexedDataSource keeps daily bars in memory, indexed by symbol.
// It serves trial runs that read the same history many times and tests that
// build histories directly.
type InMemoryIndexedDataSource struct {
	underlying DataSource

	// data[symbol] is sorted by time.
	data map[string]types.PriceHistory

	preloaded bool

	mu sync.RWMutex
}

// NewInMemoryIndexedDataSource creates a data source that loads everything from
// underlying on Preload. underlying may be nil when records are added with Add.
func NewInMemoryIndexedDataSource(underlying DataSource) *InMemoryIndexedDataSource {
	return &InMemoryIndexedDataSource{
		underlying: underlying,
		data:       make(map[string]types.PriceHistory),
		preloaded:  false,
		mu:         sync.RWMutex{},
	}
}

// NewInMemoryDataSourceFromHistory creates a preloaded data source holding one symbol.
func NewInMemoryDataSourceFromHistory(symbol string, history types.PriceHistory) *InMemoryIndexedDataSource {
	ds := NewInMemoryIndexedDataSource(nil)
	ds.Add(symbol, history)

	return ds
}

// Add stores records for symbol, merging with anything already held.
func (ds *InMemoryIndexedDataSource) Add(symbol string, records types.PriceHistory) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	merged := append(ds.data[symbol], records...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})

	ds.data[symbol] = merged
	ds.preloaded = true
}

// Preload copies every symbol of the underlying data source into memory.
func (ds *InMemoryIndexedDataSource) Preload() error {
	if ds.underlying == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "no underlying data source to preload from")
	}

	symbols, err := ds.underlying.Symbols()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataNotFound, "failed to preload data", err)
	}

	// Single-file CSV data has no symbol column.
	if len(symbols) == 0 {
		symbols = []string{""}
	}

	data := make(map[string]types.PriceHistory, len(symbols))

	for _, symbol := range symbols {
		history, err := ds.underlying.ReadHistory(ForSymbol(symbol))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to preload %q", symbol)
		}

		data[symbol] = history
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.data = data
	ds.preloaded = true

	return nil
}

// IsPreloaded reports whether the data source holds data.
func (ds *InMemoryIndexedDataSource) IsPreloaded() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.preloaded
}

// Initialize implements DataSource.
func (ds *InMemoryIndexedDataSource) Initialize(path string) error {
	if ds.underlying == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "no underlying data source to initialize")
	}

	if err := ds.underlying.Initialize(path); err != nil {
		return err
	}

	return ds.Preload()
}

// ReadHistory implements DataSource.
func (ds *InMemoryIndexedDataSource) ReadHistory(filter Filter) (types.PriceHistory, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	history := make(types.PriceHistory, 0)

	for _, symbol := range ds.sortedSymbols() {
		for _, record := range ds.data[symbol] {
			if matches(filter, symbol, record) {
				history = append(history, record)
			}
		}
	}

	// Multiple symbols interleave by time.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Time.Before(history[j].Time)
	})

	return history, nil
}

// Symbols implements DataSource.
func (ds *InMemoryIndexedDataSource) Symbols() ([]string, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	symbols := make([]string, 0, len(ds.data))

	for _, symbol := range ds.sortedSymbols() {
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols, nil
}

// Close implements DataSource.
func (ds *InMemoryIndexedDataSource) Close() error {
	ds.mu.Lock()
	ds.data = make(map[string]types.PriceHistory)
	ds.preloaded = false
	ds.mu.Unlock()

	if ds.underlying != nil {
		return ds.underlying.Close()
	}

	return nil
}

func (ds *InMemoryIndexedDataSource) sortedSymbols() []string {
	symbols := make([]string, 0, len(ds.data))
	for symbol := range ds.data {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}
