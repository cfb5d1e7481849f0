package writer

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
)

// MarketDataWriter defines the interface for writing daily bars to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single daily bar of the given symbol.
	Write(symbol string, record types.DailyRecord) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
