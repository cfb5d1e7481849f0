package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// IntervalConfig configures a fixed-cadence purchase policy.
type IntervalConfig struct {
	Name string
	// Interval is the number of trading days between purchases.
	Interval int
	// Duration is the number of leading trading days of the window eligible for purchases.
	Duration int
	// Capital is the total amount spread evenly over the purchases.
	Capital decimal.Decimal
	// PriceField is the daily price purchases fill at.
	PriceField types.PriceField
}

// IntervalStrategy buys on every window offset that is a multiple of the
// interval, starting at offset 0, splitting the capital evenly across those days.
type IntervalStrategy struct {
	Book

	config IntervalConfig

	orderAmount     decimal.Decimal
	purchaseOffsets []int
}

var _ Strategy = (*IntervalStrategy)(nil)

// IntervalName is the display name used for generated interval strategies.
func IntervalName(interval int) string {
	return fmt.Sprintf("every %d days", interval)
}

// NewIntervalStrategy validates the config and returns a ready strategy.
func NewIntervalStrategy(config IntervalConfig) (*IntervalStrategy, error) {
	if config.Interval < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "interval must be at least 1, got %d", config.Interval)
	}

	if config.Duration < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidDuration, "duration must be at least 1, got %d", config.Duration)
	}

	if !config.Capital.IsPositive() {
		return nil, errors.Newf(errors.ErrCodeInvalidAmount, "capital must be positive, got %s", config.Capital)
	}

	if config.PriceField == "" {
		config.PriceField = types.PriceFieldOpen
	}

	if _, err := types.ParsePriceField(string(config.PriceField)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid price field", err)
	}

	if config.Name == "" {
		config.Name = IntervalName(config.Interval)
	}

	return &IntervalStrategy{
		Book:            Book{},
		config:          config,
		orderAmount:     decimal.Zero,
		purchaseOffsets: nil,
	}, nil
}

// Name implements Strategy.
func (s *IntervalStrategy) Name() string {
	return s.config.Name
}

// Interval returns the number of trading days between purchases.
func (s *IntervalStrategy) Interval() int {
	return s.config.Interval
}

// Config returns the strategy configuration.
func (s *IntervalStrategy) Config() IntervalConfig {
	return s.config
}

// PurchaseOffsets returns the window offsets the strategy buys on: every
// multiple of the interval below the duration. When the duration is shorter
// than the interval only offset 0 qualifies.
func (s *IntervalStrategy) PurchaseOffsets(window types.PriceWindow) []int {
	limit := min(s.config.Duration, window.Len())
	offsets := make([]int, 0, limit/s.config.Interval+1)

	for offset := 0; offset < limit; offset += s.config.Interval {
		offsets = append(offsets, offset)
	}

	return offsets
}

// OrderAmount is the per-purchase allocation of the current trial.
func (s *IntervalStrategy) OrderAmount() decimal.Decimal {
	return s.orderAmount
}

// Execute implements Strategy. Every selected day buys unconditionally; the
// allocation is sized so the purchases add up to the capital.
func (s *IntervalStrategy) Execute(window types.PriceWindow) error {
	if err := s.beginExecution(s.config.Name); err != nil {
		return err
	}

	s.purchaseOffsets = s.PurchaseOffsets(window)
	if len(s.purchaseOffsets) == 0 {
		return nil
	}

	s.orderAmount = s.config.Capital.Div(decimal.NewFromInt(int64(len(s.purchaseOffsets))))

	for _, offset := range s.purchaseOffsets {
		price := s.config.PriceField.Value(window.At(offset))
		if err := s.buyAt(offset, s.orderAmount, price); err != nil {
			return err
		}
	}

	return nil
}

// Reset implements Strategy.
func (s *IntervalStrategy) Reset() {
	s.Book.Reset()
	s.orderAmount = decimal.Zero
	s.purchaseOffsets = nil
}
