package strategy

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// PercentDropLimitedConfig configures a percent-drop policy with a capital limit.
type PercentDropLimitedConfig struct {
	Name        string
	PercentDown decimal.Decimal
	Duration    int
	Capital     decimal.Decimal
}

// PercentDropLimitedFunds buys on drop days with a pro-rata order size. The
// size is capital / estimated trade count, where the estimate comes from the
// whole history (see EstimateTradeCount) and is reused by every trial. A trial
// books at most the estimated number of orders, so capital may stay undeployed
// and windows with many drop days get truncated.
type PercentDropLimitedFunds struct {
	Book

	config    PercentDropLimitedConfig
	condition DropCondition

	estimatedTrades int
	orderAmount     decimal.Decimal
	calibrated      bool

	funds     decimal.Decimal
	purchases []Purchase
}

var (
	_ Strategy   = (*PercentDropLimitedFunds)(nil)
	_ Calibrator = (*PercentDropLimitedFunds)(nil)
)

// NewPercentDropLimitedFunds validates the config. The strategy must be
// calibrated (Calibrate or SetEstimatedTradeCount) before it can execute.
func NewPercentDropLimitedFunds(config PercentDropLimitedConfig) (*PercentDropLimitedFunds, error) {
	condition, err := NewDropCondition(config.PercentDown)
	if err != nil {
		return nil, err
	}

	if err := validateDuration(config.Duration); err != nil {
		return nil, err
	}

	if !config.Capital.IsPositive() {
		return nil, errors.Newf(errors.ErrCodeInvalidAmount, "capital must be positive, got %s", config.Capital)
	}

	if config.Name == "" {
		config.Name = config.PercentDown.String() + "% down limited"
	}

	return &PercentDropLimitedFunds{
		Book:            Book{},
		config:          config,
		condition:       condition,
		estimatedTrades: 0,
		orderAmount:     decimal.Zero,
		calibrated:      false,
		funds:           config.Capital,
		purchases:       nil,
	}, nil
}

// Name implements Strategy.
func (s *PercentDropLimitedFunds) Name() string {
	return s.config.Name
}

// Calibrate implements Calibrator by estimating the trade count over the full history.
func (s *PercentDropLimitedFunds) Calibrate(history types.PriceHistory) error {
	if history.Len() == 0 {
		return errors.New(errors.ErrCodeNoDataFound, "cannot calibrate on an empty history")
	}

	s.SetEstimatedTradeCount(EstimateTradeCount(history, s.config.Duration, s.condition))

	return nil
}

// SetEstimatedTradeCount fixes the estimate and the derived order size. An
// estimate below 1 means the condition never triggered; it is clamped to 1.
func (s *PercentDropLimitedFunds) SetEstimatedTradeCount(count int) {
	if count < 1 {
		count = 1
	}

	s.estimatedTrades = count
	s.orderAmount = s.config.Capital.Div(decimal.NewFromInt(int64(count)))
	s.calibrated = true
}

// EstimatedTradeCount returns the calibrated estimate.
func (s *PercentDropLimitedFunds) EstimatedTradeCount() int {
	return s.estimatedTrades
}

// OrderAmount returns the per-purchase allocation.
func (s *PercentDropLimitedFunds) OrderAmount() decimal.Decimal {
	return s.orderAmount
}

// Funds returns the capital not yet deployed in the current trial.
func (s *PercentDropLimitedFunds) Funds() decimal.Decimal {
	return s.funds
}

// Purchases returns the drop days selected in the current trial.
func (s *PercentDropLimitedFunds) Purchases() []Purchase {
	return s.purchases
}

// Execute implements Strategy.
func (s *PercentDropLimitedFunds) Execute(window types.PriceWindow) error {
	if !s.calibrated {
		return errors.Newf(errors.ErrCodeStrategyNotCalibrated, "strategy %q has no trade count estimate", s.config.Name)
	}

	if err := s.beginExecution(s.config.Name); err != nil {
		return err
	}

	s.purchases = SelectDropPurchases(window, s.config.Duration, s.condition)

	for _, purchase := range s.purchases {
		// The order size is rounded, so the funds may be a hair short on the last order.
		if s.OrderCount() >= s.estimatedTrades {
			break
		}

		if err := s.buyAt(purchase.Offset, s.orderAmount, purchase.Price); err != nil {
			return err
		}

		s.funds = decimal.Max(s.funds.Sub(s.orderAmount), decimal.Zero)
	}

	return nil
}

// Reset implements Strategy. The calibration survives a reset.
func (s *PercentDropLimitedFunds) Reset() {
	s.Book.Reset()
	s.funds = s.config.Capital
	s.purchases = nil
}
