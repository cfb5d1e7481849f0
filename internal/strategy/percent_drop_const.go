package strategy

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// PercentDropConstTradeConfig configures a percent-drop policy with a fixed order size.
type PercentDropConstTradeConfig struct {
	Name        string
	PercentDown decimal.Decimal
	Duration    int
	TradeAmount decimal.Decimal
}

// PercentDropConstTrade buys TradeAmount dollars on every drop day of the
// window. Funds are unlimited.
type PercentDropConstTrade struct {
	Book

	config    PercentDropConstTradeConfig
	condition DropCondition
	purchases []Purchase
}

var _ Strategy = (*PercentDropConstTrade)(nil)

// NewPercentDropConstTrade validates the config and returns a ready strategy.
func NewPercentDropConstTrade(config PercentDropConstTradeConfig) (*PercentDropConstTrade, error) {
	condition, err := NewDropCondition(config.PercentDown)
	if err != nil {
		return nil, err
	}

	if err := validateDuration(config.Duration); err != nil {
		return nil, err
	}

	if !config.TradeAmount.IsPositive() {
		return nil, errors.Newf(errors.ErrCodeInvalidAmount, "trade amount must be positive, got %s", config.TradeAmount)
	}

	if config.Name == "" {
		config.Name = config.PercentDown.String() + "% down const trade"
	}

	return &PercentDropConstTrade{
		Book:      Book{},
		config:    config,
		condition: condition,
		purchases: nil,
	}, nil
}

// Name implements Strategy.
func (s *PercentDropConstTrade) Name() string {
	return s.config.Name
}

// Purchases returns the drop days selected in the current trial.
func (s *PercentDropConstTrade) Purchases() []Purchase {
	return s.purchases
}

// Execute implements Strategy.
func (s *PercentDropConstTrade) Execute(window types.PriceWindow) error {
	if err := s.beginExecution(s.config.Name); err != nil {
		return err
	}

	s.purchases = SelectDropPurchases(window, s.config.Duration, s.condition)

	for _, purchase := range s.purchases {
		if err := s.buyAt(purchase.Offset, s.config.TradeAmount, purchase.Price); err != nil {
			return err
		}
	}

	return nil
}

// Reset implements Strategy.
func (s *PercentDropConstTrade) Reset() {
	s.Book.Reset()
	s.purchases = nil
}
