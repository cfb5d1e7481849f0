package strategy

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// Strategy is a purchase policy replayed over one price window per trial.
// A Strategy holds per-trial state, so one instance must not be used by two
// trials at the same time.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string
	// Execute selects purchase days in the window and books the simulated buys.
	// Calling Execute twice without Reset in between returns ErrCodeStrategyAlreadyExecuted.
	Execute(window types.PriceWindow) error
	// BuyInDollars books a purchase of amount dollars at price.
	BuyInDollars(amount decimal.Decimal, price decimal.Decimal) error
	// UpdateValuationPrice sets the price used to value the held shares.
	UpdateValuationPrice(price decimal.Decimal) error
	// NetReturn is the current valuation minus the cost basis.
	NetReturn() decimal.Decimal
	// PercentReturn is valuation / cost basis - 1, and exactly 0 when nothing was bought.
	PercentReturn() decimal.Decimal
	// Snapshot captures the trial result without changing state.
	Snapshot() types.ResultSnapshot
	// Reset returns the per-trial state to zero so the strategy can run another trial.
	Reset()
}

// Calibrator is implemented by strategies that size their orders from the full
// price history. The engine calls Calibrate once before the first trial.
type Calibrator interface {
	Calibrate(history types.PriceHistory) error
}

var hundred = decimal.NewFromInt(100)

// Book is the bookkeeping shared by every purchase policy: shares held, cost
// basis, valuation price and order count. Policies embed it.
type Book struct {
	shares         decimal.Decimal
	costBasis      decimal.Decimal
	valuationPrice decimal.Decimal
	orderCount     int
	executed       bool
}

// BuyInDollars implements Strategy.
func (b *Book) BuyInDollars(amount decimal.Decimal, price decimal.Decimal) error {
	if !price.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidPrice, "buy price must be positive, got %s", price)
	}

	if !amount.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidAmount, "buy amount must be positive, got %s", amount)
	}

	b.costBasis = b.costBasis.Add(amount)
	b.shares = b.shares.Add(amount.Div(price))
	b.orderCount++

	return nil
}

// buyAt books a purchase made on a window offset, naming the offset on failure.
func (b *Book) buyAt(offset int, amount decimal.Decimal, price decimal.Decimal) error {
	if err := b.BuyInDollars(amount, price); err != nil {
		return errors.Wrapf(errors.GetCode(err), err, "purchase at offset %d", offset)
	}

	return nil
}

// UpdateValuationPrice implements Strategy.
func (b *Book) UpdateValuationPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidPrice, "valuation price must be positive, got %s", price)
	}

	b.valuationPrice = price

	return nil
}

// CurrentValue is the value of the held shares at the valuation price.
func (b *Book) CurrentValue() decimal.Decimal {
	return b.shares.Mul(b.valuationPrice)
}

// NetReturn implements Strategy.
func (b *Book) NetReturn() decimal.Decimal {
	return b.CurrentValue().Sub(b.costBasis)
}

// PercentReturn implements Strategy.
func (b *Book) PercentReturn() decimal.Decimal {
	if b.costBasis.IsZero() {
		return decimal.Zero
	}

	return b.CurrentValue().Div(b.costBasis).Sub(decimal.NewFromInt(1))
}

// Shares returns the number of shares held.
func (b *Book) Shares() decimal.Decimal {
	return b.shares
}

// CostBasis returns the dollars committed to purchases.
func (b *Book) CostBasis() decimal.Decimal {
	return b.costBasis
}

// OrderCount returns the number of purchases booked.
func (b *Book) OrderCount() int {
	return b.orderCount
}

// Snapshot implements Strategy.
func (b *Book) Snapshot() types.ResultSnapshot {
	return types.ResultSnapshot{
		OrderCount:     b.orderCount,
		TotalSpent:     b.costBasis,
		FinalValuation: b.CurrentValue(),
		NetReturn:      b.NetReturn(),
		PercentReturn:  b.PercentReturn(),
	}
}

// Reset clears the bookkeeping.
func (b *Book) Reset() {
	b.shares = decimal.Zero
	b.costBasis = decimal.Zero
	b.valuationPrice = decimal.Zero
	b.orderCount = 0
	b.executed = false
}

// beginExecution guards against replaying a window without a Reset.
func (b *Book) beginExecution(name string) error {
	if b.executed {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExecuted, "strategy %q already executed, call Reset first", name)
	}

	b.executed = true

	return nil
}
