package strategy

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// DropCondition triggers on days whose low fell more than PercentDown percent
// below the open, i.e. a limit buy placed at the open would have filled.
type DropCondition struct {
	PercentDown decimal.Decimal
	factor      decimal.Decimal
}

// NewDropCondition validates the threshold, which must lie in (0, 100).
func NewDropCondition(percentDown decimal.Decimal) (DropCondition, error) {
	if !percentDown.IsPositive() || percentDown.GreaterThanOrEqual(hundred) {
		return DropCondition{}, errors.Newf(errors.ErrCodeInvalidThreshold,
			"percent down must be between 0 and 100 exclusive, got %s", percentDown)
	}

	return DropCondition{
		PercentDown: percentDown,
		factor:      decimal.NewFromInt(1).Sub(percentDown.Div(hundred)),
	}, nil
}

// Triggered reports whether low < open * (1 - percentDown/100).
func (c DropCondition) Triggered(record types.DailyRecord) bool {
	return record.Low.LessThan(c.LimitPrice(record))
}

// LimitPrice is the fill price of the limit order: open * (1 - percentDown/100).
func (c DropCondition) LimitPrice(record types.DailyRecord) decimal.Decimal {
	return record.Open.Mul(c.factor)
}

// Purchase is a selected buy: the window offset and its fill price.
type Purchase struct {
	Offset int
	Price  decimal.Decimal
}

// SelectDropPurchases returns, in chronological order, every offset below the
// duration where the condition triggers, priced at the limit price.
func SelectDropPurchases(window types.PriceWindow, duration int, condition DropCondition) []Purchase {
	limit := min(duration, window.Len())

	var purchases []Purchase

	for offset := 0; offset < limit; offset++ {
		record := window.At(offset)
		if condition.Triggered(record) {
			purchases = append(purchases, Purchase{Offset: offset, Price: condition.LimitPrice(record)})
		}
	}

	return purchases
}

// EstimateTradeCount estimates how many days per duration-length span satisfy
// the condition, over the whole history:
//
//	ceil(matching / (len(history) / duration))
//
// computed in integer arithmetic as ceil(matching * duration / len(history)).
func EstimateTradeCount(history types.PriceHistory, duration int, condition DropCondition) int {
	total := history.Len()
	if total == 0 || duration < 1 {
		return 0
	}

	matching := 0

	for _, record := range history {
		if condition.Triggered(record) {
			matching++
		}
	}

	return (matching*duration + total - 1) / total
}

func validateDuration(duration int) error {
	if duration < 1 {
		return errors.Newf(errors.ErrCodeInvalidDuration, "duration must be at least 1, got %d", duration)
	}

	return nil
}
