package strategy

import (
	"fmt"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

// record builds a day whose high and close equal the open.
func record(day int, open, low float64) types.DailyRecord {
	t := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)

	return types.NewDailyRecord(t, open, open, low, open)
}

// flatWindow returns n days at a constant price with no intraday drop.
func flatWindow(n int, price float64) types.PriceWindow {
	records := make([]types.DailyRecord, n)
	for i := range records {
		records[i] = record(i, price, price)
	}

	return types.NewPriceWindow(records)
}

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func (suite *StrategyTestSuite) equalDecimal(expected, actual decimal.Decimal) {
	suite.True(expected.Equal(actual), "expected %s, got %s", expected, actual)
}

func (suite *StrategyTestSuite) TestBookBuyInDollars() {
	var book Book

	suite.Require().NoError(book.BuyInDollars(d(500), d(100)))
	suite.Require().NoError(book.BuyInDollars(d(300), d(150)))

	suite.Equal(2, book.OrderCount())
	suite.equalDecimal(d(800), book.CostBasis())
	suite.equalDecimal(d(7), book.Shares())
}

func (suite *StrategyTestSuite) TestBookRejectsNonPositivePrice() {
	var book Book

	err := book.BuyInDollars(d(500), decimal.Zero)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))

	err = book.BuyInDollars(d(500), d(-1))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))

	err = book.UpdateValuationPrice(decimal.Zero)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))

	suite.Equal(0, book.OrderCount())
}

func (suite *StrategyTestSuite) TestBookRejectsNonPositiveAmount() {
	var book Book

	err := book.BuyInDollars(decimal.Zero, d(100))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))
}

func (suite *StrategyTestSuite) TestBookReturns() {
	var book Book

	suite.Require().NoError(book.BuyInDollars(d(1000), d(100)))
	suite.Require().NoError(book.UpdateValuationPrice(d(110)))

	snapshot := book.Snapshot()
	suite.Equal(1, snapshot.OrderCount)
	suite.equalDecimal(d(1000), snapshot.TotalSpent)
	suite.equalDecimal(d(1100), snapshot.FinalValuation)
	suite.equalDecimal(d(100), snapshot.NetReturn)
	suite.equalDecimal(d(0.1), snapshot.PercentReturn)

	// Snapshot does not mutate state.
	suite.Equal(snapshot, book.Snapshot())
}

func (suite *StrategyTestSuite) TestPercentReturnIsZeroWithoutTrades() {
	var book Book

	suite.Require().NoError(book.UpdateValuationPrice(d(412.52)))
	suite.True(book.PercentReturn().IsZero())
	suite.True(book.NetReturn().IsZero())
	suite.True(book.Snapshot().PercentReturn.IsZero())
}

func (suite *StrategyTestSuite) TestIntervalEveryDay() {
	const duration = 10

	s, err := NewIntervalStrategy(IntervalConfig{
		Interval:   1,
		Duration:   duration,
		Capital:    d(100000),
		PriceField: types.PriceFieldOpen,
	})
	suite.Require().NoError(err)
	suite.Equal("every 1 days", s.Name())

	window := flatWindow(30, 100)
	suite.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, s.PurchaseOffsets(window))

	suite.Require().NoError(s.Execute(window))
	suite.Equal(duration, s.OrderCount())
	suite.equalDecimal(d(10000), s.OrderAmount())

	relative := s.CostBasis().Sub(d(100000)).Abs().Div(d(100000))
	suite.True(relative.LessThan(d(1e-6)))
}

func (suite *StrategyTestSuite) TestIntervalAllocationSumsToCapital() {
	s, err := NewIntervalStrategy(IntervalConfig{Interval: 7, Duration: 254, Capital: d(100000)})
	suite.Require().NoError(err)

	suite.Require().NoError(s.Execute(flatWindow(300, 412.52)))
	suite.Equal(37, s.OrderCount())

	relative := s.CostBasis().Sub(d(100000)).Abs().Div(d(100000))
	suite.True(relative.LessThan(d(1e-6)), "cost basis %s", s.CostBasis())
}

func (suite *StrategyTestSuite) TestIntervalLongerThanDuration() {
	s, err := NewIntervalStrategy(IntervalConfig{Interval: 20, Duration: 5, Capital: d(1000)})
	suite.Require().NoError(err)

	window := flatWindow(10, 100)
	suite.Equal([]int{0}, s.PurchaseOffsets(window))

	suite.Require().NoError(s.Execute(window))
	suite.Equal(1, s.OrderCount())
	suite.equalDecimal(d(1000), s.CostBasis())
}

func (suite *StrategyTestSuite) TestIntervalUsesPriceField() {
	records := []types.DailyRecord{
		types.NewDailyRecord(time.Time{}, 100, 120, 90, 110),
		types.NewDailyRecord(time.Time{}, 100, 120, 90, 110),
	}

	s, err := NewIntervalStrategy(IntervalConfig{Interval: 1, Duration: 2, Capital: d(220), PriceField: types.PriceFieldClose})
	suite.Require().NoError(err)
	suite.Require().NoError(s.Execute(types.NewPriceWindow(records)))
	suite.equalDecimal(d(2), s.Shares())
}

func (suite *StrategyTestSuite) TestIntervalValidation() {
	_, err := NewIntervalStrategy(IntervalConfig{Interval: 0, Duration: 10, Capital: d(1)})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))

	_, err = NewIntervalStrategy(IntervalConfig{Interval: 1, Duration: 0, Capital: d(1)})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDuration))

	_, err = NewIntervalStrategy(IntervalConfig{Interval: 1, Duration: 10, Capital: decimal.Zero})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))

	_, err = NewIntervalStrategy(IntervalConfig{Interval: 1, Duration: 10, Capital: d(1), PriceField: "low"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *StrategyTestSuite) TestExecuteTwiceWithoutReset() {
	s, err := NewIntervalStrategy(IntervalConfig{Interval: 2, Duration: 10, Capital: d(1000)})
	suite.Require().NoError(err)

	window := flatWindow(10, 100)
	suite.Require().NoError(s.Execute(window))

	err = s.Execute(window)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyExecuted))
	suite.Equal(5, s.OrderCount())

	s.Reset()
	suite.Equal(0, s.OrderCount())
	suite.True(s.CostBasis().IsZero())
	suite.True(s.OrderAmount().IsZero())

	suite.Require().NoError(s.Execute(window))
	suite.Equal(5, s.OrderCount())
}

func (suite *StrategyTestSuite) TestExecuteReportsOffsetOfInvalidPrice() {
	records := []types.DailyRecord{record(0, 100, 100), record(1, 0, 0)}

	s, err := NewIntervalStrategy(IntervalConfig{Interval: 1, Duration: 2, Capital: d(1000)})
	suite.Require().NoError(err)

	err = s.Execute(types.NewPriceWindow(records))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))
	suite.Contains(err.Error(), "offset 1")
}

func (suite *StrategyTestSuite) TestDropCondition() {
	condition, err := NewDropCondition(d(1.5))
	suite.Require().NoError(err)

	suite.False(condition.Triggered(record(0, 100, 99)))
	suite.False(condition.Triggered(record(0, 100, 98.5)))
	suite.True(condition.Triggered(record(0, 100, 98)))
	suite.equalDecimal(d(98.5), condition.LimitPrice(record(0, 100, 98)))

	_, err = NewDropCondition(decimal.Zero)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))

	_, err = NewDropCondition(d(100))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
}

func (suite *StrategyTestSuite) TestSelectDropPurchasesRespectsDuration() {
	window := types.NewPriceWindow([]types.DailyRecord{
		record(0, 100, 95),
		record(1, 100, 100),
		record(2, 100, 95),
		record(3, 100, 95),
	})

	condition, err := NewDropCondition(d(2))
	suite.Require().NoError(err)

	purchases := SelectDropPurchases(window, 3, condition)
	suite.Require().Len(purchases, 2)
	suite.Equal(0, purchases[0].Offset)
	suite.Equal(2, purchases[1].Offset)
	suite.equalDecimal(d(98), purchases[1].Price)
}

func (suite *StrategyTestSuite) TestConstTradeScenario() {
	window := types.NewPriceWindow([]types.DailyRecord{
		record(0, 100, 99),
		record(1, 100, 98),
		record(2, 100, 100),
		record(3, 100, 100),
		record(4, 100, 97),
	})

	s, err := NewPercentDropConstTrade(PercentDropConstTradeConfig{
		Name:        "1.5% down const trade",
		PercentDown: d(1.5),
		Duration:    5,
		TradeAmount: d(500),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(s.Execute(window))
	suite.Equal(2, s.OrderCount())
	suite.equalDecimal(d(1000), s.CostBasis())

	purchases := s.Purchases()
	suite.Require().Len(purchases, 2)
	suite.Equal(1, purchases[0].Offset)
	suite.Equal(4, purchases[1].Offset)
	suite.equalDecimal(d(98.5), purchases[0].Price)

	s.Reset()
	suite.Empty(s.Purchases())
	suite.Equal(0, s.OrderCount())
}

func (suite *StrategyTestSuite) TestConstTradeValidation() {
	_, err := NewPercentDropConstTrade(PercentDropConstTradeConfig{PercentDown: d(1), Duration: 5, TradeAmount: decimal.Zero})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))

	_, err = NewPercentDropConstTrade(PercentDropConstTradeConfig{PercentDown: d(1), Duration: 0, TradeAmount: d(1)})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDuration))

	s, err := NewPercentDropConstTrade(PercentDropConstTradeConfig{PercentDown: d(0.9), Duration: 5, TradeAmount: d(1)})
	suite.Require().NoError(err)
	suite.Equal("0.9% down const trade", s.Name())
}

func (suite *StrategyTestSuite) TestLimitedFundsStopsWhenFundsRunOut() {
	records := make([]types.DailyRecord, 10)
	for i := range records {
		// Days 0 and 5 do not qualify; the other eight drop 3%.
		if i == 0 || i == 5 {
			records[i] = record(i, 100, 100)
		} else {
			records[i] = record(i, 100, 97)
		}
	}

	window := types.NewPriceWindow(records)

	s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{
		Name:        "1% down limited",
		PercentDown: d(1),
		Duration:    10,
		Capital:     d(900),
	})
	suite.Require().NoError(err)

	s.SetEstimatedTradeCount(3)
	suite.equalDecimal(d(300), s.OrderAmount())

	suite.Require().NoError(s.Execute(window))
	suite.Len(s.Purchases(), 8)
	suite.Equal(3, s.OrderCount())
	suite.Less(s.OrderCount(), len(s.Purchases()))
	suite.equalDecimal(d(900), s.CostBasis())
	suite.True(s.Funds().IsZero())

	s.Reset()
	suite.equalDecimal(d(900), s.Funds())
	suite.Equal(3, s.EstimatedTradeCount())
	suite.Require().NoError(s.Execute(window))
	suite.Equal(3, s.OrderCount())
}

func (suite *StrategyTestSuite) TestLimitedFundsLeavesCapitalUndeployed() {
	window := types.NewPriceWindow([]types.DailyRecord{
		record(0, 100, 97),
		record(1, 100, 100),
	})

	s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{PercentDown: d(1), Duration: 2, Capital: d(1000)})
	suite.Require().NoError(err)
	s.SetEstimatedTradeCount(4)

	suite.Require().NoError(s.Execute(window))
	suite.Equal(1, s.OrderCount())
	suite.equalDecimal(d(250), s.CostBasis())
	suite.equalDecimal(d(750), s.Funds())
}

func (suite *StrategyTestSuite) TestLimitedFundsBooksEstimateWithRoundedOrderSize() {
	records := make([]types.DailyRecord, 10)
	for i := range records {
		records[i] = record(i, 100, 97)
	}

	window := types.NewPriceWindow(records)

	for _, estimate := range []int{3, 6, 7, 9} {
		suite.Run(fmt.Sprintf("estimate %d", estimate), func() {
			s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{PercentDown: d(1), Duration: 10, Capital: d(100000)})
			suite.Require().NoError(err)
			s.SetEstimatedTradeCount(estimate)

			suite.Require().NoError(s.Execute(window))
			suite.Equal(estimate, s.OrderCount())
			suite.InDelta(100000, s.CostBasis().InexactFloat64(), 1e-6)
			suite.False(s.Funds().IsNegative())
			suite.InDelta(0, s.Funds().InexactFloat64(), 1e-6)
		})
	}
}

func (suite *StrategyTestSuite) TestLimitedFundsRequiresCalibration() {
	s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{PercentDown: d(1), Duration: 10, Capital: d(1000)})
	suite.Require().NoError(err)

	err = s.Execute(flatWindow(10, 100))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotCalibrated))
}

func (suite *StrategyTestSuite) TestEstimateTradeCount() {
	// 20 days, 5 qualify, duration 10 -> ceil(5 / (20 / 10)) = ceil(2.5) = 3.
	history := make(types.PriceHistory, 20)
	for i := range history {
		if i%4 == 0 {
			history[i] = record(i, 100, 95)
		} else {
			history[i] = record(i, 100, 100)
		}
	}

	condition, err := NewDropCondition(d(1))
	suite.Require().NoError(err)
	suite.Equal(3, EstimateTradeCount(history, 10, condition))

	// Duration 5: ceil(5 / (20 / 5)) = ceil(1.25) = 2.
	suite.Equal(2, EstimateTradeCount(history, 5, condition))
	suite.Equal(0, EstimateTradeCount(types.PriceHistory{}, 10, condition))
}

func (suite *StrategyTestSuite) TestCalibrate() {
	history := make(types.PriceHistory, 20)
	for i := range history {
		if i%4 == 0 {
			history[i] = record(i, 100, 95)
		} else {
			history[i] = record(i, 100, 100)
		}
	}

	s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{PercentDown: d(1), Duration: 10, Capital: d(900)})
	suite.Require().NoError(err)
	suite.Equal("1% down limited", s.Name())

	suite.Require().NoError(s.Calibrate(history))
	suite.Equal(3, s.EstimatedTradeCount())
	suite.equalDecimal(d(300), s.OrderAmount())

	err = s.Calibrate(types.PriceHistory{})
	suite.True(errors.HasCode(err, errors.ErrCodeNoDataFound))
}

func (suite *StrategyTestSuite) TestCalibrateWithoutQualifyingDays() {
	s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{PercentDown: d(5), Duration: 10, Capital: d(900)})
	suite.Require().NoError(err)

	history := make(types.PriceHistory, 20)
	for i := range history {
		history[i] = record(i, 100, 100)
	}

	suite.Require().NoError(s.Calibrate(history))
	suite.Equal(1, s.EstimatedTradeCount())

	suite.Require().NoError(s.Execute(history.All()))
	suite.Equal(0, s.OrderCount())
	suite.True(s.PercentReturn().IsZero())
}
