package engine

import (
	"context"
	"slices"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine"
	"github.com/rxtech-lab/argo-dca/internal/optimal"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IntervalRanking configures a best-interval search.
type IntervalRanking struct {
	MaxInterval int
	TopN        int
	Capital     decimal.Decimal
	PriceField  types.PriceField
}

// RankIntervals runs one interval strategy for every interval from 1 to
// MaxInterval through the runner's trials and keeps the TopN with the largest
// ranking key. Results are ordered best first.
func RankIntervals(ctx context.Context, runner *TrialRunner, ranking IntervalRanking, callbacks engine.LifecycleCallbacks) ([]types.RankedInterval, error) {
	selector, err := optimal.NewSelector(ranking.TopN)
	if err != nil {
		return nil, err
	}

	intervals, err := strategy.IntervalRange(ranking.MaxInterval, runner.TrialDays(), ranking.Capital, ranking.PriceField)
	if err != nil {
		return nil, err
	}

	strategies := make([]strategy.Strategy, len(intervals))
	intervalByName := make(map[string]int, len(intervals))

	for i, s := range intervals {
		strategies[i] = s
		intervalByName[s.Name()] = s.Interval()
	}

	accumulators, err := runner.Run(ctx, strategies, callbacks)
	if err != nil {
		return nil, err
	}

	for _, acc := range accumulators {
		if err := selector.AddOrDiscard(acc); err != nil {
			return nil, err
		}
	}

	entries := selector.Snapshot()
	slices.Reverse(entries)

	ranked := make([]types.RankedInterval, 0, len(entries))

	for _, entry := range entries {
		averages, err := entry.Accumulator.Averages()
		if err != nil {
			return nil, err
		}

		ranked = append(ranked, types.RankedInterval{
			Interval: intervalByName[entry.Accumulator.Name()],
			Result:   averages,
		})
	}

	runner.log.Info("Interval ranking completed",
		zap.Int("evaluated", len(intervals)),
		zap.Int("retained", len(ranked)),
	)

	return ranked, nil
}

// IntervalStrategyConfigs turns ranked intervals into strategy configs for a
// comparison run.
func IntervalStrategyConfigs(ranked []types.RankedInterval, capital float64, priceField types.PriceField) []strategy.Config {
	configs := make([]strategy.Config, 0, len(ranked))

	for _, r := range ranked {
		configs = append(configs, strategy.Config{
			Name:        strategy.IntervalName(r.Interval),
			Type:        strategy.TypeInterval,
			Interval:    r.Interval,
			PercentDown: 0,
			Capital:     capital,
			TradeAmount: 0,
			PriceField:  string(priceField),
		})
	}

	return configs
}
