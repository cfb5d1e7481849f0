package engine

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine"
	"github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/mocks"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const engineTestConfig = `
version: main
symbol: TEST
trial_days: 30
trials: 6
seed: 9
log_level: error
ranking:
  max_interval: 15
  top_n: 4
  capital: 10000
strategies:
  - name: weekly
    type: interval
    interval: 5
    capital: 10000
  - name: 1% down limited
    type: percent_limited
    percent_down: 1
    capital: 10000
  - name: 1% down const trade
    type: percent_const
    percent_down: 1
    trade_amount: 500
`

func generatedHistory(days int) types.PriceHistory {
	config := mocks.DefaultConfig()
	config.Days = days

	return mocks.NewDataGenerator(21).Generate(config)
}

func TestBacktestEngineV1_Run(t *testing.T) {
	t.Run("Complete execution flow through Run function", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		history := generatedHistory(120)
		mockDatasource := mocks.NewMockDataSource(ctrl)

		dataDir := t.TempDir()
		dataPath := filepath.Join(dataDir, "TEST.parquet")

		mockDatasource.EXPECT().Initialize(dataPath).Return(nil).Times(1)
		mockDatasource.EXPECT().ReadHistory(datasource.ForSymbol("TEST")).Return(history, nil).Times(1)

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetDataSource(mockDatasource))
		require.NoError(t, backtest.SetDataPath(dataPath))
		require.NoError(t, backtest.LoadStrategiesFromConfig())

		results, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "weekly", results[0].Name)
		assert.Equal(t, "1% down limited", results[1].Name)
		assert.Equal(t, "1% down const trade", results[2].Name)

		for _, r := range results {
			assert.Equal(t, 6, r.Trials)
		}

		// Every window holds 30 purchase days: offsets 0, 5, ..., 25.
		assert.True(t, results[0].AvgOrderCount.Equal(decimal.NewFromInt(6)))
		assert.True(t, results[0].AvgTotalSpent.Sub(decimal.NewFromInt(10000)).Abs().LessThan(decimal.NewFromFloat(1e-6)))

		// The limited strategy never spends more than its capital.
		assert.True(t, results[1].AvgTotalSpent.LessThanOrEqual(decimal.NewFromInt(10000)))

		// The history is cached, so a second run does not hit the data source.
		_, err = backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		require.NoError(t, err)
	})

	t.Run("Valuation price defaults to the last close", func(t *testing.T) {
		history := generatedHistory(60)

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetHistory(history))

		v1, ok := backtest.(*BacktestEngineV1)
		require.True(t, ok)

		price, err := v1.ValuationPrice(history)
		require.NoError(t, err)

		last, _ := history.LastClose()
		assert.True(t, price.Equal(last))
	})

	t.Run("Configured valuation price wins", func(t *testing.T) {
		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig+"valuation_price: 412.519989\n"))

		v1 := backtest.(*BacktestEngineV1)

		price, err := v1.ValuationPrice(generatedHistory(40))
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromFloat(412.519989)))
	})

	t.Run("Insufficient history aborts before any trial", func(t *testing.T) {
		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetHistory(generatedHistory(10)))
		require.NoError(t, backtest.LoadStrategiesFromConfig())

		called := false
		onTrialStart := engine.OnTrialStartCallback(func(int, int, int) error {
			called = true

			return nil
		})

		_, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{OnTrialStart: &onTrialStart})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInsufficientHistory))
		assert.False(t, called)
	})

	t.Run("Run without strategies", func(t *testing.T) {
		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetHistory(generatedHistory(60)))

		_, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestNoStrategies))
	})

	t.Run("Run before Initialize", func(t *testing.T) {
		backtest := NewBacktestEngineV1()
		_, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))

		assert.True(t, errors.HasCode(backtest.LoadStrategiesFromConfig(), errors.ErrCodeBacktestConfigError))
	})

	t.Run("Run without datasource", func(t *testing.T) {
		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))

		_, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestNoDatasource))
	})

	t.Run("Empty datasource result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDatasource := mocks.NewMockDataSource(ctrl)
		mockDatasource.EXPECT().ReadHistory(gomock.Any()).Return(types.PriceHistory{}, nil)

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetDataSource(mockDatasource))

		_, err := backtest.History()
		assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataFound))
	})
}

func TestBacktestEngineV1_HistorySymbols(t *testing.T) {
	day := func(d int, price float64) types.DailyRecord {
		return types.NewDailyRecord(time.Date(2020, 1, 1+d, 0, 0, 0, 0, time.UTC), price, price+1, price-1, price)
	}

	noSymbolConfig := strings.Replace(engineTestConfig, "symbol: TEST\n", "", 1)

	t.Run("Several symbols without a configured symbol", func(t *testing.T) {
		ds := datasource.NewInMemoryDataSourceFromHistory("VOO", types.PriceHistory{day(0, 300), day(1, 301)})
		ds.Add("BTCUSDT", types.PriceHistory{day(0, 7000), day(1, 7050)})

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(noSymbolConfig))
		require.NoError(t, backtest.SetDataSource(ds))

		history, err := backtest.History()
		require.Error(t, err)
		assert.Nil(t, history)
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
		assert.Contains(t, err.Error(), "BTCUSDT, VOO")
	})

	t.Run("Single symbol without a configured symbol", func(t *testing.T) {
		ds := datasource.NewInMemoryDataSourceFromHistory("VOO", types.PriceHistory{day(0, 300), day(1, 301)})

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(noSymbolConfig))
		require.NoError(t, backtest.SetDataSource(ds))

		history, err := backtest.History()
		require.NoError(t, err)
		assert.Equal(t, 2, history.Len())
	})

	t.Run("Configured symbol picks one of several", func(t *testing.T) {
		ds := datasource.NewInMemoryDataSourceFromHistory("TEST", types.PriceHistory{day(0, 300), day(1, 301)})
		ds.Add("BTCUSDT", types.PriceHistory{day(0, 7000)})

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetDataSource(ds))

		history, err := backtest.History()
		require.NoError(t, err)
		require.Equal(t, 2, history.Len())
		assert.True(t, history[0].Open.Equal(decimal.NewFromInt(300)))
	})
}

func TestBacktestEngineV1_Initialize(t *testing.T) {
	t.Run("Invalid YAML", func(t *testing.T) {
		err := NewBacktestEngineV1().Initialize("trials: [")
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
	})

	t.Run("Invalid values", func(t *testing.T) {
		err := NewBacktestEngineV1().Initialize("trials: 0")
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
	})

	t.Run("From file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(engineTestConfig), 0o600))

		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.SetConfigPath(path))
		assert.Equal(t, 30, backtest.(*BacktestEngineV1).Config().TrialDays)

		assert.Error(t, backtest.SetConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	})

	t.Run("Schema", func(t *testing.T) {
		schema, err := NewBacktestEngineV1().GetConfigSchema()
		require.NoError(t, err)
		assert.True(t, strings.Contains(schema, "trial_days"))
	})
}

func TestBacktestEngineV1_LoadStrategy(t *testing.T) {
	backtest := NewBacktestEngineV1()

	s, err := strategy.NewIntervalStrategy(strategy.IntervalConfig{
		Interval: 7,
		Duration: 30,
		Capital:  decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	require.NoError(t, backtest.LoadStrategy(s))
	assert.True(t, errors.HasCode(backtest.LoadStrategy(s), errors.ErrCodeDuplicateStrategyName))

	assert.True(t, errors.HasCode(backtest.SetHistory(nil), errors.ErrCodeNoDataFound))
	assert.True(t, errors.HasCode(backtest.SetRandSource(nil), errors.ErrCodeMissingParameter))
}

// A fixed random source makes two engines draw the same windows.
func TestBacktestEngineV1_Reproducible(t *testing.T) {
	history := generatedHistory(200)

	run := func() []types.AveragedResult {
		backtest := NewBacktestEngineV1()
		require.NoError(t, backtest.Initialize(engineTestConfig))
		require.NoError(t, backtest.SetHistory(history))
		require.NoError(t, backtest.SetRandSource(rand.New(rand.NewSource(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix()))))
		require.NoError(t, backtest.LoadStrategiesFromConfig())

		results, err := backtest.Run(context.Background(), engine.LifecycleCallbacks{})
		require.NoError(t, err)

		return results
	}

	first := run()
	second := run()

	require.Len(t, second, len(first))

	for i := range first {
		assert.True(t, first[i].AvgNetReturn.Equal(second[i].AvgNetReturn), first[i].Name)
	}
}

func TestBacktestEngineV1_RankIntervals(t *testing.T) {
	backtest := NewBacktestEngineV1()
	require.NoError(t, backtest.Initialize(engineTestConfig))
	require.NoError(t, backtest.SetHistory(generatedHistory(120)))

	ranked, err := backtest.RankIntervals(context.Background(), engine.LifecycleCallbacks{})
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	seen := make(map[int]bool)

	for i, r := range ranked {
		assert.GreaterOrEqual(t, r.Interval, 1)
		assert.LessOrEqual(t, r.Interval, 15)
		assert.Equal(t, strategy.IntervalName(r.Interval), r.Result.Name)
		assert.False(t, seen[r.Interval])
		seen[r.Interval] = true

		if i > 0 {
			assert.True(t, ranked[i-1].Result.RankingKey.GreaterThanOrEqual(r.Result.RankingKey))
		}
	}
}
