package engine

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine"
	"github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1 struct {
	config      BacktestEngineV1Config
	strategies  []strategy.Strategy
	dataPath    string
	datasource  datasource.DataSource
	history     types.PriceHistory
	rng         *rand.Rand
	log         *logger.Logger
	initialized bool
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:      EmptyConfig(),
		strategies:  nil,
		dataPath:    "",
		datasource:  nil,
		history:     nil,
		rng:         nil,
		log:         logger.NewNopLogger(),
		initialized: false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	var parsed BacktestEngineV1Config
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(parsed.LogLevel)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.config = parsed
	b.log = log
	b.initialized = true

	seed := time.Now().UnixNano()
	if parsed.Seed.IsSome() {
		seed = parsed.Seed.Unwrap()
	}

	b.rng = rand.New(rand.NewSource(seed))

	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", parsed.Symbol),
		zap.Int("trial_days", parsed.TrialDays),
		zap.Int("trials", parsed.Trials),
		zap.Int64("seed", seed),
		zap.Int("strategies", len(parsed.Strategies)),
	)

	return nil
}

// SetConfigPath implements engine.Engine.
func (b *BacktestEngineV1) SetConfigPath(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		b.log.Error("Failed to read config",
			zap.String("path", path),
			zap.Error(err),
		)

		return err
	}

	return b.Initialize(string(content))
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		b.log.Error("Failed to get absolute path",
			zap.String("path", path),
			zap.Error(err),
		)

		return err
	}

	b.dataPath = absPath
	b.history = nil
	b.log.Debug("Data path set", zap.String("path", absPath))

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.datasource = dataSource
	b.history = nil

	return nil
}

// SetHistory implements engine.Engine.
func (b *BacktestEngineV1) SetHistory(history types.PriceHistory) error {
	if history.Len() == 0 {
		return errors.New(errors.ErrCodeNoDataFound, "price history is empty")
	}

	b.history = history

	return nil
}

// SetRandSource implements engine.Engine.
func (b *BacktestEngineV1) SetRandSource(rng *rand.Rand) error {
	if rng == nil {
		return errors.New(errors.ErrCodeMissingParameter, "random source is required")
	}

	b.rng = rng

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy) error {
	for _, loaded := range b.strategies {
		if loaded.Name() == s.Name() {
			return errors.Newf(errors.ErrCodeDuplicateStrategyName, "strategy %q is already loaded", s.Name())
		}
	}

	b.strategies = append(b.strategies, s)
	b.log.Debug("Strategy loaded",
		zap.String("strategy", s.Name()),
		zap.Int("total_strategies", len(b.strategies)),
	)

	return nil
}

// LoadStrategiesFromConfig implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategiesFromConfig() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	for _, config := range b.config.Strategies {
		s, err := strategy.FromConfig(config, b.config.TrialDays)
		if err != nil {
			return errors.Wrapf(errors.GetCode(err), err, "failed to build strategy %q", config.Name)
		}

		if err := b.LoadStrategy(s); err != nil {
			return err
		}
	}

	return nil
}

// History implements engine.Engine. The history is read from the data source
// on first use and kept for later runs. Without a configured symbol the data
// must hold at most one symbol.
func (b *BacktestEngineV1) History() (types.PriceHistory, error) {
	if b.history != nil {
		return b.history, nil
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return nil, errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	if b.dataPath != "" {
		if err := b.datasource.Initialize(b.dataPath); err != nil {
			return nil, fmt.Errorf("failed to initialize data source: %w", err)
		}
	}

	if b.config.Symbol == "" {
		symbols, err := b.datasource.Symbols()
		if err != nil {
			return nil, fmt.Errorf("failed to list symbols: %w", err)
		}

		if len(symbols) > 1 {
			return nil, errors.Newf(errors.ErrCodeBacktestConfigError,
				"data holds several symbols (%s); set symbol in the config", strings.Join(symbols, ", "))
		}
	}

	filter := datasource.ForSymbol(b.config.Symbol)
	filter.Start = b.config.StartTime
	filter.End = b.config.EndTime

	history, err := b.datasource.ReadHistory(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}

	if history.Len() == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no price history found for symbol %q", b.config.Symbol)
	}

	b.history = history

	return history, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) ([]types.AveragedResult, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if len(b.strategies) == 0 {
		b.log.Error("No strategies loaded")

		return nil, errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	runner, err := b.newTrialRunner()
	if err != nil {
		return nil, err
	}

	accumulators, err := runner.Run(ctx, b.strategies, callbacks)
	if err != nil {
		return nil, err
	}

	results := make([]types.AveragedResult, 0, len(accumulators))

	for _, acc := range accumulators {
		averages, err := acc.Averages()
		if err != nil {
			return nil, err
		}

		results = append(results, averages)
	}

	return results, nil
}

// RankIntervals implements engine.Engine.
func (b *BacktestEngineV1) RankIntervals(ctx context.Context, callbacks engine.LifecycleCallbacks) ([]types.RankedInterval, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	priceField, err := b.config.RankingPriceField()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid ranking price field", err)
	}

	runner, err := b.newTrialRunner()
	if err != nil {
		return nil, err
	}

	return RankIntervals(ctx, runner, IntervalRanking{
		MaxInterval: b.config.Ranking.MaxInterval,
		TopN:        b.config.Ranking.TopN,
		Capital:     decimal.NewFromFloat(b.config.Ranking.Capital),
		PriceField:  priceField,
	}, callbacks)
}

// Config returns the active configuration.
func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// ValuationPrice returns the configured terminal price or, when absent, the
// last close of the history.
func (b *BacktestEngineV1) ValuationPrice(history types.PriceHistory) (decimal.Decimal, error) {
	if b.config.ValuationPrice.IsSome() {
		return decimal.NewFromFloat(b.config.ValuationPrice.Unwrap()), nil
	}

	last, ok := history.LastClose()
	if !ok {
		return decimal.Zero, errors.New(errors.ErrCodeNoDataFound, "cannot derive a valuation price from an empty history")
	}

	return last, nil
}

func (b *BacktestEngineV1) newTrialRunner() (*TrialRunner, error) {
	history, err := b.History()
	if err != nil {
		return nil, err
	}

	valuation, err := b.ValuationPrice(history)
	if err != nil {
		return nil, err
	}

	return NewTrialRunner(history, TrialRunnerConfig{
		Symbol:         b.config.Symbol,
		TrialDays:      b.config.TrialDays,
		Trials:         b.config.Trials,
		ValuationPrice: valuation,
		Parallelism:    b.config.Parallelism,
	}, b.rng, b.log)
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Engine not initialized")

		return errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	if b.history == nil && b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource or history set")
	}

	if b.rng == nil {
		return errors.New(errors.ErrCodeMissingParameter, "random source is not set")
	}

	return nil
}
