package engine

import (
	"context"
	"math/rand"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks with an error return abort the run when they return an error.

// OnBacktestStartCallback is called once before the first trial.
type OnBacktestStartCallback func(runID string, totalTrials int, totalStrategies int) error

// OnBacktestEndCallback is called when the run completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnTrialStartCallback is called after the trial window is drawn.
type OnTrialStartCallback func(trial int, totalTrials int, startOffset int) error

// OnTrialEndCallback is called after every strategy has been reset for the next trial.
type OnTrialEndCallback func(trial int, totalTrials int) error

// OnStrategyResultCallback is called for each strategy snapshot taken in a trial.
type OnStrategyResultCallback func(trial int, strategyName string, snapshot types.ResultSnapshot)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart  *OnBacktestStartCallback
	OnBacktestEnd    *OnBacktestEndCallback
	OnTrialStart     *OnTrialStartCallback
	OnTrialEnd       *OnTrialEndCallback
	OnStrategyResult *OnStrategyResultCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetConfigPath reads the YAML configuration from a file and initializes the engine with it.
	SetConfigPath(path string) error
	// SetDataPath sets the parquet or CSV file holding the daily bars.
	SetDataPath(path string) error
	// SetDataSource sets the data source used to load the price history.
	SetDataSource(dataSource datasource.DataSource) error
	// SetHistory supplies an already loaded price history, bypassing the data source.
	SetHistory(history types.PriceHistory) error
	// SetRandSource replaces the generator used to draw trial windows.
	SetRandSource(rng *rand.Rand) error
	// LoadStrategy adds a strategy to the comparison run. Names must be unique.
	LoadStrategy(s strategy.Strategy) error
	// LoadStrategiesFromConfig builds and loads every strategy listed in the configuration.
	LoadStrategiesFromConfig() error
	// Run evaluates every loaded strategy over the configured trials and returns
	// the averaged results in load order.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]types.AveragedResult, error)
	// RankIntervals evaluates interval strategies for every interval up to the
	// configured maximum and returns the best top N, best first.
	RankIntervals(ctx context.Context, callbacks LifecycleCallbacks) ([]types.RankedInterval, error)
	// History returns the loaded price history.
	History() (types.PriceHistory, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
