package engine

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-dca/internal/backtest/engine"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/internal/result"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TrialRunnerConfig holds the inputs of a TrialRunner.
type TrialRunnerConfig struct {
	// Symbol only labels errors and logs.
	Symbol    string
	TrialDays int
	Trials    int
	// ValuationPrice is applied to every strategy at the end of every trial.
	ValuationPrice decimal.Decimal
	// Parallelism bounds how many strategies of one trial run concurrently.
	Parallelism int
}

// TrialRunner replays strategies over randomly drawn windows of a price history.
type TrialRunner struct {
	history types.PriceHistory
	config  TrialRunnerConfig
	rng     *rand.Rand
	log     *logger.Logger
}

// NewTrialRunner validates the run parameters. It fails with
// ErrCodeInsufficientHistory when the history is shorter than one trial window.
func NewTrialRunner(history types.PriceHistory, config TrialRunnerConfig, rng *rand.Rand, log *logger.Logger) (*TrialRunner, error) {
	if config.TrialDays < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidDuration, "trial days must be at least 1, got %d", config.TrialDays)
	}

	if config.Trials < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "trials must be at least 1, got %d", config.Trials)
	}

	if !config.ValuationPrice.IsPositive() {
		return nil, errors.Newf(errors.ErrCodeInvalidPrice, "valuation price must be positive, got %s", config.ValuationPrice)
	}

	if history.Len() < config.TrialDays {
		return nil, errors.NewInsufficientHistoryError(config.TrialDays, history.Len(), config.Symbol)
	}

	if rng == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "random source is required")
	}

	if config.Parallelism < 1 {
		config.Parallelism = 1
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TrialRunner{
		history: history,
		config:  config,
		rng:     rng,
		log:     log,
	}, nil
}

// TrialDays returns the number of trading days eligible for purchases in a trial.
func (r *TrialRunner) TrialDays() int {
	return r.config.TrialDays
}

// SampleWindow draws the history tail starting at a uniformly chosen offset in
// [0, len-TrialDays], so the window always holds at least TrialDays days.
func (r *TrialRunner) SampleWindow() (types.PriceWindow, error) {
	start := r.rng.Intn(r.history.Len() - r.config.TrialDays + 1)

	return r.history.Window(start)
}

// Run evaluates every strategy over the configured number of trials and
// returns one accumulator per strategy, in input order. Within a trial all
// strategies see the same window. Any strategy error aborts the run.
//
// OnStrategyResult may be invoked from several goroutines when Parallelism > 1.
func (r *TrialRunner) Run(ctx context.Context, strategies []strategy.Strategy, callbacks engine.LifecycleCallbacks) (accumulators []*result.Accumulator, err error) {
	runID := uuid.New().String()

	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if len(strategies) == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies to evaluate")
	}

	accumulators = make([]*result.Accumulator, len(strategies))
	seen := make(map[string]struct{}, len(strategies))

	for i, s := range strategies {
		if _, ok := seen[s.Name()]; ok {
			return nil, errors.Newf(errors.ErrCodeDuplicateStrategyName, "strategy %q is loaded more than once", s.Name())
		}

		seen[s.Name()] = struct{}{}
		accumulators[i] = result.NewAccumulator(s.Name())

		s.Reset()

		if calibrator, ok := s.(strategy.Calibrator); ok {
			if err := calibrator.Calibrate(r.history); err != nil {
				return nil, errors.Wrapf(errors.GetCode(err), err, "failed to calibrate strategy %q", s.Name())
			}
		}
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(runID, r.config.Trials, len(strategies)); err != nil {
			return nil, err
		}
	}

	for trial := 0; trial < r.config.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		window, err := r.SampleWindow()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInsufficientHistory, err, "failed to draw window for trial %d", trial)
		}

		r.log.Debug("Starting trial",
			zap.Int("trial", trial),
			zap.Int("start_offset", window.HistoryOffset()),
			zap.Int("window_len", window.Len()),
		)

		if callbacks.OnTrialStart != nil {
			if err := (*callbacks.OnTrialStart)(trial, r.config.Trials, window.HistoryOffset()); err != nil {
				return nil, err
			}
		}

		if err := r.runTrial(ctx, trial, window, strategies, accumulators, callbacks); err != nil {
			return nil, err
		}

		if callbacks.OnTrialEnd != nil {
			if err := (*callbacks.OnTrialEnd)(trial, r.config.Trials); err != nil {
				return nil, err
			}
		}
	}

	r.log.Info("Trials completed",
		zap.String("run_id", runID),
		zap.String("symbol", r.config.Symbol),
		zap.Int("trials", r.config.Trials),
		zap.Int("strategies", len(strategies)),
	)

	return accumulators, nil
}

func (r *TrialRunner) runTrial(
	ctx context.Context,
	trial int,
	window types.PriceWindow,
	strategies []strategy.Strategy,
	accumulators []*result.Accumulator,
	callbacks engine.LifecycleCallbacks,
) error {
	if r.config.Parallelism == 1 {
		for i, s := range strategies {
			if err := r.evaluate(trial, window, s, accumulators[i], callbacks); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Parallelism)

	for i, s := range strategies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return r.evaluate(trial, window, s, accumulators[i], callbacks)
		})
	}

	return g.Wait()
}

// evaluate runs one strategy through one trial: execute, value, record, reset.
func (r *TrialRunner) evaluate(
	trial int,
	window types.PriceWindow,
	s strategy.Strategy,
	accumulator *result.Accumulator,
	callbacks engine.LifecycleCallbacks,
) error {
	if err := s.Execute(window); err != nil {
		return r.strategyError(s, trial, err)
	}

	if err := s.UpdateValuationPrice(r.config.ValuationPrice); err != nil {
		return r.strategyError(s, trial, err)
	}

	snapshot := s.Snapshot()
	accumulator.Accumulate(snapshot)

	if callbacks.OnStrategyResult != nil {
		(*callbacks.OnStrategyResult)(trial, s.Name(), snapshot)
	}

	s.Reset()

	return nil
}

func (r *TrialRunner) strategyError(s strategy.Strategy, trial int, err error) error {
	r.log.Error("Strategy failed",
		zap.String("strategy", s.Name()),
		zap.Int("trial", trial),
		zap.Error(err),
	)

	return errors.Wrapf(errors.GetCode(err), err, "strategy %q failed in trial %d", s.Name(), trial)
}
