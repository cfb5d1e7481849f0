package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/internal/report"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

type options struct {
	ConfigPath   string
	DataPath     string
	DatabasePath string
	ShowProgress bool
}

// progressCallbacks draws one progress bar per run, advanced after every trial.
func progressCallbacks(w io.Writer, description string) engine.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(_ string, totalTrials int, _ int) error {
		bar = progressbar.NewOptions(totalTrials,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowCount(),
		)

		return nil
	})

	onTrialEnd := engine.OnTrialEndCallback(func(_ int, _ int) error {
		if bar == nil {
			return nil
		}

		return bar.Add(1)
	})

	onEnd := engine.OnBacktestEndCallback(func(_ error) {
		if bar != nil {
			_ = bar.Finish()
			fmt.Fprintln(w)
		}
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart:  &onStart,
		OnBacktestEnd:    &onEnd,
		OnTrialStart:     nil,
		OnTrialEnd:       &onTrialEnd,
		OnStrategyResult: nil,
	}
}

// run loads the history, optionally ranks intervals, runs the comparison and
// writes the report to out.
func run(ctx context.Context, opts options, out io.Writer) error {
	backtest := enginev1.NewBacktestEngineV1()
	if err := backtest.SetConfigPath(opts.ConfigPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	config := backtest.(*enginev1.BacktestEngineV1).Config()

	zapLogger, err := logger.NewLoggerWithLevel(config.LogLevel)
	if err != nil {
		return err
	}

	defer zapLogger.Sync()

	duckdb, err := datasource.NewDataSource(opts.DatabasePath, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}

	ds := datasource.NewInMemoryIndexedDataSource(duckdb)
	defer ds.Close()

	if err := backtest.SetDataSource(ds); err != nil {
		return err
	}

	if err := backtest.SetDataPath(opts.DataPath); err != nil {
		return err
	}

	callbacks := func(description string) engine.LifecycleCallbacks {
		if !opts.ShowProgress {
			return engine.LifecycleCallbacks{}
		}

		return progressCallbacks(os.Stderr, description)
	}

	if config.Ranking.Enabled {
		ranked, err := backtest.RankIntervals(ctx, callbacks("Ranking intervals"))
		if err != nil {
			return err
		}

		fmt.Fprintln(out, report.Ranking(fmt.Sprintf("Best %d intervals of %d", len(ranked), config.Ranking.MaxInterval), ranked))

		priceField, err := config.RankingPriceField()
		if err != nil {
			return err
		}

		for _, c := range enginev1.IntervalStrategyConfigs(ranked, config.Ranking.Capital, priceField) {
			s, err := strategy.FromConfig(c, config.TrialDays)
			if err != nil {
				return err
			}

			if err := backtest.LoadStrategy(s); err != nil {
				return err
			}
		}
	}

	if err := backtest.LoadStrategiesFromConfig(); err != nil {
		return err
	}

	results, err := backtest.Run(ctx, callbacks("Comparing strategies"))
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s: %d trials of %d trading days", config.Symbol, config.Trials, config.TrialDays)

	return report.Write(out, title, results)
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Compare dollar-cost averaging strategies over random historical windows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the backtest config YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Parquet or CSV file holding the daily bars",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "DuckDB database path",
				Value: ":memory:",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show trial progress bars",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, options{
				ConfigPath:   cmd.String("config"),
				DataPath:     cmd.String("data"),
				DatabasePath: cmd.String("db"),
				ShowProgress: cmd.Bool("progress"),
			}, cmd.Root().Writer)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
