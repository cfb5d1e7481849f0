package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// newProgress returns a download callback driving a percentage progress bar.
func newProgress(w io.Writer, description string) (provider.OnDownloadProgress, *progressbar.ProgressBar) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(false),
	)

	return func(current float64, total float64, _ string) {
		if total <= 0 {
			return
		}

		_ = bar.Set(int(current / total * 100))
	}, bar
}

// downloadAction parses the flags, sets up the market data client and starts the download.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ticker := cmd.String("ticker")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	providerFlag := cmd.String("provider")
	dataPath := cmd.String("data")

	zapLogger, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}

	defer zapLogger.Sync()

	onProgress, bar := newProgress(os.Stderr, fmt.Sprintf("Downloading %s", ticker))

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(providerFlag),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: cmd.String("api-key"),
	}, onProgress, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:    ticker,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	fmt.Fprintf(cmd.Root().Writer, "\nDaily bars for %s written to %s\n", ticker, path)

	return nil
}

// providersAction lists the supported providers.
func providersAction(_ context.Context, cmd *cli.Command) error {
	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := ""
		if info.RequiresAuth {
			auth = " (requires API key)"
		}

		fmt.Fprintf(cmd.Root().Writer, "%-8s %s%s: %s\n", info.Name, info.DisplayName, auth, info.Description)
	}

	return nil
}

// schemaAction prints the JSON schema of a provider's download configuration.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := marketdata.GetDownloadConfigSchema(cmd.String("provider"))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func newCommand() *cli.Command {
	providerNames := strings.Join(marketdata.GetSupportedProviders(), ", ")

	return &cli.Command{
		Name:  "market",
		Usage: "Download historical daily bars",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download daily bars for a ticker into a parquet file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ticker",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbol",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "Start date in `YYYY-MM-DD` format",
						Config: cli.TimestampConfig{
							Layouts: []string{time.DateOnly, time.RFC3339},
						},
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now(),
						Config: cli.TimestampConfig{
							Layouts: []string{time.DateOnly, time.RFC3339},
						},
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (%s)", providerNames),
						Value:   string(marketdata.ProviderPolygon),
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Polygon.io API key",
						Sources: cli.EnvVars("POLYGON_API_KEY"),
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the data output directory",
						Value:   "data",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Log level (debug, info, warn, error)",
						Value: "warn",
					},
				},
				Action: downloadAction,
			},
			{
				Name:   "providers",
				Usage:  "List supported data providers",
				Action: providersAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of a provider's download config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "provider",
						Aliases:  []string{"p"},
						Usage:    fmt.Sprintf("Data provider (%s)", providerNames),
						Required: true,
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
