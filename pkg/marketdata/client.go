package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=duckdb"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a daily bar download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// OutputFileName is the parquet file name a download is stored under: TICKER_START_END_1d.parquet.
func (p DownloadParams) OutputFileName() string {
	return fmt.Sprintf("%s_%s_%s_1d.parquet",
		p.Ticker,
		p.StartDate.Format(time.DateOnly),
		p.EndDate.Format(time.DateOnly))
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	var marketProvider provider.Provider

	var err error

	switch config.ProviderType {
	case ProviderPolygon:
		marketProvider, err = provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Polygon client: %w", err)
		}
	case ProviderBinance:
		marketProvider, err = provider.NewBinanceClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create Binance client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.ProviderType)
	}

	return newClientWithProvider(config, marketProvider, onProgress, log), nil
}

func newClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
		log:        log,
	}
}

// Download fetches the daily bars described by params and returns the written parquet path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", fmt.Errorf("invalid download parameters: %w", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", fmt.Errorf("failed to setup writer: %w", err)
	}

	defer func() {
		if err := marketWriter.Close(); err != nil {
			c.log.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(marketWriter)

	c.log.Debug("Starting download",
		zap.String("provider", string(c.config.ProviderType)),
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
	)

	path, err := c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, c.onProgress)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	c.log.Info("Download completed", zap.String("ticker", params.Ticker), zap.String("path", path))

	return path, nil
}

// setupWriter creates the writer selected by the configuration. Providers initialize it.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", c.config.DataPath, err)
		}

		return writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, params.OutputFileName())), nil
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", c.config.WriterType)
	}
}
