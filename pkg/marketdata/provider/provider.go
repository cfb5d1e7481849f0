package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-dca/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports download progress. current and total share a unit
// chosen by the provider; total never changes during one download.
type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer for the provider
	// Writer is used to write the daily bars to a file or database.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download downloads the daily bars for the given ticker and date range.
	// The context can be used to cancel the download operation.
	// example:
	// Download(ctx, "VOO", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), onProgress)
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}

// tradingDay drops the time of day so every provider stores bars at UTC midnight.
func tradingDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
