package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/writer"
)

// PolygonAggsIterator is the subset of the polygon aggregates iterator used by the client.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	return &PolygonClient{
		apiClient: &polygonClientWrapper{client: polygon.New(apiKey)},
		writer:    nil,
	}, nil
}

// NewPolygonClientWithAPI creates a client backed by the given API implementation.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download fetches split-adjusted daily aggregates and writes them through the configured writer.
// Progress is reported in calendar days since startDate.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	totalDays := float64(int(endDate.Sub(startDate).Hours()/24) + 1)
	message := fmt.Sprintf("Downloading %s", ticker)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("download cancelled: %w", err)
		}

		agg := iter.Item()
		day := tradingDay(time.Time(agg.Timestamp))

		if err := c.writer.Write(ticker, types.NewDailyRecord(day, agg.Open, agg.High, agg.Low, agg.Close)); err != nil {
			return "", fmt.Errorf("failed to write data: %w", err)
		}

		elapsed := float64(int(day.Sub(tradingDay(startDate)).Hours() / 24))
		reportProgress(onProgress, min(elapsed+1, totalDays), totalDays, message)
	}

	if iter.Err() != nil {
		return "", fmt.Errorf("error iterating polygon aggregates: %w", iter.Err())
	}

	reportProgress(onProgress, totalDays, totalDays, message)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}
