package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/marketdata/writer"
)

const (
	binanceDailyInterval = "1d"
	binancePageSize      = 500
)

// BinanceKlinesService is the subset of the binance klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.MarketDataWriter
}

func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		apiClient: &binanceClientWrapper{client: binance.NewClient("", "")},
		writer:    nil,
	}, nil
}

// NewBinanceClientWithAPI creates a client backed by the given API implementation.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download downloads the daily klines for the given ticker and date range from Binance.
// Klines are requested page by page; progress is reported in milliseconds since startDate.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("writer is not configured")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	total := float64(endTimeMillis - startTimeMillis)
	message := fmt.Sprintf("Downloading %s klines from Binance", ticker)

	currentStartTime := startTimeMillis

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(binanceDailyInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return "", c.abort(fmt.Errorf("failed to fetch klines from Binance: %w", err))
		}

		if err := processKlines(c.writer, ticker, klines); err != nil {
			return "", c.abort(fmt.Errorf("failed to process klines: %w", err))
		}

		reportProgress(onProgress, float64(min(currentStartTime, endTimeMillis)-startTimeMillis), total, message)

		if len(klines) < binancePageSize {
			break
		}

		// Continue after the close time of the last kline to avoid duplicates.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	reportProgress(onProgress, total, total, message)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// abort finalizes the writer after a failed page so partial data is flushed.
func (c *BinanceClient) abort(cause error) error {
	if _, finalizeErr := c.writer.Finalize(); finalizeErr != nil {
		return fmt.Errorf("%w; also failed to finalize writer: %v", cause, finalizeErr)
	}

	return cause
}

// processKlines converts Binance klines to daily records and writes them.
func processKlines(w writer.MarketDataWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		prices := make([]float64, 0, 4)

		for _, raw := range []string{k.Open, k.High, k.Low, k.Close} {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid price %q in kline at %d: %w", raw, k.OpenTime, err)
			}

			prices = append(prices, price)
		}

		record := types.NewDailyRecord(tradingDay(time.UnixMilli(k.OpenTime)), prices[0], prices[1], prices[2], prices[3])

		if err := w.Write(ticker, record); err != nil {
			return fmt.Errorf("failed to write market data: %w", err)
		}
	}

	return nil
}
