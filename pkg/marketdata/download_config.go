package marketdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download daily bars for (e.g. VOO or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=First day to download (YYYY-MM-DD or RFC3339),required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=Last day to download (YYYY-MM-DD or RFC3339),required" validate:"required"`
}

// PolygonDownloadConfig contains configuration for downloading from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceDownloadConfig contains configuration for downloading from Binance.
// Binance public market data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// parseDate accepts a plain date or an RFC3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, value)
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	start, err := parseDate(c.StartDate)
	if err != nil {
		return fmt.Errorf("invalid startDate format, expected YYYY-MM-DD or RFC3339: %w", err)
	}

	end, err := parseDate(c.EndDate)
	if err != nil {
		return fmt.Errorf("invalid endDate format, expected YYYY-MM-DD or RFC3339: %w", err)
	}

	if !end.After(start) {
		return fmt.Errorf("endDate %s must be after startDate %s", c.EndDate, c.StartDate)
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the BinanceDownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts a BaseDownloadConfig to DownloadParams.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := parseDate(c.StartDate)
	if err != nil {
		return DownloadParams{}, fmt.Errorf("failed to parse startDate: %w", err)
	}

	endDate, err := parseDate(c.EndDate)
	if err != nil {
		return DownloadParams{}, fmt.Errorf("failed to parse endDate: %w", err)
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// ToClientConfig converts a PolygonDownloadConfig to ClientConfig.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
	}
}

// ToClientConfig converts a BinanceDownloadConfig to ClientConfig.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  ProviderBinance,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: "",
	}
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	var config PolygonDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	var config BinanceDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
