package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"binance", "polygon"}, GetSupportedProviders())
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo() {
	info, err := GetProviderInfo("polygon")
	suite.NoError(err)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)

	info, err = GetProviderInfo("binance")
	suite.NoError(err)
	suite.Equal("Binance", info.DisplayName)
	suite.False(info.RequiresAuth)

	_, err = GetProviderInfo("invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "unsupported provider")
}

func (suite *ProviderRegistryTestSuite) TestGetDownloadConfigSchema() {
	tests := []struct {
		provider string
		apiKey   bool
	}{
		{provider: "polygon", apiKey: true},
		{provider: "binance", apiKey: false},
	}

	for _, tt := range tests {
		suite.Run(tt.provider, func() {
			schema, err := GetDownloadConfigSchema(tt.provider)
			suite.Require().NoError(err)

			var schemaMap map[string]interface{}
			suite.Require().NoError(json.Unmarshal([]byte(schema), &schemaMap))
			suite.Equal("object", schemaMap["type"])

			properties, ok := schemaMap["properties"].(map[string]interface{})
			suite.Require().True(ok)
			suite.Contains(properties, "ticker")
			suite.Contains(properties, "startDate")

			_, hasKey := properties["apiKey"]
			suite.Equal(tt.apiKey, hasKey)
		})
	}

	schema, err := GetDownloadConfigSchema("invalid")
	suite.Error(err)
	suite.Empty(schema)
}

func (suite *ProviderRegistryTestSuite) TestParseDownloadConfig() {
	config, err := ParseDownloadConfig("polygon", `{"ticker": "VOO", "startDate": "2015-01-01", "endDate": "2024-12-31", "apiKey": "test-api-key"}`)
	suite.Require().NoError(err)

	polygonConfig, ok := config.(*PolygonDownloadConfig)
	suite.Require().True(ok)
	suite.Equal("VOO", polygonConfig.Ticker)
	suite.Equal("test-api-key", polygonConfig.ApiKey)

	config, err = ParseDownloadConfig("binance", `{"ticker": "BTCUSDT", "startDate": "2024-01-01T00:00:00Z", "endDate": "2024-12-31T00:00:00Z"}`)
	suite.Require().NoError(err)

	binanceConfig, ok := config.(*BinanceDownloadConfig)
	suite.Require().True(ok)
	suite.Equal("BTCUSDT", binanceConfig.Ticker)

	_, err = ParseDownloadConfig("invalid", `{"ticker": "SPY"}`)
	suite.Contains(err.Error(), "unsupported provider")

	_, err = ParseDownloadConfig("polygon", `{invalid json}`)
	suite.Contains(err.Error(), "failed to parse JSON")

	_, err = ParseDownloadConfig("polygon", `{"ticker": "SPY"}`)
	suite.Error(err)
}
