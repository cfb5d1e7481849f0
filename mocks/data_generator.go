package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/types"
)

// DataGenerator generates daily price histories for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how daily bars are generated.
type GeneratorConfig struct {
	// StartTime is the first trading day
	StartTime time.Time
	// Days is the number of trading days to generate
	Days int
	// InitialPrice is the first open
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily move)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// IntradayRange scales how far high and low extend past open and close
	IntradayRange float64
}

// DefaultConfig returns roughly a year of S&P-like daily bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:     time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:          1000,
		InitialPrice:  300.0,
		Volatility:    0.01,
		Trend:         0.3,
		IntradayRange: 1.0,
	}
}

// Generate creates a daily history following a geometric Brownian motion.
// Weekends are skipped so consecutive records are consecutive trading days.
func (g *DataGenerator) Generate(config GeneratorConfig) types.PriceHistory {
	history := make(types.PriceHistory, config.Days)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Days; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Days)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := g.rng.Float64() * config.Volatility * open * config.IntradayRange
		lowExtension := g.rng.Float64() * config.Volatility * open * config.IntradayRange

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		history[i] = types.NewDailyRecord(
			currentTime,
			roundToDecimals(open, 4),
			roundToDecimals(high, 4),
			roundToDecimals(low, 4),
			roundToDecimals(closePrice, 4),
		)

		currentPrice = closePrice
		currentTime = nextTradingDay(currentTime)
	}

	return history
}

// GenerateMultiSymbol generates one history per symbol with slightly varied
// starting prices and volatility.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) map[string]types.PriceHistory {
	histories := make(map[string]types.PriceHistory, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		histories[symbol] = g.Generate(config)
	}

	return histories
}

// GenerateYears generates n years of 252 trading days with default settings.
func GenerateYears(n int) types.PriceHistory {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Days = n * 252

	return gen.Generate(config)
}

func nextTradingDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
