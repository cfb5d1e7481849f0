package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dca/internal/strategy"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/internal/version"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTrialDays   = 254
	DefaultTrials      = 200
	DefaultMaxInterval = 253
	DefaultTopN        = 10
	DefaultCapital     = 100000
)

// RankingConfig configures the best-interval search.
type RankingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Run the best-interval search before the comparison run"`
	MaxInterval int     `yaml:"max_interval" json:"max_interval" jsonschema:"title=Max Interval,description=Largest interval in trading days to evaluate,minimum=1,default=253" validate:"min=1"`
	TopN        int     `yaml:"top_n" json:"top_n" jsonschema:"title=Top N,description=Number of best intervals to keep,minimum=1,default=10" validate:"min=1"`
	PriceField  string  `yaml:"price_field" json:"price_field" jsonschema:"title=Price Field,description=Daily price interval purchases fill at,enum=open,enum=close,default=open" validate:"oneof=open close"`
	Capital     float64 `yaml:"capital" json:"capital" jsonschema:"title=Capital,description=Dollars each interval strategy deploys per trial,exclusiveMinimum=0,default=100000" validate:"gt=0"`
}

type BacktestEngineV1Config struct {
	Version        string                     `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the config was written for"`
	Symbol         string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument to load from the data file. Empty loads every row"`
	TrialDays      int                        `yaml:"trial_days" json:"trial_days" jsonschema:"title=Trial Days,description=Trading days eligible for purchases in each trial,minimum=1,default=254" validate:"min=1"`
	Trials         int                        `yaml:"trials" json:"trials" jsonschema:"title=Trials,description=Number of random windows to evaluate,minimum=1,default=200" validate:"min=1"`
	Seed           optional.Option[int64]     `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed for window sampling. A random seed is used when absent"`
	ValuationPrice optional.Option[float64]   `yaml:"valuation_price" json:"valuation_price" jsonschema:"title=Valuation Price,description=Terminal price applied to every trial. Defaults to the last close of the history"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional first day of history to load"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional last day of history to load"`
	Parallelism    int                        `yaml:"parallelism" json:"parallelism" jsonschema:"title=Parallelism,description=Strategies evaluated concurrently within a trial,minimum=1,default=1" validate:"min=1"`
	LogLevel       string                     `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
	Ranking        RankingConfig              `yaml:"ranking" json:"ranking" jsonschema:"title=Ranking,description=Best-interval search settings"`
	Strategies     []strategy.Config          `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Strategies compared in the comparison run" validate:"dive"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Absent fields keep their defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type rankingConfig struct {
		Enabled     *bool    `yaml:"enabled"`
		MaxInterval *int     `yaml:"max_interval"`
		TopN        *int     `yaml:"top_n"`
		PriceField  *string  `yaml:"price_field"`
		Capital     *float64 `yaml:"capital"`
	}

	type config struct {
		Version        string            `yaml:"version"`
		Symbol         string            `yaml:"symbol"`
		TrialDays      *int              `yaml:"trial_days"`
		Trials         *int              `yaml:"trials"`
		Seed           *int64            `yaml:"seed"`
		ValuationPrice *float64          `yaml:"valuation_price"`
		StartTime      *time.Time        `yaml:"start_time"`
		EndTime        *time.Time        `yaml:"end_time"`
		Parallelism    *int              `yaml:"parallelism"`
		LogLevel       string            `yaml:"log_level"`
		Ranking        rankingConfig     `yaml:"ranking"`
		Strategies     []strategy.Config `yaml:"strategies"`
	}

	var raw config
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = EmptyConfig()

	if raw.Version != "" {
		c.Version = raw.Version
	}

	c.Symbol = raw.Symbol
	setIfPresent(&c.TrialDays, raw.TrialDays)
	setIfPresent(&c.Trials, raw.Trials)
	setIfPresent(&c.Parallelism, raw.Parallelism)

	if raw.Seed != nil {
		c.Seed = optional.Some(*raw.Seed)
	}

	if raw.ValuationPrice != nil {
		c.ValuationPrice = optional.Some(*raw.ValuationPrice)
	}

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	}

	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}

	setIfPresent(&c.Ranking.Enabled, raw.Ranking.Enabled)
	setIfPresent(&c.Ranking.MaxInterval, raw.Ranking.MaxInterval)
	setIfPresent(&c.Ranking.TopN, raw.Ranking.TopN)
	setIfPresent(&c.Ranking.PriceField, raw.Ranking.PriceField)
	setIfPresent(&c.Ranking.Capital, raw.Ranking.Capital)

	c.Strategies = raw.Strategies

	return nil
}

func setIfPresent[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}

// MarshalYAML writes optional fields only when they are set.
func (c BacktestEngineV1Config) MarshalYAML() (interface{}, error) {
	type config struct {
		Version        string            `yaml:"version"`
		Symbol         string            `yaml:"symbol"`
		TrialDays      int               `yaml:"trial_days"`
		Trials         int               `yaml:"trials"`
		Seed           *int64            `yaml:"seed,omitempty"`
		ValuationPrice *float64          `yaml:"valuation_price,omitempty"`
		StartTime      *time.Time        `yaml:"start_time,omitempty"`
		EndTime        *time.Time        `yaml:"end_time,omitempty"`
		Parallelism    int               `yaml:"parallelism"`
		LogLevel       string            `yaml:"log_level"`
		Ranking        RankingConfig     `yaml:"ranking"`
		Strategies     []strategy.Config `yaml:"strategies"`
	}

	return config{
		Version:        c.Version,
		Symbol:         c.Symbol,
		TrialDays:      c.TrialDays,
		Trials:         c.Trials,
		Seed:           optionPointer(c.Seed),
		ValuationPrice: optionPointer(c.ValuationPrice),
		StartTime:      optionPointer(c.StartTime),
		EndTime:        optionPointer(c.EndTime),
		Parallelism:    c.Parallelism,
		LogLevel:       c.LogLevel,
		Ranking:        c.Ranking,
		Strategies:     c.Strategies,
	}, nil
}

func optionPointer[T any](o optional.Option[T]) *T {
	if o.IsNone() {
		return nil
	}

	v := o.Unwrap()

	return &v
}

// Validate checks field constraints, strategy name uniqueness and version
// compatibility with the running engine.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.ValuationPrice.IsSome() && c.ValuationPrice.Unwrap() <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPrice, "valuation price must be positive, got %v", c.ValuationPrice.Unwrap())
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "end time is before start time")
	}

	seen := make(map[string]struct{}, len(c.Strategies))
	for _, s := range c.Strategies {
		if _, ok := seen[s.Name]; ok {
			return errors.Newf(errors.ErrCodeDuplicateStrategyName, "strategy %q is configured more than once", s.Name)
		}

		seen[s.Name] = struct{}{}
	}

	// Ranked intervals join the comparison run as "every N days" strategies.
	if c.Ranking.Enabled {
		for interval := 1; interval <= c.Ranking.MaxInterval; interval++ {
			name := strategy.IntervalName(interval)
			if _, ok := seen[name]; ok {
				return errors.Newf(errors.ErrCodeDuplicateStrategyName,
					"strategy %q collides with a ranked interval strategy; rename it or disable ranking", name)
			}
		}
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "config version is not supported", err)
	}

	return nil
}

// RankingPriceField parses the ranking price field.
func (c *BacktestEngineV1Config) RankingPriceField() (types.PriceField, error) {
	return types.ParsePriceField(c.Ranking.PriceField)
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t.String() {
			case "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case "optional.Option[int64]":
				return &jsonschema.Schema{
					Type: "integer",
				}
			case "optional.Option[float64]":
				return &jsonschema.Schema{
					Type: "number",
				}
			}

			if strings.HasSuffix(t.String(), "strategy.Type") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: strategy.AllTypes,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a small, seeded configuration for tests.
func TestConfig(trialDays int, trials int, seed int64) BacktestEngineV1Config {
	config := EmptyConfig()
	config.TrialDays = trialDays
	config.Trials = trials
	config.Seed = optional.Some(seed)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:        version.GetVersion(),
		Symbol:         "",
		TrialDays:      DefaultTrialDays,
		Trials:         DefaultTrials,
		Seed:           optional.None[int64](),
		ValuationPrice: optional.None[float64](),
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		Parallelism:    1,
		LogLevel:       "info",
		Ranking: RankingConfig{
			Enabled:     false,
			MaxInterval: DefaultMaxInterval,
			TopN:        DefaultTopN,
			PriceField:  string(types.PriceFieldOpen),
			Capital:     DefaultCapital,
		},
		Strategies: nil,
	}
}

// SampleConfig returns the configuration written as a starting point by the
// generator: ranking enabled plus the percent-drop strategies of a typical run.
func SampleConfig() BacktestEngineV1Config {
	config := EmptyConfig()
	config.Symbol = "VOO"
	config.Ranking.Enabled = true
	config.Strategies = []strategy.Config{
		{
			Name:        "1% down limited",
			Type:        strategy.TypePercentLimited,
			PercentDown: 1,
			Capital:     DefaultCapital,
		},
		{
			Name:        "0.9% down const trade",
			Type:        strategy.TypePercentConst,
			PercentDown: 0.9,
			TradeAmount: 500,
		},
	}

	return config
}
