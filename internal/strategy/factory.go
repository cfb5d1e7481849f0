package strategy

import (
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// Type names a purchase policy in configuration files.
type Type string

const (
	TypeInterval       Type = "interval"
	TypePercentLimited Type = "percent_limited"
	TypePercentConst   Type = "percent_const"
)

// AllTypes lists the policies FromConfig can build.
var AllTypes = []any{string(TypeInterval), string(TypePercentLimited), string(TypePercentConst)}

// Config is the file representation of one strategy under test.
type Config struct {
	Name        string  `yaml:"name" json:"name" jsonschema:"title=Name,description=Unique strategy name used in reports,required" validate:"required"`
	Type        Type    `yaml:"type" json:"type" jsonschema:"title=Type,description=Purchase policy,required" validate:"required,oneof=interval percent_limited percent_const"`
	Interval    int     `yaml:"interval,omitempty" json:"interval,omitempty" jsonschema:"title=Interval,description=Trading days between purchases (interval policy),minimum=1" validate:"required_if=Type interval,omitempty,min=1"`
	PercentDown float64 `yaml:"percent_down,omitempty" json:"percent_down,omitempty" jsonschema:"title=Percent Down,description=Intraday drop below the open that triggers a purchase,exclusiveMinimum=0,exclusiveMaximum=100" validate:"required_unless=Type interval,omitempty,gt=0,lt=100"`
	Capital     float64 `yaml:"capital,omitempty" json:"capital,omitempty" jsonschema:"title=Capital,description=Total dollars to deploy (interval and percent_limited policies),exclusiveMinimum=0" validate:"required_unless=Type percent_const,omitempty,gt=0"`
	TradeAmount float64 `yaml:"trade_amount,omitempty" json:"trade_amount,omitempty" jsonschema:"title=Trade Amount,description=Dollars per purchase (percent_const policy),exclusiveMinimum=0" validate:"required_if=Type percent_const,omitempty,gt=0"`
	PriceField  string  `yaml:"price_field,omitempty" json:"price_field,omitempty" jsonschema:"title=Price Field,description=Daily price purchases fill at (interval policy),enum=open,enum=close" validate:"omitempty,oneof=open close"`
}

// FromConfig builds the strategy described by config. duration is the number
// of leading window days eligible for purchases.
func FromConfig(config Config, duration int) (Strategy, error) {
	switch config.Type {
	case TypeInterval:
		field := types.PriceFieldOpen

		if config.PriceField != "" {
			parsed, err := types.ParsePriceField(config.PriceField)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid price field", err)
			}

			field = parsed
		}

		s, err := NewIntervalStrategy(IntervalConfig{
			Name:       config.Name,
			Interval:   config.Interval,
			Duration:   duration,
			Capital:    decimal.NewFromFloat(config.Capital),
			PriceField: field,
		})
		if err != nil {
			return nil, err
		}

		return s, nil
	case TypePercentLimited:
		s, err := NewPercentDropLimitedFunds(PercentDropLimitedConfig{
			Name:        config.Name,
			PercentDown: decimal.NewFromFloat(config.PercentDown),
			Duration:    duration,
			Capital:     decimal.NewFromFloat(config.Capital),
		})
		if err != nil {
			return nil, err
		}

		return s, nil
	case TypePercentConst:
		s, err := NewPercentDropConstTrade(PercentDropConstTradeConfig{
			Name:        config.Name,
			PercentDown: decimal.NewFromFloat(config.PercentDown),
			Duration:    duration,
			TradeAmount: decimal.NewFromFloat(config.TradeAmount),
		})
		if err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy type %q", config.Type)
	}
}

// IntervalRange builds one interval strategy for every interval from 1 to
// maxInterval, named "every N days".
func IntervalRange(maxInterval int, duration int, capital decimal.Decimal, field types.PriceField) ([]*IntervalStrategy, error) {
	if maxInterval < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "max interval must be at least 1, got %d", maxInterval)
	}

	strategies := make([]*IntervalStrategy, 0, maxInterval)

	for interval := 1; interval <= maxInterval; interval++ {
		s, err := NewIntervalStrategy(IntervalConfig{
			Name:       IntervalName(interval),
			Interval:   interval,
			Duration:   duration,
			Capital:    capital,
			PriceField: field,
		})
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, s)
	}

	return strategies, nil
}
