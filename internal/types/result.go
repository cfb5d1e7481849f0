package types

import "github.com/shopspring/decimal"

// ResultSnapshot is the outcome of one strategy in one trial, taken after the
// terminal valuation price was applied.
type ResultSnapshot struct {
	// OrderCount is the number of simulated buys.
	OrderCount int `yaml:"order_count"`
	// TotalSpent is the cost basis: dollars committed to buys.
	TotalSpent decimal.Decimal `yaml:"total_spent"`
	// FinalValuation is shares held times the valuation price.
	FinalValuation decimal.Decimal `yaml:"final_valuation"`
	// NetReturn is FinalValuation - TotalSpent.
	NetReturn decimal.Decimal `yaml:"net_return"`
	// PercentReturn is FinalValuation / TotalSpent - 1, or 0 when nothing was spent.
	PercentReturn decimal.Decimal `yaml:"percent_return"`
}

// AveragedResult is a strategy's ResultSnapshot averaged over all completed trials.
type AveragedResult struct {
	Name   string `yaml:"name"`
	Trials int    `yaml:"trials"`

	AvgOrderCount     decimal.Decimal `yaml:"avg_order_count"`
	AvgTotalSpent     decimal.Decimal `yaml:"avg_total_spent"`
	AvgFinalValuation decimal.Decimal `yaml:"avg_final_valuation"`
	AvgNetReturn      decimal.Decimal `yaml:"avg_net_return"`
	AvgPercentReturn  decimal.Decimal `yaml:"avg_percent_return"`
	// RankingKey is sum(net return) / sum(total spent) across trials.
	RankingKey decimal.Decimal `yaml:"ranking_key"`
}

// RankedInterval is one retained entry of a best-interval search.
type RankedInterval struct {
	Interval int            `yaml:"interval"`
	Result   AveragedResult `yaml:"result"`
}
