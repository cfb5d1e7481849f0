package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-dca/internal/strategy Strategy
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-dca/pkg/marketdata/provider Provider
