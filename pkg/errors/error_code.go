package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientHistory  ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidPrice         ErrorCode = 120
	ErrCodeInvalidInterval      ErrorCode = 121
	ErrCodeInvalidDuration      ErrorCode = 122
	ErrCodeInvalidAmount        ErrorCode = 123

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError     ErrorCode = 401
	ErrCodeStrategyRuntimeError    ErrorCode = 402
	ErrCodeUnsupportedStrategy     ErrorCode = 403
	ErrCodeVersionMismatch         ErrorCode = 404
	ErrCodeStrategyAlreadyExecuted ErrorCode = 405
	ErrCodeStrategyNotCalibrated   ErrorCode = 406
	ErrCodeDuplicateStrategyName   ErrorCode = 407

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 601
	ErrCodeBacktestConfigError  ErrorCode = 602
	ErrCodeBacktestNoStrategies ErrorCode = 604
	ErrCodeBacktestNoDatasource ErrorCode = 608
	ErrCodeEmptyAccumulator     ErrorCode = 609

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
)
