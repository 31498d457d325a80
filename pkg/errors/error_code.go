package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidSymbol        ErrorCode = 120
	ErrCodeInvalidDateRange     ErrorCode = 121

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound         ErrorCode = 200
	ErrCodeQueryFailed          ErrorCode = 202
	ErrCodeHistoricalDataFailed ErrorCode = 203
	ErrCodeNoDataFound          ErrorCode = 204
	ErrCodeStorageFailed        ErrorCode = 206
	ErrCodeTransactionFailed    ErrorCode = 207
	ErrCodeSchemaMismatch       ErrorCode = 208

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeUnsupportedStrategy  ErrorCode = 403
	ErrCodeNoValidStrategy      ErrorCode = 405

	// Trading errors (500-599)
	ErrCodeOrderFailed        ErrorCode = 500
	ErrCodePositionNotFound   ErrorCode = 501
	ErrCodeMarketDataMissing  ErrorCode = 502
	ErrCodeInsufficientFunds  ErrorCode = 503
	ErrCodeInsufficientShares ErrorCode = 504
	ErrCodeEngineRunning      ErrorCode = 505

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 601
	ErrCodeBacktestConfigError  ErrorCode = 602
	ErrCodeBacktestNoStrategies ErrorCode = 604
	ErrCodeBacktestNoTickers    ErrorCode = 609
	ErrCodeBacktestCancelled    ErrorCode = 610

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800

	// Session errors (900-999)
	ErrCodeSessionNotFound ErrorCode = 900
	ErrCodeSessionConflict ErrorCode = 901
	ErrCodeSessionClosed   ErrorCode = 902
	ErrCodeNoTickers       ErrorCode = 903
)
