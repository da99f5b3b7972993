package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidVoteCount     ErrorCode = 104
	ErrCodeInvalidDelayRange    ErrorCode = 105
	ErrCodeInvalidObjective     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeMissingParameter     ErrorCode = 108

	// Data/Series errors (200-299)
	ErrCodeInvalidBar          ErrorCode = 200
	ErrCodeEmptySeries         ErrorCode = 201
	ErrCodeInsufficientHistory ErrorCode = 202
	ErrCodeDataNotFound        ErrorCode = 203
	ErrCodeQueryFailed         ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300
	ErrCodeFrameMisaligned      ErrorCode = 301

	// Backtest errors (600-699)
	ErrCodeBacktestFailed      ErrorCode = 600
	ErrCodeOptimizationFailed  ErrorCode = 601
	ErrCodeReportWriteFailed   ErrorCode = 602
	ErrCodeBacktestConfigError ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
)
