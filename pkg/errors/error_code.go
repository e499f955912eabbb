package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeUnsupportedAsset     ErrorCode = 102
	ErrCodeInvalidObjective     ErrorCode = 103
	ErrCodeInvalidTolerance     ErrorCode = 104
	ErrCodeInvalidCosts         ErrorCode = 105
	ErrCodeInvalidWindow        ErrorCode = 106
	ErrCodeInvalidThreshold     ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound      ErrorCode = 200
	ErrCodeQueryFailed       ErrorCode = 201
	ErrCodePriceLoadFailed   ErrorCode = 202
	ErrCodeNewsLoadFailed    ErrorCode = 203
	ErrCodeColumnNotFound    ErrorCode = 204
	ErrCodeResultsWriteFailed ErrorCode = 205

	// Optimization errors (300-399)
	ErrCodeNoValidCombinations ErrorCode = 300

	// Market data errors (400-499)
	ErrCodeMarketDataFetchFailed ErrorCode = 400
	ErrCodeMarketDataWriteFailed ErrorCode = 401
	ErrCodeInvalidInterval       ErrorCode = 402
)
