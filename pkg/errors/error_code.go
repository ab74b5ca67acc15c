package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeConfiguration    ErrorCode = 100
	ErrCodeInvalidParameter ErrorCode = 101

	// Data errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 200
	ErrCodeInvalidRange    ErrorCode = 201
	ErrCodeDataParseFailed ErrorCode = 202

	// Decision errors (300-399)
	ErrCodeDecisionUnavailable ErrorCode = 300
	ErrCodeInvalidDecision     ErrorCode = 301

	// Ledger errors (400-499)
	ErrCodeInsufficientFunds ErrorCode = 400
	ErrCodeInvalidOrder      ErrorCode = 401

	// Output errors (500-599)
	ErrCodeOutputFailed ErrorCode = 500
)

// IsFatal reports whether errors with this code abort a run before simulation.
func (c ErrorCode) IsFatal() bool {
	switch c {
	case ErrCodeConfiguration, ErrCodeInvalidParameter,
		ErrCodeDataUnavailable, ErrCodeInvalidRange, ErrCodeDataParseFailed:
		return true
	default:
		return false
	}
}
