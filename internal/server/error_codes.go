package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidID       = 1003
	ErrCodeMissingRequired = 1004

	// Domain state (2xxx)
	ErrCodeBlobNotFound = 2001

	// Auth (3xxx)
	ErrCodeUnauthorized = 3001
	ErrCodeForbidden    = 3002

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeBlobNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
