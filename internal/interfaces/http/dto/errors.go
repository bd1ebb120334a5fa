package dto

import (
	"net/http"

	"github.com/kegledger/backend/internal/domain/shared"
)

// Error codes returned in the response envelope. Domain codes are passed
// through unchanged; the rest belong to the transport.
const (
	ErrCodeValidation     = shared.CodeValidation
	ErrCodeInvalidInput   = shared.CodeInvalidInput
	ErrCodeNotFound       = shared.CodeNotFound
	ErrCodeAlreadyExists  = shared.CodeAlreadyExists
	ErrCodeDuplicateBatch = shared.CodeDuplicateBatch
	ErrCodeBusinessRule   = shared.CodeBusinessRule
	ErrCodeDataIntegrity  = shared.CodeDataIntegrity

	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Malformed or invalid input -> 400
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Resource conflicts -> 409
	ErrCodeAlreadyExists:  http.StatusConflict,
	ErrCodeDuplicateBatch: http.StatusConflict,

	// Refused as a whole by a ledger rule -> 422
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeDataIntegrity: http.StatusInternalServerError,
	ErrCodeInternal:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
