// Package errors provides the error taxonomy of the risk query engine and its
// mapping onto BPMN errors for Zeebe workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Engine taxonomy. None of these are fatal to the process.
const (
	ErrCodeNoEntityRecognized ErrorCode = "NO_ENTITY_RECOGNIZED"
	ErrCodeNoDataForSelection ErrorCode = "NO_DATA_FOR_SELECTION"
	ErrCodeTransportFailure   ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeMalformedRecord    ErrorCode = "MALFORMED_RECORD"
)

// Input and infrastructure codes.
const (
	ErrCodeInvalidSelection       ErrorCode = "INVALID_SELECTION"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidQueryType       ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeQueryTimeout           ErrorCode = "QUERY_TIMEOUT"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any *StandardError carrying the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNoEntityRecognizedError is returned when a message names no known country.
// The vocabulary is carried so callers can prompt with the valid choices.
func NewNoEntityRecognizedError(vocabulary []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoEntityRecognized,
		Message:   "No known country recognised in message",
		Details:   strings.Join(vocabulary, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"vocabulary": vocabulary},
		Timestamp: time.Now().UTC(),
	}
}

// NewNoDataForSelectionError is returned when a valid selection filters to nothing.
func NewNoDataForSelectionError(countries []string, year *int) *StandardError {
	details := strings.Join(countries, ", ")
	if year != nil {
		details = fmt.Sprintf("%s in %d", details, *year)
	}
	return &StandardError{
		Code:      ErrCodeNoDataForSelection,
		Message:   fmt.Sprintf("No data available for %s", details),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailureError wraps a failed record fetch. It is never retried automatically.
func NewTransportFailureError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   fmt.Sprintf("Failed to fetch risk records from %s", source),
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidSelectionError rejects an explicit selection.
func NewInvalidSelectionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSelection,
		Message:   "Invalid country selection",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError rejects a malformed request or job payload.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError rejects an unknown record store query.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unknown query type",
		Details:   queryType,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   fmt.Sprintf("Query %s timed out", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send %s notification", channel),
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	default:
		// Business outcomes and transport failures are never retried.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are identical to internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsUserFacing reports whether the code is a normal, user-visible outcome
// rather than a system fault.
func IsUserFacing(code ErrorCode) bool {
	switch code {
	case ErrCodeNoEntityRecognized, ErrCodeNoDataForSelection, ErrCodeInvalidSelection, ErrCodeInvalidInput:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeNoEntityRecognized, ErrCodeNoDataForSelection:
		return "QUERY"
	case ErrCodeTransportFailure, ErrCodeQueryTimeout:
		return "DATABASE"
	case ErrCodeMalformedRecord:
		return "DATA"
	case ErrCodeNotificationSendFailed:
		return "NOTIFICATION"
	case ErrCodeInvalidSelection, ErrCodeInvalidInput, ErrCodeInvalidQueryType:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
