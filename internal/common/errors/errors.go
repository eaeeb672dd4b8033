// Package errors provides standardized error handling for the analyzer, its
// HTTP API and its workflow job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigurationMissing    ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeUpstreamUnavailable     ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected        ErrorCode = "UPSTREAM_REJECTED"
	ErrCodeUpstreamTimeout         ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamInvalidResponse ErrorCode = "UPSTREAM_INVALID_RESPONSE"

	ErrCodeFixtureLoadFailure ErrorCode = "FIXTURE_LOAD_FAILURE"

	ErrCodeInvalidSettings ErrorCode = "INVALID_SETTINGS"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"

	ErrCodeAnalysisNotFound     ErrorCode = "ANALYSIS_NOT_FOUND"
	ErrCodeStoreOperationFailed ErrorCode = "STORE_OPERATION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError carrying the same code, so callers can
// compare against the exported sentinels with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrConfigurationMissing    = &StandardError{Code: ErrCodeConfigurationMissing}
	ErrUpstreamUnavailable     = &StandardError{Code: ErrCodeUpstreamUnavailable}
	ErrUpstreamRejected        = &StandardError{Code: ErrCodeUpstreamRejected}
	ErrUpstreamTimeout         = &StandardError{Code: ErrCodeUpstreamTimeout}
	ErrUpstreamInvalidResponse = &StandardError{Code: ErrCodeUpstreamInvalidResponse}
	ErrFixtureLoadFailure      = &StandardError{Code: ErrCodeFixtureLoadFailure}
	ErrInvalidSettings         = &StandardError{Code: ErrCodeInvalidSettings}
	ErrInvalidInput            = &StandardError{Code: ErrCodeInvalidInput}
	ErrAnalysisNotFound        = &StandardError{Code: ErrCodeAnalysisNotFound}
	ErrStoreOperationFailed    = &StandardError{Code: ErrCodeStoreOperationFailed}
)

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

// NewConfigurationMissingError is returned before any network call when live
// mode lacks its endpoint or credential.
func NewConfigurationMissingError(missing ...string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Agent endpoint and API key are required for live mode",
		Details:   fmt.Sprintf("missing: %v", missing),
		Retryable: false,
		Metadata:  map[string]interface{}{"missing": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError wraps a transport failure (refused, DNS, reset).
func NewUpstreamUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Failed to connect to the analysis agent",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamRejectedError reports a non-success HTTP status from the agent.
func NewUpstreamRejectedError(statusCode int, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamRejected,
		Message:   fmt.Sprintf("Agent API error: %s", status),
		Details:   fmt.Sprintf("status %d", statusCode),
		Retryable: statusCode >= http.StatusInternalServerError,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError reports that the live call ran past its deadline.
func NewUpstreamTimeoutError(timeout time.Duration, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Analysis agent did not respond in time",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamInvalidResponseError reports a success status with a body that
// is not a structured response.
func NewUpstreamInvalidResponseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamInvalidResponse,
		Message:   "Analysis agent returned an unreadable response",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewFixtureLoadFailureError is fatal at start-up.
func NewFixtureLoadFailureError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFixtureLoadFailure,
		Message:   "Scenario catalog could not be loaded",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidSettingsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSettings,
		Message:   "Invalid analyzer settings",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid analysis input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAnalysisNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisNotFound,
		Message:   "Analysis not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewStoreOperationFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreOperationFailed,
		Message:   "Analysis store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Helpers
// ==========================

// AsStandardError extracts a StandardError from err's chain, or wraps err as
// an internal error.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}

// BPMNErrorMapping maps internal codes to the codes declared in the BPMN models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeConfigurationMissing:    "ANALYZER_NOT_CONFIGURED",
	ErrCodeUpstreamUnavailable:     "AGENT_UNAVAILABLE",
	ErrCodeUpstreamRejected:        "AGENT_REJECTED",
	ErrCodeUpstreamTimeout:         "AGENT_TIMEOUT",
	ErrCodeUpstreamInvalidResponse: "AGENT_INVALID_RESPONSE",
	ErrCodeFixtureLoadFailure:      "CATALOG_UNAVAILABLE",
	ErrCodeInvalidSettings:         "INVALID_SETTINGS",
	ErrCodeInvalidInput:            "INVALID_INPUT",
	ErrCodeAnalysisNotFound:        "ANALYSIS_NOT_FOUND",
	ErrCodeStoreOperationFailed:    "STORE_FAILED",
}

// GetRetryCount returns how many job retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamUnavailable, ErrCodeStoreOperationFailed:
		return 3
	case ErrCodeUpstreamTimeout, ErrCodeUpstreamRejected:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError onto its BPMN counterpart.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	code, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		code = string(stdErr.Code)
	}

	return &BPMNError{
		Code:           code,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}

// IsRetryableErrorCode reports whether the code has a retry budget.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeConfigurationMissing, ErrCodeInvalidSettings:
		return "configuration"
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamRejected, ErrCodeUpstreamTimeout, ErrCodeUpstreamInvalidResponse:
		return "upstream"
	case ErrCodeFixtureLoadFailure:
		return "startup"
	case ErrCodeInvalidInput:
		return "validation"
	case ErrCodeAnalysisNotFound, ErrCodeStoreOperationFailed:
		return "storage"
	default:
		return "internal"
	}
}

// HTTPStatus maps a code onto the status the API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidSettings:
		return http.StatusBadRequest
	case ErrCodeAnalysisNotFound:
		return http.StatusNotFound
	case ErrCodeConfigurationMissing:
		return http.StatusPreconditionFailed
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamRejected, ErrCodeUpstreamInvalidResponse:
		return http.StatusBadGateway
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeFixtureLoadFailure, ErrCodeStoreOperationFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
