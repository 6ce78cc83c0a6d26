// Package errors provides the error taxonomy of the trends client.
//
// Every failure surfaced by the client belongs to one of four kinds:
//   - CONFIGURATION_ERROR: a setting is missing, mistyped or out of range
//   - VALIDATION_ERROR: request parameters were rejected before any I/O
//   - NETWORK_ERROR: the request could not be delivered (after retries)
//   - API_ERROR: the server answered with a failure or an unreadable body
//
// Each kind is a concrete struct carrying a human-readable message, an
// optional wrapped cause and a bag of diagnostic fields. Callers
// distinguish them with errors.As or by code:
//
//	var apiErr *errors.APIError
//	if stderrors.As(err, &apiErr) && apiErr.StatusCode == 429 {
//	    // back off
//	}
//
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // fix the input
//	}
package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Code represents a machine-readable error code.
type Code string

// Error codes, one per error kind.
const (
	ErrCodeConfiguration Code = "CONFIGURATION_ERROR"
	ErrCodeValidation    Code = "VALIDATION_ERROR"
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeAPI           Code = "API_ERROR"
)

// Sentinels matched by [APIError.Is] according to the HTTP status.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
)

// TrendsError is implemented by every error kind of this package.
type TrendsError interface {
	error
	Code() Code
	// Fields returns a copy of the diagnostic context.
	Fields() map[string]any
}

// Fields is the diagnostic context attached to an error.
type Fields map[string]any

func (f Fields) clone() map[string]any {
	if f == nil {
		return map[string]any{}
	}
	return maps.Clone(map[string]any(f))
}

// =============================================================================
// Configuration
// =============================================================================

// ConfigurationError reports a missing, mistyped or out-of-range setting.
type ConfigurationError struct {
	Message  string
	Key      string // dotted path of the offending setting
	Value    any    // offending value; nil for missing keys
	Expected string // violated constraint, e.g. "integer" or "Value <= 10"
	Cause    error
	Context  Fields
}

// NewConfiguration creates a ConfigurationError for key.
func NewConfiguration(key string, value any, expected, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Message:  fmt.Sprintf(format, args...),
		Key:      key,
		Value:    value,
		Expected: expected,
	}
}

func (e *ConfigurationError) Error() string { return withCause(e.Message, e.Cause) }
func (e *ConfigurationError) Unwrap() error { return e.Cause }
func (e *ConfigurationError) Code() Code    { return ErrCodeConfiguration }

// Fields returns the context together with key, value and expected constraint.
func (e *ConfigurationError) Fields() map[string]any {
	f := e.Context.clone()
	f["key"] = e.Key
	if e.Value != nil {
		f["value"] = e.Value
	}
	if e.Expected != "" {
		f["expected"] = e.Expected
	}
	return f
}

// =============================================================================
// Validation
// =============================================================================

// ValidationError reports request parameters rejected before any I/O.
type ValidationError struct {
	Message    string
	Parameter  string   // offending parameter, when a single one is at fault
	Value      any      // offending value, when known
	Violations []string // every collected rule violation
	Cause      error
	Context    Fields
}

// NewValidation creates a ValidationError with the given violations.
func NewValidation(message string, violations ...string) *ValidationError {
	return &ValidationError{Message: message, Violations: violations}
}

// InvalidParameter creates a ValidationError for a single parameter.
func InvalidParameter(param string, value any, format string, args ...any) *ValidationError {
	msg := fmt.Sprintf(format, args...)
	return &ValidationError{
		Message:    msg,
		Parameter:  param,
		Value:      value,
		Violations: []string{msg},
	}
}

func (e *ValidationError) Error() string { return withCause(e.Message, e.Cause) }
func (e *ValidationError) Unwrap() error { return e.Cause }
func (e *ValidationError) Code() Code    { return ErrCodeValidation }

// Fields returns the context together with the parameter and violations.
func (e *ValidationError) Fields() map[string]any {
	f := e.Context.clone()
	if e.Parameter != "" {
		f["parameter"] = e.Parameter
		f["value"] = e.Value
	}
	if len(e.Violations) > 0 {
		f["errors"] = append([]string(nil), e.Violations...)
	}
	return f
}

// =============================================================================
// Network
// =============================================================================

// NetworkError reports a request that could not be delivered.
type NetworkError struct {
	Message  string
	Method   string
	URL      string
	Attempts int // number of attempts made, 0 when no I/O happened
	Cause    error
	Context  Fields
}

// NewNetwork creates a NetworkError for the given request.
func NewNetwork(method, url string, cause error, format string, args ...any) *NetworkError {
	return &NetworkError{
		Message: fmt.Sprintf(format, args...),
		Method:  method,
		URL:     url,
		Cause:   cause,
	}
}

func (e *NetworkError) Error() string { return withCause(e.Message, e.Cause) }
func (e *NetworkError) Unwrap() error { return e.Cause }
func (e *NetworkError) Code() Code    { return ErrCodeNetwork }

// Fields returns the context together with the request coordinates.
func (e *NetworkError) Fields() map[string]any {
	f := e.Context.clone()
	f["method"] = e.Method
	f["url"] = e.URL
	if e.Attempts > 0 {
		f["attempts"] = e.Attempts
	}
	if e.Cause != nil {
		f["error"] = e.Cause.Error()
	}
	return f
}

// =============================================================================
// API
// =============================================================================

// APIError reports a non-2xx response or an undecodable success body.
type APIError struct {
	Message    string
	StatusCode int
	Reason     string         // HTTP reason phrase
	APICode    string         // "code" field of the error body, if any
	Errors     any            // "errors" field (field-level violations), if any
	Details    any            // "details" field, if any
	DebugID    string         // "debug_id" field, if any
	Body       []byte         // raw response body
	Data       map[string]any // decoded response body, nil when not JSON
	Cause      error
	Context    Fields
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return withCause(msg, e.Cause)
}

func (e *APIError) Unwrap() error { return e.Cause }
func (e *APIError) Code() Code    { return ErrCodeAPI }

// Is maps the status code onto the package sentinels so callers can write
// errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401
	case ErrForbidden:
		return e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimited:
		return e.StatusCode == 429
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// Fields returns the context together with the decoded error detail.
func (e *APIError) Fields() map[string]any {
	f := e.Context.clone()
	f["status_code"] = e.StatusCode
	if e.Reason != "" {
		f["reason_phrase"] = e.Reason
	}
	if e.APICode != "" {
		f["error_code"] = e.APICode
	}
	if e.Errors != nil {
		f["errors"] = e.Errors
	}
	if e.Details != nil {
		f["details"] = e.Details
	}
	if e.DebugID != "" {
		f["debug_id"] = e.DebugID
	}
	if len(e.Body) > 0 {
		f["response_body"] = string(e.Body)
	}
	return f
}

// =============================================================================
// Helpers
// =============================================================================

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if err is not a [TrendsError].
func GetCode(err error) Code {
	var e TrendsError
	if errors.As(err, &e) {
		return e.Code()
	}
	return ""
}

// UserMessage returns the message without cause or status decoration.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var (
		ce *ConfigurationError
		ve *ValidationError
		ne *NetworkError
		ae *APIError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Message
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ne):
		return ne.Message
	case errors.As(err, &ae):
		return ae.Message
	}
	return err.Error()
}

// IsRetryable reports whether repeating the call may succeed later. Network
// failures qualify only when I/O was attempted; dry-run refusals never do.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Attempts > 0
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer)
}

func withCause(msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("%s: %v", msg, cause)
	}
	return msg
}
