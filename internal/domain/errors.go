package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed request body or parameter.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypePrecondition indicates a local precondition was not met before
	// any oracle call was attempted.
	ErrorTypePrecondition ErrorType = "precondition_failed"

	// ErrorTypeAuthentication indicates an authentication failure.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeConflict indicates the resource is in the wrong state.
	ErrorTypeConflict ErrorType = "conflict"

	// ErrorTypeRateLimit indicates the client sent too many requests.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeServer indicates an internal server error.
	ErrorTypeServer ErrorType = "server"
)

// APIError is the error payload returned by the HTTP API.
type APIError struct {
	Type ErrorType `json:"type"`

	Message string `json:"message"`

	// Param is the field that caused the error (if applicable)
	Param string `json:"param,omitempty"`

	// StatusCode overrides the status derived from Type.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypePrecondition:
		return http.StatusUnprocessableEntity
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithParam adds a parameter name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, message)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(ErrorTypeNotFound, message)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}

// Sentinel errors for unmet local preconditions.
var (
	ErrVehicleRequired   = errors.New("vehicle make and model required")
	ErrNoIssues          = errors.New("no issues selected")
	ErrNoSymptoms        = errors.New("no symptoms selected")
	ErrEmptyQuery        = errors.New("empty description")
	ErrAlreadyAdded      = errors.New("matching issues already added")
	ErrMatchedLocally    = errors.New("description matches known issues")
	ErrInvalidCredential = errors.New(`invalid api key format: gemini keys start with "AIza"`)
	ErrInvalidYear       = errors.New("invalid model year")
	ErrInvalidMileage    = errors.New("negative mileage")
)

// userMessages holds the text shown to users for each precondition sentinel.
var userMessages = map[error]string{
	ErrVehicleRequired:   "Please provide vehicle make and model information.",
	ErrNoIssues:          "Please describe at least one issue you're experiencing.",
	ErrNoSymptoms:        "Please select at least one symptom.",
	ErrEmptyQuery:        "Please describe the problem you're experiencing.",
	ErrAlreadyAdded:      "These issues are already added.",
	ErrMatchedLocally:    "This description matches known issues; add them instead of starting a conversation.",
	ErrInvalidCredential: "Invalid API key format. Gemini API keys start with \"AIza\"",
	ErrInvalidYear:       "Please provide a valid model year.",
	ErrInvalidMileage:    "Mileage cannot be negative.",
}

// UserMessage returns the user-facing text for the precondition sentinel err
// wraps. Other errors yield their own message.
func UserMessage(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}

// ValidationError wraps a precondition sentinel with the offending field.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// ToAPIError converts any error into an APIError. Validation errors become
// precondition failures carrying the sentinel's user message.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return NewAPIError(ErrorTypePrecondition, UserMessage(vErr.Wrapped)).WithParam(vErr.Field)
	}
	return ErrServer(err.Error())
}

// ValidateVehicle checks the fields an analysis cannot run without.
func ValidateVehicle(v VehicleInfo) error {
	if v.Make == "" {
		return NewValidationError("make", v.Make, ErrVehicleRequired)
	}
	if v.Model == "" {
		return NewValidationError("model", v.Model, ErrVehicleRequired)
	}
	return nil
}
