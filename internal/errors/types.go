package errors

import (
	"fmt"
	"strings"
)

// AxonError defines the base interface for all framework errors
type AxonError interface {
	error
	ErrorCode() ErrorCode
	Reference() int64
	Location() SourceLocation
	Context() map[string]interface{}
	Unwrap() error
}

// ErrorCode represents the category of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Request handling
	UnsupportedRequestTypeErrorCode
	NoActiveRequestErrorCode
	NoSuchControllerErrorCode
	NoSuchActionErrorCode
	InfiniteLoopErrorCode

	// Arguments and mapping
	InvalidArgumentNameErrorCode
	ArgumentConversionErrorCode
	MappingErrorCode

	// I18n
	InvalidLocaleIdentifierErrorCode

	// Routing and runtime
	RoutingErrorCode
	RegistrationErrorCode
	ConfigurationErrorCode
	FileSystemErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case UnsupportedRequestTypeErrorCode:
		return "UnsupportedRequestType"
	case NoActiveRequestErrorCode:
		return "NoActiveRequest"
	case NoSuchControllerErrorCode:
		return "NoSuchController"
	case NoSuchActionErrorCode:
		return "NoSuchAction"
	case InfiniteLoopErrorCode:
		return "InfiniteLoop"
	case InvalidArgumentNameErrorCode:
		return "InvalidArgumentName"
	case ArgumentConversionErrorCode:
		return "ArgumentConversion"
	case MappingErrorCode:
		return "MappingError"
	case InvalidLocaleIdentifierErrorCode:
		return "InvalidLocaleIdentifier"
	case RoutingErrorCode:
		return "RoutingError"
	case RegistrationErrorCode:
		return "RegistrationError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error occurred in a source file
type SourceLocation struct {
	File   string // file path where error occurred
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the AxonError interface
type BaseError struct {
	Code        ErrorCode              // category of error
	Ref         int64                  // stable numeric reference, 0 when unset
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), msg)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	if e == nil {
		return UnknownErrorCode
	}
	return e.Code
}

// Reference returns the numeric reference of the error
func (e *BaseError) Reference() int64 {
	if e == nil {
		return 0
	}
	return e.Ref
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	if e == nil {
		return SourceLocation{}
	}
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e == nil || e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithReference sets the numeric reference
func (e *BaseError) WithReference(ref int64) *BaseError {
	e.Ref = ref
	return e
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []AxonError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns all collected errors so errors.Is and errors.As walk each of them
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err AxonError) {
	e.Errors = append(e.Errors, err)
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Count returns the number of errors
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// HasCode returns true if any error of the specified type exists
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns nil for an empty collection so callers can return it directly
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]AxonError, 0),
	}
}

// CodeOf returns the error code of the first AxonError in err's chain
func CodeOf(err error) ErrorCode {
	for err != nil {
		if axonErr, ok := err.(AxonError); ok {
			return axonErr.ErrorCode()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return UnknownErrorCode
		}
		err = u.Unwrap()
	}
	return UnknownErrorCode
}
