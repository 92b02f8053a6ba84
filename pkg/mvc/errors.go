package mvc

import (
	"errors"
	"fmt"
	"strings"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
)

var (
	// ErrStopAction is what ActionOutcome.Err reports for outcomes that end
	// the current action early. It never leaves the dispatcher.
	ErrStopAction = errors.New("action stopped")

	// ErrNoActiveRequest is returned by Forward, Redirect and ThrowStatus
	// when the controller is not processing a request.
	ErrNoActiveRequest = axonerrors.New(axonerrors.NoActiveRequestErrorCode, "controller has no active request")

	// ErrArgumentRequired is attached to required arguments that received no value
	ErrArgumentRequired = errors.New("argument is required")
)

// Numeric references of the request type errors, stable across releases
const (
	RefUnsupportedProcessRequest int64 = 1187701131
	RefUnsupportedRedirect       int64 = 1220539734
	RefUnsupportedThrowStatus    int64 = 1220539739
)

// UnsupportedRequestTypeError is returned when a controller is handed a
// request variant it does not support.
type UnsupportedRequestTypeError struct {
	*axonerrors.BaseError
	Controller  string
	RequestType RequestType
	Supported   []RequestType
}

func newUnsupportedRequestTypeError(ref int64, message, controller string, requestType RequestType, supported []RequestType) *UnsupportedRequestTypeError {
	return &UnsupportedRequestTypeError{
		BaseError: axonerrors.New(axonerrors.UnsupportedRequestTypeErrorCode, message).
			WithReference(ref).
			WithContext("controller", controller).
			WithContext("request_type", string(requestType)),
		Controller:  controller,
		RequestType: requestType,
		Supported:   append([]RequestType(nil), supported...),
	}
}

// NoSuchControllerError is returned when no controller is registered for
// the requested package and name.
type NoSuchControllerError struct {
	*axonerrors.BaseError
	PackageKey string
	Controller string
}

func NewNoSuchControllerError(packageKey, controller string) *NoSuchControllerError {
	return &NoSuchControllerError{
		BaseError: axonerrors.Newf(axonerrors.NoSuchControllerErrorCode,
			"no controller %q registered in package %q", controller, packageKey),
		PackageKey: packageKey,
		Controller: controller,
	}
}

// NoSuchActionError is returned when a controller has no action of the requested name
type NoSuchActionError struct {
	*axonerrors.BaseError
	Controller string
	Action     string
}

func NewNoSuchActionError(controller, action string) *NoSuchActionError {
	return &NoSuchActionError{
		BaseError: axonerrors.Newf(axonerrors.NoSuchActionErrorCode,
			"controller %q has no action %q", controller, action),
		Controller: controller,
		Action:     action,
	}
}

// InfiniteLoopError is returned when a request is still not dispatched
// after the maximum number of dispatch passes.
type InfiniteLoopError struct {
	*axonerrors.BaseError
	Iterations int
}

func NewInfiniteLoopError(iterations int) *InfiniteLoopError {
	return &InfiniteLoopError{
		BaseError: axonerrors.Newf(axonerrors.InfiniteLoopErrorCode,
			"could not ultimately dispatch the request after %d iterations", iterations),
		Iterations: iterations,
	}
}

// InvalidArgumentNameError is returned when an argument cannot be declared
// under the given name or short name.
type InvalidArgumentNameError struct {
	*axonerrors.BaseError
	Name string
}

func NewInvalidArgumentNameError(name, reason string) *InvalidArgumentNameError {
	return &InvalidArgumentNameError{
		BaseError: axonerrors.Newf(axonerrors.InvalidArgumentNameErrorCode,
			"invalid argument name %q: %s", name, reason),
		Name: name,
	}
}

// ArgumentConversionError is returned when a raw value cannot be converted
// to the data type of an argument.
type ArgumentConversionError struct {
	*axonerrors.BaseError
	Argument string
	DataType string
}

func newArgumentConversionError(argument, dataType string, cause error) *ArgumentConversionError {
	return &ArgumentConversionError{
		BaseError: axonerrors.Wrapf(axonerrors.ArgumentConversionErrorCode, cause,
			"cannot convert value of argument %q to %s", argument, dataType),
		Argument: argument,
		DataType: dataType,
	}
}

// ArgumentValidationError is returned when an argument value breaks its validation rule
type ArgumentValidationError struct {
	Argument string
	Rule     string
	Param    string
}

func (e *ArgumentValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("argument %q failed the %s=%s rule", e.Argument, e.Rule, e.Param)
	}
	return fmt.Sprintf("argument %q failed the %s rule", e.Argument, e.Rule)
}

// InvalidArgumentsError lists the arguments that failed mapping
type InvalidArgumentsError struct {
	*axonerrors.BaseError
	Arguments map[string][]error
}

// Messages returns the error texts of every invalid argument
func (e *InvalidArgumentsError) Messages() map[string][]string {
	messages := make(map[string][]string, len(e.Arguments))
	for name, errs := range e.Arguments {
		for _, err := range errs {
			messages[name] = append(messages[name], err.Error())
		}
	}
	return messages
}

func newInvalidArgumentsError(args *Arguments) *InvalidArgumentsError {
	invalid := make(map[string][]error)
	var lines []string
	for _, arg := range args.All() {
		if arg.IsValid() {
			continue
		}
		invalid[arg.Name()] = arg.Errors()
		for _, err := range arg.Errors() {
			lines = append(lines, fmt.Sprintf("%s: %v", arg.Name(), err))
		}
	}
	return &InvalidArgumentsError{
		BaseError: axonerrors.New(axonerrors.MappingErrorCode, "invalid arguments: "+strings.Join(lines, "; ")),
		Arguments: invalid,
	}
}
