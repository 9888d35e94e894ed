package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass tells how a failure affects a run.
type ErrorClass int

const (
	// ErrorTransient is a failure that may not recur, such as a transport
	// error or an exhausted query budget.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid is bad input: configuration, guide content, codes.
	ErrorInvalid
	// ErrorFatal aborts the run.
	ErrorFatal
)

// String returns the class name used in logs.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	}
	return "unknown"
}

var (
	// ErrNoBinding means the graph answered with no row.
	ErrNoBinding = errors.New("no binding found")
	// ErrQueryFailed means the graph could not be asked.
	ErrQueryFailed = errors.New("graph query failed")
	// ErrRateLimited means the query budget could not be honoured before
	// the caller's deadline.
	ErrRateLimited = errors.New("rate limited")

	ErrUnknownCountry = errors.New("unknown country code")

	// Run aborts
	ErrNoCountries = errors.New("no valid country codes requested")
	ErrNoGuides    = errors.New("no guide files discovered")

	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")

	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError attaches a class and its origin to an error.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// classOf returns the class of the outermost ClassifiedError in err's chain.
func classOf(err error) (ErrorClass, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}
	return 0, false
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err is a query or transport failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorTransient
	}
	return isAny(err, ErrQueryFailed, ErrRateLimited, context.DeadlineExceeded, context.Canceled)
}

// IsFatal reports whether err aborts the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorFatal
	}
	return isAny(err, ErrNoCountries, ErrNoGuides, ErrInvalidConfig, ErrMissingConfig)
}

// IsInvalid reports whether err was caused by bad input.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorInvalid
	}
	return isAny(err, ErrInvalidData, ErrParsingFailed, ErrUnknownCountry)
}

// IsNoBinding reports whether err means the graph had no answer, as opposed
// to the query itself failing.
func IsNoBinding(err error) bool {
	return errors.Is(err, ErrNoBinding)
}

// Wrap adds context in the form "component.method: action failed: %w".
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func wrapAs(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}

// WrapTransient wraps err as a transient failure.
func WrapTransient(err error, component, method, action string) error {
	return wrapAs(ErrorTransient, err, component, method, action)
}

// WrapFatal wraps err as a run abort.
func WrapFatal(err error, component, method, action string) error {
	return wrapAs(ErrorFatal, err, component, method, action)
}

// WrapInvalid wraps err as bad input.
func WrapInvalid(err error, component, method, action string) error {
	return wrapAs(ErrorInvalid, err, component, method, action)
}
