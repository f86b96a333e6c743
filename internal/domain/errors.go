package domain

import (
	"errors"
	"strings"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a venue transport error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "submit", "cancel", "ticker")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CenterValidationError is returned when a requested center price falls
// outside the current bid-ask spread. It carries the observed range so
// callers can report a usable bound.
type CenterValidationError struct {
	Center string
	Bid    string
	Ask    string
}

func (e *CenterValidationError) Error() string {
	return "center price " + e.Center + " outside spread: valid range " +
		e.Bid + " < center < " + e.Ask
}

func (e *CenterValidationError) IsRetriable() bool {
	return false
}

var (
	// ErrWouldMatch is returned when the venue rejects a post-only order
	// that would have crossed the book. Expected during normal operation.
	ErrWouldMatch = errors.New("post-only order would have matched")

	// ErrDuplicateIdentity is returned by the ledger when inserting an
	// identity that is already tracked.
	ErrDuplicateIdentity = errors.New("identity already tracked")

	// ErrNoOrdersPlaced is returned when an entire ladder placement
	// produced zero resting orders.
	ErrNoOrdersPlaced = errors.New("no orders were placed")

	// ErrNotRunning is returned for operations that require an active
	// controller.
	ErrNotRunning = errors.New("controller is not running")
)

// IsPostOnlyReject reports whether err is the venue's post-only
// rejection, either as the sentinel or by message text from the wire.
func IsPostOnlyReject(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldMatch) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "would have matched")
}
