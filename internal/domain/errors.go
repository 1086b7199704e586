package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote operations
var (
	// ErrUnauthorized indicates the API credentials were rejected
	ErrUnauthorized = errors.New("movie API rejected the credentials")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrServerUnavailable indicates the movie API is unreachable or failing
	ErrServerUnavailable = errors.New("movie API is unreachable")

	// ErrRateLimited indicates the API asked us to slow down
	ErrRateLimited = errors.New("movie API rate limit exceeded")

	// ErrInvalidTimeWindow indicates a trending window that is neither day nor week
	ErrInvalidTimeWindow = errors.New("trending time window must be day or week")
)

// FetchError is a failed category fetch. Message is what the user sees.
type FetchError struct {
	Category Category
	Message  string
	Err      error
}

// NewFetchError wraps err for category c, taking the message from err
func NewFetchError(c Category, err error) *FetchError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &FetchError{Category: c, Message: msg, Err: err}
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "failed to fetch " + e.Category.Title()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigurationError is a local precondition failure detected before any network call
type ConfigurationError struct {
	Category Category
	Field    string
	Value    string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q: %v", e.Category.Title(), e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
