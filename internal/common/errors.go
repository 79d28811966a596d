// Package common holds the error vocabulary, retry helpers and logger setup
// shared by the importers, the suggestion lifecycle and the CLI.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Sentinels are wrapped with context by storage and services; callers
// match them with errors.Is.
var (
	// ErrNotFound means a subscription or transaction is missing for this user.
	ErrNotFound = errors.New("not found")

	// A suggestion id the user typed is unknown, or its TTL elapsed.
	ErrSuggestionNotFound = errors.New("suggestion not found or expired")
	// Confirming a suggestion whose transactions another subscription already owns.
	ErrAlreadyLinked = errors.New("transaction already linked to a subscription")

	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = errors.New("plaid rate limit exceeded")

	// Raised while loading config.yaml, .env or the Sheets credentials.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs a one-line message for the terminal with the underlying
// cause. The CLI prints UserMessage and logs the full chain at debug level.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err so that errors.Is still sees the sentinel behind it,
// e.g. "no suggestion with that id" over ErrSuggestionNotFound.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// UserMessage returns the message meant for the user, if err carries one.
func UserMessage(err error) (string, bool) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage, true
	}
	return "", false
}

// IsRetryable reports whether a Plaid or Sheets call is worth repeating.
// Cancellation by the user never is.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrRateLimit),
		errors.Is(err, ErrPlaidRateLimit),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable
	}
	return false
}
