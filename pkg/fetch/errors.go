package fetch

import (
	"fmt"
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassDecode represents malformed or unexpected JSON bodies.
	ErrorClassDecode ErrorClass = "decode"
)

// FetchError represents a failed page fetch with additional context.
// A FetchError is terminal for its page: the client never retries.
type FetchError struct {
	URL        string
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s error (status %d) for %s: %s: %v",
			e.Class, e.StatusCode, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch %s error (status %d) for %s: %s",
		e.Class, e.StatusCode, e.URL, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code for observability and handling.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
