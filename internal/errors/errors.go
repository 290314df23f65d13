package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUnauthorized       = errors.New("session expired")
	ErrFeatureUnavailable = errors.New("feature unavailable without login")
	ErrNoSource           = errors.New("no source loaded")
	ErrQueueEmpty         = errors.New("queue is empty")
	ErrTrackNotFound      = errors.New("track not found")
	ErrNetworkError       = errors.New("network error")
	ErrTimeout            = errors.New("request timeout")
	ErrPlaybackFailed     = errors.New("playback failed")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// MewzyError wraps an error with a user-friendly suggestion.
type MewzyError struct {
	Err        error
	Suggestion string
}

func (e *MewzyError) Error() string {
	return e.Err.Error()
}

func (e *MewzyError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &MewzyError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var mErr *MewzyError
	if errors.As(err, &mErr) && mErr.Suggestion != "" {
		return mErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Authentication errors
	if errors.Is(err, ErrUnauthorized) || strings.Contains(errStr, "session expired") {
		return "Session expired. Run 'mewzy auth login' to log in again"
	}
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrFeatureUnavailable) ||
		strings.Contains(errStr, "not authenticated") {
		return "Run 'mewzy auth login' to store an access token"
	}

	// Playback errors
	if errors.Is(err, ErrNoSource) || errors.Is(err, ErrQueueEmpty) {
		return "Start something with 'mewzy play <track-id>'"
	}
	if errors.Is(err, ErrPlaybackFailed) {
		return "The stream could not be decoded. Check the stream URL with 'mewzy status --json'"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check that the server at api.base_url is reachable and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'mewzy config init' to write a default configuration"
	}

	// Server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The server is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins all collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
