package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"explicit", WithSuggestion(errors.New("boom"), "do the thing"), "do the thing"},
		{"unauthorized", fmt.Errorf("history: %w", ErrUnauthorized), "Session expired. Run 'mewzy auth login' to log in again"},
		{"guest", ErrFeatureUnavailable, "Run 'mewzy auth login' to store an access token"},
		{"queue", ErrQueueEmpty, "Start something with 'mewzy play <track-id>'"},
		{"timeout", fmt.Errorf("radio: %w", ErrTimeout), "Check that the server at api.base_url is reachable and try again"},
		{"config", ErrInvalidConfig, "Run 'mewzy config init' to write a default configuration"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSuggestion(tt.err); got != tt.want {
				t.Errorf("GetSuggestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
	got := Format(ErrQueueEmpty)
	if !strings.HasPrefix(got, "Error: queue is empty") || !strings.Contains(got, "Suggestion:") {
		t.Errorf("Format() = %q", got)
	}
	if got := Format(errors.New("plain")); got != "Error: plain" {
		t.Errorf("Format() = %q", got)
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[int]
	p.AddError(nil)
	if p.HasErrors() || p.Err() != nil || p.ErrorSummary() != "" {
		t.Fatal("expected no errors")
	}
	p.AddError(errors.New("a"))
	if p.ErrorSummary() != "a" {
		t.Errorf("ErrorSummary() = %q", p.ErrorSummary())
	}
	p.AddError(errors.New("b"))
	if !strings.HasPrefix(p.ErrorSummary(), "2 errors occurred") {
		t.Errorf("ErrorSummary() = %q", p.ErrorSummary())
	}
	if p.Err() == nil {
		t.Error("Err() should be non-nil")
	}
}
