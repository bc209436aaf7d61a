package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"copilot/internal/reasoning"
)

func TestClassifyTextRules(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"network refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), CategoryNetwork},
		{"timeout text", errors.New("request timed out after 30s"), CategoryTimeout},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"wrapped deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), CategoryTimeout},
		{"rate limit", errors.New("429 Too Many Requests"), CategoryRateLimit},
		{"auth", errors.New("401 unauthorized"), CategoryAuth},
		{"session expired", errors.New("session expired, please re-authenticate"), CategoryAuth},
		{"server", errors.New("internal server error"), CategoryServerError},
		{"skill", errors.New("skill disabled for this workspace"), CategorySkillDisabled},
		{"confirmation", errors.New("confirmation required before sending email"), CategoryConfirmationRequired},
		{"credits", errors.New("insufficient credits remaining"), CategoryInsufficientCredits},
		{"unknown", errors.New("entropy inverted"), CategoryUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestCreditsWinOverServerError(t *testing.T) {
	err := errors.New("500 internal server error: credits exhausted for account")
	if got := Classify(err); got != CategoryInsufficientCredits {
		t.Fatalf("expected insufficient_credits, got %q", got)
	}
}

func TestClassifyAPIErrorStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Category
	}{
		{401, CategoryAuth},
		{402, CategoryInsufficientCredits},
		{429, CategoryRateLimit},
		{500, CategoryServerError},
		{504, CategoryTimeout},
	}
	for _, tc := range cases {
		err := &reasoning.APIError{StatusCode: tc.status, Message: "opaque"}
		if got := Classify(err); got != tc.want {
			t.Fatalf("Classify(status %d) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestAPIErrorTextRefinesStatus(t *testing.T) {
	err := &reasoning.APIError{StatusCode: 500, Message: "quota exceeded for org"}
	if got := Classify(err); got != CategoryInsufficientCredits {
		t.Fatalf("expected message text to refine status, got %q", got)
	}
}

func TestClassifyNeverPanicsAndMessagesComplete(t *testing.T) {
	if got := Classify(nil); got != CategoryUnknown {
		t.Fatalf("Classify(nil) = %q", got)
	}
	for _, category := range []Category{
		CategoryNetwork, CategoryTimeout, CategoryRateLimit, CategoryAuth,
		CategoryServerError, CategorySkillDisabled, CategoryConfirmationRequired,
		CategoryInsufficientCredits, CategoryUnknown,
	} {
		if Message(category) == "" {
			t.Fatalf("missing message for %q", category)
		}
	}
	if Message("made-up") != Message(CategoryUnknown) {
		t.Fatalf("unmapped category should fall back to unknown message")
	}
}
