package classify

import (
	"context"
	"errors"
	"net"
	"strings"

	"copilot/internal/reasoning"
)

// Category is the closed set of user-facing failure labels.
type Category string

const (
	CategoryNetwork              Category = "network"
	CategoryTimeout              Category = "timeout"
	CategoryRateLimit            Category = "rate_limit"
	CategoryAuth                 Category = "auth"
	CategoryServerError          Category = "server_error"
	CategorySkillDisabled        Category = "skill_disabled"
	CategoryConfirmationRequired Category = "confirmation_required"
	CategoryInsufficientCredits  Category = "insufficient_credits"
	CategoryUnknown              Category = "unknown"
)

// rule order matters: most specific first, so credits-exhausted wins over a
// generic 402/500 match and confirmation_required wins over auth.
var rules = []struct {
	category Category
	needles  []string
}{
	{CategoryInsufficientCredits, []string{"insufficient credit", "credits exhausted", "credit balance", "quota exceeded", "billing"}},
	{CategoryConfirmationRequired, []string{"confirmation required", "requires confirmation", "needs confirmation", "confirm before"}},
	{CategorySkillDisabled, []string{"skill disabled", "skill is not enabled", "capability disabled", "capability not enabled", "integration disabled"}},
	{CategoryRateLimit, []string{"rate limit", "too many requests", "429"}},
	{CategoryAuth, []string{"unauthorized", "session expired", "invalid token", "authentication", "401", "403"}},
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategoryNetwork, []string{"connection refused", "connection reset", "no such host", "network is unreachable", "broken pipe", "eof"}},
	{CategoryServerError, []string{"internal server error", "bad gateway", "service unavailable", "500", "502", "503"}},
}

var messages = map[Category]string{
	CategoryNetwork:              "I couldn't reach the assistant service. Check your connection and try again.",
	CategoryTimeout:              "That took longer than expected and was stopped. Please try again.",
	CategoryRateLimit:            "You're sending requests a little too quickly. Give it a moment and retry.",
	CategoryAuth:                 "Your session has expired. Please sign in again to continue.",
	CategoryServerError:          "Something went wrong on our side. Please try again shortly.",
	CategorySkillDisabled:        "That capability isn't enabled for your workspace yet.",
	CategoryConfirmationRequired: "This action needs your confirmation before it can run.",
	CategoryInsufficientCredits:  "You've run out of assistant credits for this billing period.",
	CategoryUnknown:              "Something unexpected happened. Please try again.",
}

// Classify maps a raw failure to one category. It never panics and an
// unmatched error resolves to unknown.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}
	if apiErr := reasoning.AsAPIError(err); apiErr != nil {
		if category, ok := classifyStatus(apiErr.StatusCode); ok {
			if byText, ok := classifyText(apiErr.Message); ok {
				return byText
			}
			return category
		}
	}
	if category, ok := classifyText(err.Error()); ok {
		return category
	}
	return CategoryUnknown
}

func classifyStatus(status int) (Category, bool) {
	switch status {
	case 401, 403:
		return CategoryAuth, true
	case 402:
		return CategoryInsufficientCredits, true
	case 408, 504:
		return CategoryTimeout, true
	case 429:
		return CategoryRateLimit, true
	case 500, 502, 503:
		return CategoryServerError, true
	default:
		return CategoryUnknown, false
	}
}

func classifyText(text string) (Category, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, needle := range rule.needles {
			if strings.Contains(lowered, needle) {
				return rule.category, true
			}
		}
	}
	return CategoryUnknown, false
}

// Message returns the fixed, non-technical sentence for a category.
func Message(category Category) string {
	if msg, ok := messages[category]; ok {
		return msg
	}
	return messages[CategoryUnknown]
}

// UserMessage is the common path: classify and describe in one step.
func UserMessage(err error) string {
	return Message(Classify(err))
}
