package timeline

import (
	"strconv"
	"strings"

	"copilot/internal/types"
)

// categoryRule maps request text to a category. Rules are ordered: the first
// match wins, so "email campaign" classifies as campaign, not email_draft.
type categoryRule struct {
	category types.RequestCategory
	keywords []string
}

var categoryRules = []categoryRule{
	{types.CategoryCampaign, []string{"campaign", "outreach sequence", "drip"}},
	{types.CategoryPipeline, []string{"pipeline", "deal", "forecast", "quota", "opportunities"}},
	{types.CategoryEmailDraft, []string{"email", "draft", "follow up", "follow-up", "reply to"}},
	{types.CategoryMeetingSchedule, []string{"meeting", "schedule", "calendar", "book a", "availability"}},
	{types.CategoryEntityResolution, []string{"who is", "find contact", "look up", "lookup", "resolve"}},
}

// ClassifyRequest predicts the request category from raw input text. Every
// request resolves to something so the timeline always shows progress.
func ClassifyRequest(text string) types.RequestCategory {
	lowered := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.category
			}
		}
	}
	return types.CategoryGeneric
}

type stepTemplate struct {
	label string
	icon  string
}

var stepTemplates = map[types.RequestCategory][]stepTemplate{
	types.CategoryPipeline: {
		{"Understanding your request", "brain"},
		{"Fetching pipeline from CRM", "crm"},
		{"Analyzing deal stages", "chart"},
		{"Preparing summary", "doc"},
	},
	types.CategoryEmailDraft: {
		{"Understanding your request", "brain"},
		{"Reviewing contact history", "mail"},
		{"Drafting the email", "pen"},
		{"Polishing tone", "sparkle"},
	},
	types.CategoryEntityResolution: {
		{"Parsing the name", "brain"},
		{"Searching CRM, mail, and calendar", "search"},
		{"Ranking matches", "list"},
	},
	types.CategoryMeetingSchedule: {
		{"Understanding your request", "brain"},
		{"Checking calendars", "calendar"},
		{"Finding open slots", "clock"},
		{"Preparing the invite", "mail"},
	},
	types.CategoryCampaign: {
		{"Understanding your request", "brain"},
		{"Selecting the audience", "people"},
		{"Assembling content", "pen"},
		{"Previewing the campaign", "eye"},
	},
	types.CategoryGeneric: {
		{"Understanding your request", "brain"},
		{"Working on it", "gear"},
	},
}

// StepsFor returns the placeholder step list for a category, all pending.
func StepsFor(category types.RequestCategory) []types.Step {
	templates, ok := stepTemplates[category]
	if !ok {
		templates = stepTemplates[types.CategoryGeneric]
	}
	steps := make([]types.Step, len(templates))
	for i, tpl := range templates {
		steps[i] = types.Step{
			ID:    stepID(category, i),
			Label: tpl.label,
			Icon:  tpl.icon,
			State: types.StepStatePending,
		}
	}
	return steps
}

func stepID(category types.RequestCategory, index int) string {
	return string(category) + "-" + strconv.Itoa(index+1)
}
