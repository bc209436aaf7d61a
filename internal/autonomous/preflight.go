package autonomous

import "strings"

// Request shapes the pre-flight scan recognizes in raw text. When a shape is
// present but its required parameters are not, dispatch would be a wasted
// round trip; the controller injects a clarification instead.
const (
	ShapeWorkflow = "workflow"
	ShapeCampaign = "campaign"
)

type PreflightResult struct {
	Shape   string
	Missing []string
}

// Clarification is the message injected in place of a dispatch.
func (r *PreflightResult) Clarification() string {
	if r == nil || len(r.Missing) == 0 {
		return ""
	}
	switch r.Shape {
	case ShapeWorkflow:
		return "Before I set up that workflow, tell me: " + strings.Join(r.Missing, " and ") + "."
	case ShapeCampaign:
		return "Before I build that campaign, tell me: " + strings.Join(r.Missing, " and ") + "."
	default:
		return ""
	}
}

var workflowTriggers = []string{"when ", "whenever ", "every ", "if ", "after ", "on new "}
var workflowActions = []string{"send", "create", "update", "notify", "assign", "move", "add", "post"}
var campaignAudience = []string{"targeting", "segment", "list", "leads", "customers", "accounts", "to everyone", "audience"}
var campaignContent = []string{"template", "saying", "about", "with message", "using", "announcing", "promoting"}

// Preflight inspects raw request text for the workflow and campaign shapes.
// It returns nil when dispatch can proceed: either no shape matched, or the
// matched shape has everything it needs.
func Preflight(text string) *PreflightResult {
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "workflow") || strings.Contains(lowered, "automation") || strings.Contains(lowered, "automate") {
		missing := []string{}
		if !containsAny(lowered, workflowTriggers) {
			missing = append(missing, "what should trigger it")
		}
		if !containsAny(lowered, workflowActions) {
			missing = append(missing, "what it should do")
		}
		if len(missing) > 0 {
			return &PreflightResult{Shape: ShapeWorkflow, Missing: missing}
		}
		return nil
	}

	if strings.Contains(lowered, "campaign") {
		missing := []string{}
		if !containsAny(lowered, campaignAudience) {
			missing = append(missing, "who it should go to")
		}
		if !containsAny(lowered, campaignContent) {
			missing = append(missing, "what it should say")
		}
		if len(missing) > 0 {
			return &PreflightResult{Shape: ShapeCampaign, Missing: missing}
		}
	}
	return nil
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
