package app

import (
	"fmt"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"copilot/internal/types"
)

// renderTranscript builds the viewport content for the active conversation.
// The spinner frame is threaded in so an active simulated step animates.
func renderTranscript(messages []types.ConversationMessage, width int, spinnerFrame string) string {
	if len(messages) == 0 {
		return dimStyle.Render("No messages yet. Ask about your pipeline, draft an email, or schedule a meeting.")
	}
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderMessage(msg, width, spinnerFrame))
	}
	return b.String()
}

func renderMessage(msg types.ConversationMessage, width int, spinnerFrame string) string {
	var b strings.Builder
	switch msg.Role {
	case types.RoleUser:
		b.WriteString(userLabelStyle.Render("You"))
		b.WriteString("\n")
		b.WriteString(runewidth.Wrap(msg.Content, width))
	default:
		b.WriteString(assistantLabelStyle.Render("Copilot"))
		if msg.ToolCall != nil {
			b.WriteString("\n")
			b.WriteString(renderToolCall(*msg.ToolCall, width, spinnerFrame))
		}
		if content := strings.TrimSpace(msg.Content); content != "" {
			b.WriteString("\n")
			if msg.IsError {
				b.WriteString(errorStyle.Render(runewidth.Wrap(content, width)))
			} else {
				b.WriteString(renderMarkdown(content, width))
			}
		}
		if msg.Disambiguation != nil {
			b.WriteString("\n")
			b.WriteString(renderDisambiguation(*msg.Disambiguation, width))
		}
	}
	return b.String()
}

func renderToolCall(call types.ToolCall, width int, spinnerFrame string) string {
	lines := make([]string, 0, len(call.Steps))
	for _, step := range call.Steps {
		lines = append(lines, renderStep(step, width, spinnerFrame))
	}
	return strings.Join(lines, "\n")
}

func renderStep(step types.Step, width int, spinnerFrame string) string {
	label := step.Label
	if step.Duration != nil {
		label = fmt.Sprintf("%s (%dms)", label, step.Duration.Milliseconds())
	}
	label = runewidth.Truncate(label, maxInt(width-4, 10), "…")
	switch step.State {
	case types.StepStateComplete:
		return stepCompleteStyle.Render("  ✓ " + label)
	case types.StepStateActive:
		glyph := spinnerFrame
		if glyph == "" {
			glyph = "●"
		}
		return stepActiveStyle.Render("  " + glyph + " " + label)
	default:
		return stepPendingStyle.Render("  ○ " + label)
	}
}

func renderDisambiguation(block types.EntityDisambiguation, width int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Which one did you mean?"))
	for i, candidate := range block.Candidates {
		if i >= 9 {
			break
		}
		line := fmt.Sprintf("  [%d] %s", i+1, candidateLine(candidate))
		b.WriteString("\n")
		b.WriteString(candidateStyle.Render(runewidth.Truncate(line, width, "…")))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  press 1-9 to choose"))
	return b.String()
}

func candidateLine(candidate types.EntityCandidate) string {
	parts := []string{candidate.Name}
	if candidate.Company != "" {
		parts = append(parts, candidate.Company)
	}
	if candidate.Email != "" {
		parts = append(parts, candidate.Email)
	}
	if candidate.Role != "" {
		parts = append(parts, candidate.Role)
	}
	return strings.Join(parts, " · ")
}

// renderActionPanel lists tracked action items with their confirm hotkeys.
func renderActionPanel(items []*types.ActionItem, width int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Action items"))
	if len(items) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  nothing pending"))
		return b.String()
	}
	for i, item := range items {
		line := fmt.Sprintf("  [%d] %s · %s", i+1, item.Title, item.Status)
		line = runewidth.Truncate(line, width, "…")
		b.WriteString("\n")
		switch item.Status {
		case types.ActionItemStatusConfirmed:
			b.WriteString(confirmedItemStyle.Render(line))
		case types.ActionItemStatusExpired:
			b.WriteString(expiredItemStyle.Render(line))
		default:
			b.WriteString(pendingItemStyle.Render(line))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  press the number to approve a pending item, esc to close"))
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
