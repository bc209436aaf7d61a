package timeline

import (
	"testing"
	"time"

	"copilot/internal/reasoning"
	"copilot/internal/types"
)

func TestMapExecutionsOneStepPerRecord(t *testing.T) {
	sim := NewSimulator(types.CategoryPipeline, nil)
	call := sim.Snapshot()

	execs := []reasoning.ToolExecution{
		{ToolName: "fetch_pipeline", Capability: "crm", Success: true, LatencyMS: 420},
		{ToolName: "summarize", Capability: "search", Success: true, LatencyMS: 1800},
	}
	mapped := MapExecutions(call, execs)

	if len(mapped.Steps) != len(execs) {
		t.Fatalf("expected %d steps, got %d", len(execs), len(mapped.Steps))
	}
	for i, step := range mapped.Steps {
		if step.State != types.StepStateComplete {
			t.Fatalf("step %d not complete: %#v", i, step)
		}
		if step.Duration == nil {
			t.Fatalf("step %d missing duration", i)
		}
	}
	if mapped.Steps[0].Label != "Fetching your pipeline" {
		t.Fatalf("unexpected label: %q", mapped.Steps[0].Label)
	}
	if *mapped.Steps[0].Duration != 420*time.Millisecond {
		t.Fatalf("unexpected duration: %v", *mapped.Steps[0].Duration)
	}
	if mapped.State != types.ToolCallStateComplete || mapped.EndedAt == nil {
		t.Fatalf("tool call not finalized: %#v", mapped)
	}
}

func TestMapExecutionsGenericKeepsSimulatedSteps(t *testing.T) {
	sim := NewSimulator(types.CategoryGeneric, nil)
	sim.Start(time.Second)
	defer sim.Stop()
	call := sim.Snapshot()

	execs := []reasoning.ToolExecution{
		{ToolName: "internal_router_v2", Success: true, LatencyMS: 10},
		{ToolName: "internal_scorer", Success: true, LatencyMS: 12},
	}
	mapped := MapExecutions(call, execs)

	if len(mapped.Steps) != len(call.Steps) {
		t.Fatalf("generic category should keep simulated steps, got %d", len(mapped.Steps))
	}
	for _, step := range mapped.Steps {
		if step.State != types.StepStateComplete {
			t.Fatalf("simulated step not completed: %#v", step)
		}
		if step.Label == "internal_router_v2" || step.Label == "internal_scorer" {
			t.Fatalf("raw tool name leaked into generic timeline: %q", step.Label)
		}
	}
}

func TestMapExecutionsUnknownToolLabel(t *testing.T) {
	call := types.ToolCall{ID: "tc-1", Category: types.CategoryPipeline}
	mapped := MapExecutions(call, []reasoning.ToolExecution{
		{ToolName: "enrich_account", Provider: "clearbit", Success: true, LatencyMS: 90},
	})
	if mapped.Steps[0].Label != "Running enrich account" {
		t.Fatalf("unexpected fallback label: %q", mapped.Steps[0].Label)
	}
	if mapped.Steps[0].Icon != "clearbit" {
		t.Fatalf("expected provider icon fallback, got %q", mapped.Steps[0].Icon)
	}
}

func TestMarkError(t *testing.T) {
	sim := NewSimulator(types.CategoryEmailDraft, nil)
	sim.Start(time.Second)
	defer sim.Stop()

	marked := MarkError(sim.Snapshot())
	if marked.State != types.ToolCallStateError || marked.EndedAt == nil {
		t.Fatalf("unexpected marked call: %#v", marked)
	}
	if len(marked.Steps) != len(sim.Snapshot().Steps) {
		t.Fatalf("MarkError must not change the step list")
	}
}
