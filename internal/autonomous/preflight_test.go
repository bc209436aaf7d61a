package autonomous

import (
	"strings"
	"testing"
)

func TestPreflightWorkflowMissingParams(t *testing.T) {
	result := Preflight("Set up a workflow for my deals")
	if result == nil || result.Shape != ShapeWorkflow {
		t.Fatalf("expected workflow shape, got %#v", result)
	}
	if len(result.Missing) != 2 {
		t.Fatalf("expected both trigger and action missing: %v", result.Missing)
	}
	if !strings.Contains(result.Clarification(), "workflow") {
		t.Fatalf("unexpected clarification: %q", result.Clarification())
	}
}

func TestPreflightWorkflowComplete(t *testing.T) {
	if result := Preflight("Create a workflow: when a deal closes, send a thank-you email"); result != nil {
		t.Fatalf("complete workflow should dispatch, got %#v", result)
	}
}

func TestPreflightCampaignMissingAudience(t *testing.T) {
	result := Preflight("Launch a campaign using the renewal template")
	if result == nil || result.Shape != ShapeCampaign {
		t.Fatalf("expected campaign shape, got %#v", result)
	}
	if len(result.Missing) != 1 || !strings.Contains(result.Missing[0], "who") {
		t.Fatalf("expected missing audience: %v", result.Missing)
	}
}

func TestPreflightCampaignComplete(t *testing.T) {
	if result := Preflight("Launch a campaign targeting Q3 leads using the renewal template"); result != nil {
		t.Fatalf("complete campaign should dispatch, got %#v", result)
	}
}

func TestPreflightPlainRequests(t *testing.T) {
	for _, text := range []string{
		"Show me my pipeline",
		"Draft an email to Dana",
		"Who is Alex Chen?",
	} {
		if result := Preflight(text); result != nil {
			t.Fatalf("plain request flagged by preflight: %q -> %#v", text, result)
		}
	}
}
