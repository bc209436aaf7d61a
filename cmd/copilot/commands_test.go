package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"copilot/internal/actions"
	"copilot/internal/config"
	"copilot/internal/logging"
	"copilot/internal/reasoning"
	"copilot/internal/store"
	"copilot/internal/types"
)

func testRuntime(t *testing.T) *runtime {
	t.Helper()
	repository, err := store.NewBboltRepository(filepath.Join(t.TempDir(), "copilot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { repository.Close() })
	return &runtime{
		cfg:        config.DefaultConfig(),
		logger:     logging.Nop(),
		repository: repository,
		tracker:    actions.NewTracker(repository.ActionItems(), nil),
	}
}

func factoryFor(rt *runtime) runtimeFactory {
	return func() (*runtime, error) { return rt, nil }
}

func TestBuildCommandsCoversAllSubcommands(t *testing.T) {
	commands := buildCommands(defaultCommandWiring(nil, nil))
	for _, name := range []string{"ui", "send", "actions"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("missing command %q", name)
		}
	}
}

func TestActionsCommandRequiresSubcommand(t *testing.T) {
	cmd := NewActionsCommand(&bytes.Buffer{}, &bytes.Buffer{}, factoryFor(testRuntime(t)))
	if err := cmd.Run(nil); err == nil {
		t.Fatalf("expected error without subcommand")
	}
}

func TestActionsListAndConfirmByPrefix(t *testing.T) {
	rt := testRuntime(t)
	item, err := rt.tracker.Add(context.Background(), types.ProposedAction{
		SequenceKey: "seq-1",
		Type:        types.ActionItemTypeEmail,
		Title:       "Email Maria about renewal",
	}, "msg-1")
	if err != nil {
		t.Fatalf("seed action item: %v", err)
	}

	var stdout bytes.Buffer
	cmd := NewActionsCommand(&stdout, &bytes.Buffer{}, factoryFor(rt))
	if err := cmd.Run([]string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), "Email Maria about renewal") {
		t.Fatalf("list output missing item: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "pending") {
		t.Fatalf("list output missing status: %q", stdout.String())
	}

	stdout.Reset()
	if err := cmd.Run([]string{"confirm", item.ID[:8]}); err != nil {
		t.Fatalf("confirm by prefix: %v", err)
	}
	confirmed, _ := rt.tracker.All(context.Background())
	if len(confirmed) != 1 || confirmed[0].Status != types.ActionItemStatusConfirmed {
		t.Fatalf("item not confirmed: %+v", confirmed)
	}
}

func TestActionsConfirmUnknownID(t *testing.T) {
	cmd := NewActionsCommand(&bytes.Buffer{}, &bytes.Buffer{}, factoryFor(testRuntime(t)))
	if err := cmd.Run([]string{"confirm", "deadbeef"}); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestSendCommandPrintsReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/assistant/send" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(reasoning.SendResponse{
			Content:        "You have 12 open deals.",
			ConversationID: "conv-7",
		})
	}))
	defer server.Close()

	rt := testRuntime(t)
	rt.client = reasoning.NewWithToken(server.URL, "")

	var stdout bytes.Buffer
	cmd := NewSendCommand(&stdout, &bytes.Buffer{}, factoryFor(rt))
	if err := cmd.Run([]string{"show my pipeline"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(stdout.String(), "You have 12 open deals.") {
		t.Fatalf("reply missing: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "conv-7") {
		t.Fatalf("conversation id missing: %q", stdout.String())
	}
}

func TestSendCommandRejectsBadMode(t *testing.T) {
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, factoryFor(testRuntime(t)))
	if err := cmd.Run([]string{"--mode", "turbo", "hello"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSendCommandRequiresMessage(t *testing.T) {
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, factoryFor(testRuntime(t)))
	if err := cmd.Run(nil); err == nil {
		t.Fatalf("expected error without message")
	}
}
