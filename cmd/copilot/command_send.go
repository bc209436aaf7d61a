package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
	"copilot/internal/types"
)

type SendCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newRuntime runtimeFactory
}

func NewSendCommand(stdout, stderr io.Writer, newRuntime runtimeFactory) *SendCommand {
	return &SendCommand{stdout: stdout, stderr: stderr, newRuntime: newRuntime}
}

// Run sends a single classic-style turn and prints the reply, for scripting
// and quick checks without the UI.
func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	mode := fs.String("mode", string(types.ModeClassic), "execution mode")
	conversation := fs.String("conversation", "", "conversation id to continue")
	if err := fs.Parse(args); err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return errors.New("send requires a message")
	}

	rt, err := c.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	req := reasoning.SendRequest{
		Message:        message,
		ConversationID: strings.TrimSpace(*conversation),
	}
	if normalized, ok := types.NormalizeMode(*mode); ok {
		req.Mode = normalized
	} else {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	resp, err := rt.client.Send(context.Background(), req, rt.cfg.RequestTimeout())
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, strings.TrimSpace(resp.Content))
	for _, recommendation := range resp.Recommendations {
		fmt.Fprintf(c.stdout, "  - %s\n", recommendation)
	}
	if resp.ConversationID != "" {
		fmt.Fprintf(c.stdout, "conversation: %s\n", resp.ConversationID)
	}

	if err := rt.tracker.Reconcile(context.Background(), resp); err != nil {
		rt.logger.Warn("reconcile action items", logging.F("error", err))
	}
	return nil
}
