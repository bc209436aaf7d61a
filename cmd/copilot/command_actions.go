package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"copilot/internal/config"
	"copilot/internal/store"
	"copilot/internal/types"
)

type ActionsCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newRuntime runtimeFactory
}

func NewActionsCommand(stdout, stderr io.Writer, newRuntime runtimeFactory) *ActionsCommand {
	return &ActionsCommand{stdout: stdout, stderr: stderr, newRuntime: newRuntime}
}

func (c *ActionsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("actions", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("actions requires a subcommand: list, confirm, sweep or export")
	}

	rt, err := c.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	switch fs.Arg(0) {
	case "list":
		return c.list(ctx, rt)
	case "confirm":
		if fs.NArg() < 2 {
			return errors.New("actions confirm requires an item id")
		}
		return c.confirm(ctx, rt, fs.Arg(1))
	case "sweep":
		return c.sweep(ctx, rt)
	case "export":
		return c.export(ctx, rt)
	default:
		return fmt.Errorf("unknown actions subcommand: %s", fs.Arg(0))
	}
}

func (c *ActionsCommand) list(ctx context.Context, rt *runtime) error {
	items, err := rt.tracker.All(ctx)
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(c.stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTATUS\tTYPE\tTITLE\tEXPIRES")
	for _, item := range items {
		expires := "-"
		if !item.ExpiresAt.IsZero() {
			expires = item.ExpiresAt.Local().Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			shortID(item.ID), item.Status, item.Type, item.Title, expires)
	}
	return writer.Flush()
}

func (c *ActionsCommand) confirm(ctx context.Context, rt *runtime, id string) error {
	item, err := c.resolveItem(ctx, rt, id)
	if err != nil {
		return err
	}
	confirmed, err := rt.tracker.Confirm(ctx, item.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "confirmed: %s (%s)\n", confirmed.Title, shortID(confirmed.ID))
	return nil
}

func (c *ActionsCommand) sweep(ctx context.Context, rt *runtime) error {
	swept, err := rt.tracker.SweepExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%d expired\n", swept)
	return nil
}

func (c *ActionsCommand) export(ctx context.Context, rt *runtime) error {
	items, err := rt.tracker.All(ctx)
	if err != nil {
		return err
	}
	dir, err := config.ExportsDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "actions-"+time.Now().Format("20060102-150405")+".json")
	if err := store.WriteJSONAtomic(path, items); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "exported %d items to %s\n", len(items), path)
	return nil
}

// resolveItem accepts either a full id or the short prefix the list view
// prints, and errors when a prefix is ambiguous.
func (c *ActionsCommand) resolveItem(ctx context.Context, rt *runtime, id string) (*types.ActionItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("item id is required")
	}
	items, err := rt.tracker.All(ctx)
	if err != nil {
		return nil, err
	}
	var match *types.ActionItem
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
		if strings.HasPrefix(item.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous item id prefix: %s", id)
			}
			match = item
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no action item matches %q", id)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
