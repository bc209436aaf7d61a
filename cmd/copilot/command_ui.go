package main

import (
	"context"
	"flag"
	"io"

	"copilot/internal/app"
	"copilot/internal/logging"
)

type UICommand struct {
	stderr     io.Writer
	newRuntime runtimeFactory
}

func NewUICommand(stderr io.Writer, newRuntime runtimeFactory) *UICommand {
	return &UICommand{stderr: stderr, newRuntime: newRuntime}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := c.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.controller.RestoreLastMode(context.Background())
	if swept, err := rt.tracker.SweepExpired(context.Background()); err != nil {
		rt.logger.Warn("sweep expired action items", logging.F("error", err))
	} else if swept > 0 {
		rt.logger.Info("expired action items swept", logging.F("count", swept))
	}

	return app.Run(rt.controller, rt.tracker, app.Options{
		Markdown:  rt.cfg.UI.Markdown,
		AltScreen: rt.cfg.UI.AltScreen,
	})
}
