package main

import (
	"io"
	"os"

	"copilot/internal/actions"
	"copilot/internal/config"
	"copilot/internal/logging"
	"copilot/internal/planner"
	"copilot/internal/reasoning"
	"copilot/internal/session"
	"copilot/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	newRuntime runtimeFactory
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		newRuntime: newRuntime,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":      NewUICommand(wiring.stderr, wiring.newRuntime),
		"send":    NewSendCommand(wiring.stdout, wiring.stderr, wiring.newRuntime),
		"actions": NewActionsCommand(wiring.stdout, wiring.stderr, wiring.newRuntime),
	}
}

type runtimeFactory func() (*runtime, error)

// runtime is the shared wiring every command starts from: configuration,
// logging, the local store, the reasoning client and the assembled services.
type runtime struct {
	cfg        config.Config
	logger     logging.Logger
	repository store.Repository
	client     *reasoning.Client
	tracker    *actions.Tracker
	controller *session.Controller
	closer     func() error
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	storePath, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	repository, err := store.NewBboltRepository(storePath)
	if err != nil {
		return nil, err
	}

	client, err := reasoning.New(cfg.BaseURL())
	if err != nil {
		repository.Close()
		return nil, err
	}

	tracker := actions.NewTracker(repository.ActionItems(), logger,
		actions.WithExpiry(cfg.ActionExpiry()))
	controller := session.New(session.Deps{
		Transport:       client,
		Tracker:         tracker,
		State:           repository.SessionState(),
		Planner:         planner.New(planner.NewClientTransport(client), logger),
		Opener:          client,
		Logger:          logger,
		Timeout:         cfg.RequestTimeout(),
		SimulatorBudget: cfg.SimulatorBudget(),
		HistoryPageSize: cfg.HistoryPageSize(),
	})

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		repository: repository,
		client:     client,
		tracker:    tracker,
		controller: controller,
		closer:     repository.Close,
	}, nil
}

func (r *runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer()
}
