package main

import (
	"fmt"
	"io"
	"os"
)

const usageText = `copilot is a terminal assistant for sales work.

Usage:
  copilot <command> [flags]

Commands:
  ui        run the terminal UI (default)
  send      send one message and print the reply
  actions   manage tracked action items
  help      show help

Flags:
  -h, --help   show help

Send flags:
  --mode           classic, planning or autonomous (default classic)
  --conversation   continue an existing conversation

Actions subcommands:
  actions list
  actions confirm <id>
  actions sweep
  actions export

Examples:
  copilot
  copilot send "show my pipeline"
  copilot actions list
  copilot actions confirm 4f7c21aa
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	if len(args) == 0 {
		exitOnErr("ui", commands["ui"].Run(nil), wiring.stderr)
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}

func exitOnErr(command string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s: %v\n", command, err)
	os.Exit(1)
}
