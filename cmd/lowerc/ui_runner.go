package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lowerc/internal/driver"
	"lowerc/internal/ui"
)

var errInterrupted = errors.New("interrupted")

// wantProgressView decides whether a command shows the live view for --ui.
// The view draws on stdout, so it never runs under --format=json where
// stdout carries the report, and auto mode also stays off under --quiet or
// when stdout is not a terminal.
func wantProgressView(value, format string, quiet, tty bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return tty && !quiet && format != "json", nil
	case "on":
		if format == "json" {
			return false, fmt.Errorf("--ui=on cannot be combined with --format=json")
		}
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI runs the driver in the background while a progress view
// follows its events on stdout. Leaving the view early cancels the run.
func runWithUI(ctx context.Context, title string, unit driver.Unit, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Progress = ui.ChannelSink{Ch: events, Done: ctx.Done()}
		res, err := driver.Run(ctx, unit, opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout))
	final, uiErr := program.Run()
	// the view is gone: stop the driver and stop waiting for its events
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	if !ui.Completed(final) && errors.Is(outcome.err, context.Canceled) {
		return outcome.result, errInterrupted
	}
	return outcome.result, outcome.err
}
