// Package repl provides the interactive shell loop for kvsh.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/kvsh/internal/cli/lineedit"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
)

// Prompt returns the prompt shown for an endpoint label.
func Prompt(label string) string {
	return "[" + label + "]> "
}

// Config holds the collaborators of a REPL session.
type Config struct {
	Terminal   lineedit.Terminal
	Output     io.Writer
	Dispatcher *Dispatcher
	History    *History
	Label      string
	Logger     logger.Logger
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	editor     *lineedit.Editor
	dispatcher *Dispatcher
	history    *History
	output     io.Writer
	log        logger.Logger
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	var recall lineedit.Recall
	if cfg.History != nil {
		recall = cfg.History
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &REPL{
		editor:     lineedit.New(cfg.Terminal, Prompt(cfg.Label), recall),
		dispatcher: cfg.Dispatcher,
		history:    cfg.History,
		output:     cfg.Output,
		log:        log,
	}
}

// Run starts the REPL loop. It returns nil when the session ends through
// quit, end of input, Ctrl+C or cancellation of ctx; history is saved
// in every case.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.output, "Enter commands (type 'quit' to exit):")

	var runErr error
	for {
		line, err := r.editor.ReadLine(ctx)
		if err != nil {
			if !isSessionEnd(err) {
				runErr = err
			}
			break
		}
		if r.dispatcher.Dispatch(ctx, line) {
			break
		}
	}

	r.saveHistory()
	fmt.Fprintln(r.output, "Exiting kvsh.")
	return runErr
}

func (r *REPL) saveHistory() {
	if r.history == nil {
		return
	}
	if err := r.history.Save(); err != nil {
		r.log.Warn("failed to save history", "file", r.history.File(), "error", err)
	}
}

func isSessionEnd(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, lineedit.ErrInterrupted) ||
		errors.Is(err, context.Canceled)
}
