package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/cli/repl"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
)

// ExecCommand returns the exec command.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:            "exec",
		Usage:           "Run one command and exit",
		ArgsUsage:       "VERB [ARGS...]",
		SkipFlagParsing: true,
		Action:          execAction,
	}
}

func execAction(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return cli.Exit("Usage: kvsh exec VERB [ARGS...]", 2)
	}
	inv := repl.Invocation{Verb: strings.ToUpper(args[0]), Args: args[1:]}
	if inv.Verb == "QUIT" {
		return nil
	}

	cfg := GetConfig(c)
	mgr, _, err := connectResolved(c, newTerminal(c.App.Reader, c.App.ErrWriter))
	if err != nil {
		return exitError(err)
	}
	store, err := mgr.Store()
	if err != nil {
		return exitError(err)
	}

	ctx := logger.WithSessionID(c.Context, logger.NewSessionID())
	format, _ := output.ParseFormat(cfg.Output)
	dispatcher := repl.NewDispatcher(store, c.App.Writer,
		repl.WithFormatter(output.NewFormatter(format)),
		repl.WithLogger(GetLogger(c).WithContext(ctx)),
	)

	// The dispatcher has already printed the message.
	if err := dispatcher.Run(ctx, inv); err != nil {
		return exitError(errSilent)
	}
	return nil
}
