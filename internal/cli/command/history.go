package command

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/cli/repl"
)

// HistoryCommand returns the history command.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print saved shell history",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Show only the last N entries (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "no-headers",
				Usage: "Omit the header row",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	cfg := GetConfig(c)
	history := repl.NewHistory(cfg.HistoryFile(), cfg.History.Size)
	if err := history.Load(); err != nil {
		return exitError(err)
	}

	entries := history.Entries()
	start := 0
	if limit := c.Int("limit"); limit > 0 && limit < len(entries) {
		start = len(entries) - limit
	}

	table := &output.Table{}
	table.SetHeaders("#", "COMMAND")
	for i := start; i < len(entries); i++ {
		table.AddRow(strconv.Itoa(i+1), entries[i])
	}
	return table.RenderWithOptions(c.App.Writer, c.Bool("no-headers"))
}
