package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Check a server and remember it as the default",
		ArgsUsage: "[SERVER]",
		Action:    connectAction,
	}
}

func connectAction(c *cli.Context) error {
	if server := c.Args().First(); server != "" {
		GetConfig(c).Server = server
	}

	mgr, ep, err := connectResolved(c, newTerminal(c.App.Reader, c.App.Writer))
	if err != nil {
		return exitError(err)
	}

	reply, err := mgr.Current().Do(c.Context, "PING")
	if err != nil {
		return exitError(fmt.Errorf("ping %s: %w", ep.Label(), err))
	}

	fmt.Fprintf(c.App.Writer, "Connected to %s\n", ep.Label())
	fmt.Fprintln(c.App.Writer, reply.Text())
	return nil
}
