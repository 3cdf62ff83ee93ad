package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Print build information",
		Action: versionAction,
	}
}

func versionAction(c *cli.Context) error {
	info := buildinfo.Get()

	format, _ := output.ParseFormat(GetConfig(c).Output)
	if format == output.FormatText {
		_, err := fmt.Fprintln(c.App.Writer, info.String())
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, info)
}
