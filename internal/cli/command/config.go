package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/kvsh/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: configValidate,
			},
			{
				Name:      "init",
				Usage:     "Write a default config file",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPathAction,
			},
		},
	}
}

// configShow prints the merged configuration with secrets masked.
func configShow(c *cli.Context) error {
	data, err := yaml.Marshal(GetConfig(c).Redacted())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = c.App.Writer.Write(data)
	return err
}

// configValidate reports success; Load has already rejected invalid
// values in the Before hook.
func configValidate(c *cli.Context) error {
	path, _ := c.App.Metadata[metaConfigPath].(string)
	if path == "" {
		fmt.Fprintln(c.App.Writer, "No configuration file found. Using defaults.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Configuration is valid: %s\n", path)
	return nil
}

// configInit writes the defaults to path, or the default location.
func configInit(c *cli.Context) error {
	path := config.DefaultConfigPath()
	if c.Args().Present() {
		path = config.ExpandHome(c.Args().First())
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", path), 1)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func configPathAction(c *cli.Context) error {
	path, _ := c.App.Metadata[metaConfigPath].(string)
	if path == "" {
		path = config.DefaultConfigPath() + " (not present)"
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}
