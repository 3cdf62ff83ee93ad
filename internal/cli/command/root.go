package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/cli/config"
	"github.com/yndnr/kvsh/internal/cli/connection"
	"github.com/yndnr/kvsh/internal/infra/buildinfo"
	"github.com/yndnr/kvsh/internal/infra/tlsroots"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
)

// Metadata keys set by the Before hook.
const (
	metaConfig     = "config"
	metaConfigPath = "configPath"
	metaLogger     = "logger"
	metaConnMgr    = "connMgr"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "kvsh",
		Usage:   "interactive key-value shell",
		Version: buildinfo.Get().Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			ConnectCommand(),
			ConfigCommand(),
			HistoryCommand(),
			VersionCommand(),
		},
		Before: before,
		After:  after,
		Action: shellAction,
	}
}

// flagKeys maps global flags to config keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"server", "server"},
	{"username", "username"},
	{"password", "password"},
	{"db", "db"},
	{"tls", "tls"},
	{"tls-ca", "certs.ca"},
	{"tls-cert", "certs.cert"},
	{"tls-key", "certs.key"},
	{"history-file", "history.file"},
	{"output", "output"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
	{"log-file", "log.file"},
	{"metrics-addr", "metrics.address"},
}

// globalFlags returns the global CLI flags. Environment variables are
// read by the config loader, not by the flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.kvsh/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address: host[:port], redis://, rediss:// or unix://",
		},
		&cli.StringFlag{
			Name:  "username",
			Usage: "Username for AUTH",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "Password for AUTH",
		},
		&cli.IntFlag{
			Name:  "db",
			Usage: "Database number to SELECT",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "Connect over TLS",
		},
		&cli.StringFlag{
			Name:  "tls-ca",
			Usage: "CA certificate file or directory",
		},
		&cli.StringFlag{
			Name:  "tls-cert",
			Usage: "Client certificate file",
		},
		&cli.StringFlag{
			Name:  "tls-key",
			Usage: "Client key file",
		},
		&cli.StringFlag{
			Name:  "history-file",
			Usage: "History file (default ~/.kvsh/history)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: console, json",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file (default stderr)",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve Prometheus metrics on this address (e.g., 127.0.0.1:9121)",
		},
	}
}

// flagOverrides collects the flags set on the command line, keyed by
// config key.
func flagOverrides(c *cli.Context) map[string]any {
	values := make(map[string]any)
	for _, fk := range flagKeys {
		if c.IsSet(fk.flag) {
			values[fk.key] = c.Value(fk.flag)
		}
	}
	return values
}

// configPath returns the file Load reads, or "" if there is none.
func configPath(explicit string) string {
	if explicit != "" {
		return config.ExpandHome(explicit)
	}
	path := config.DefaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func before(c *cli.Context) error {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:  c.String("config"),
		Flags: flagOverrides(c),
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   config.ExpandHome(cfg.Log.File),
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	logger.SetDefault(log)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaConfigPath] = configPath(c.String("config"))
	c.App.Metadata[metaLogger] = log
	return nil
}

func after(c *cli.Context) error {
	if mgr, ok := c.App.Metadata[metaConnMgr].(*connection.Manager); ok {
		_ = mgr.Disconnect()
	}
	if log, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		_ = log.Sync()
	}
	return nil
}

// GetConfig retrieves the loaded configuration from context.
func GetConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// GetLogger retrieves the session logger from context.
func GetLogger(c *cli.Context) logger.Logger {
	if log, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		return log
	}
	return logger.Default()
}

// GetConnectionManager returns the connection manager, creating it on
// first use so TLS material is only read by commands that connect.
func GetConnectionManager(c *cli.Context) (*connection.Manager, error) {
	if mgr, ok := c.App.Metadata[metaConnMgr].(*connection.Manager); ok {
		return mgr, nil
	}

	opts, err := connectionOptions(GetConfig(c), GetLogger(c))
	if err != nil {
		return nil, err
	}
	mgr := connection.NewManager(opts)
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaConnMgr] = mgr
	return mgr, nil
}

func connectionOptions(cfg *config.CLIConfig, log logger.Logger) (connection.Options, error) {
	tlsConfig, err := tlsroots.ClientConfig(tlsroots.ClientOptions{
		CAFile:             config.ExpandHome(cfg.Certs.CA),
		CertFile:           config.ExpandHome(cfg.Certs.Cert),
		KeyFile:            config.ExpandHome(cfg.Certs.Key),
		InsecureSkipVerify: cfg.Certs.Insecure,
	})
	if err != nil {
		return connection.Options{}, err
	}
	return connection.Options{
		ConnectTimeout: cfg.Timeouts.Connect,
		CommandTimeout: cfg.Timeouts.Command,
		TLSConfig:      tlsConfig,
		Logger:         log,
	}, nil
}

// errSilent marks a failure whose message was already printed.
var errSilent = errors.New("command failed")

// exitError converts err into an exit code without printing it twice.
func exitError(err error) error {
	if errors.Is(err, errSilent) {
		return cli.Exit("", 1)
	}
	return cli.Exit("error: "+err.Error(), 1)
}
