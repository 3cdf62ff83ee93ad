package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/cli/config"
	"github.com/yndnr/kvsh/internal/cli/connection"
	"github.com/yndnr/kvsh/internal/cli/lineedit"
	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/cli/repl"
	"github.com/yndnr/kvsh/internal/infra/confloader"
	"github.com/yndnr/kvsh/internal/infra/shutdown"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
	"github.com/yndnr/kvsh/internal/telemetry/metric"
)

const (
	banner        = "kvsh - interactive key-value shell"
	defaultServer = "localhost:6379"

	shutdownTimeout = 5 * time.Second
)

// shellTerminal is the terminal the shell runs on.
type shellTerminal interface {
	lineedit.Terminal
	IsTerminal() bool
	Restore() error
}

func newTerminal(in io.Reader, out io.Writer) shellTerminal {
	return lineedit.NewTerminal(in, out)
}

func shellAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit(fmt.Sprintf("unknown command %q", c.Args().First()), 2)
	}

	ctx := c.Context
	cfg := GetConfig(c)
	out := c.App.Writer
	term := newTerminal(c.App.Reader, out)

	fmt.Fprintln(out, banner)

	mgr, ep, err := connectResolved(c, term)
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(out, "Connected to %s\n", ep.Label())

	ctx = logger.WithSessionID(ctx, logger.NewSessionID())
	log := GetLogger(c).WithContext(ctx)
	log.Info("session started", "endpoint", ep.String())

	history := repl.NewHistory(cfg.HistoryFile(), cfg.History.Size)
	if err := history.Load(); err != nil {
		log.Warn("failed to load history", "file", history.File(), "error", err)
	}

	sd := shutdown.NewHandler(shutdownTimeout)
	sd.OnShutdown(func(context.Context) error { return mgr.Disconnect() })

	promReg := prometheus.NewRegistry()
	metrics := metric.NewRegistry(promReg)
	promReg.MustRegister(metric.NewCollector(history.Len))
	if cfg.Metrics.Address != "" {
		stopMetrics, err := serveMetrics(cfg.Metrics.Address, promReg, log)
		if err != nil {
			return exitError(err)
		}
		sd.OnShutdown(stopMetrics)
	}

	if path, _ := c.App.Metadata[metaConfigPath].(string); path != "" {
		if stopWatch := watchConfig(path, flagOverrides(c), log); stopWatch != nil {
			sd.OnShutdown(func(context.Context) error { return stopWatch() })
		}
	}

	// Registered last so the terminal is restored before anything else.
	sd.OnShutdown(func(context.Context) error { return term.Restore() })
	stopSignals := sd.Watch(exitOnSignal(log, out, history, os.Exit))
	defer stopSignals()

	store, err := mgr.Store()
	if err != nil {
		return exitError(err)
	}
	format, _ := output.ParseFormat(cfg.Output)
	dispatcher := repl.NewDispatcher(store, out,
		repl.WithHistory(history),
		repl.WithFormatter(output.NewFormatter(format)),
		repl.WithMetrics(metrics),
		repl.WithLogger(log),
	)

	shell := repl.New(repl.Config{
		Terminal:   term,
		Output:     out,
		Dispatcher: dispatcher,
		History:    history,
		Label:      ep.Label(),
		Logger:     log,
	})
	runErr := shell.Run(ctx)

	if err := sd.Shutdown(); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	log.Info("session ended", "history_entries", history.Len())
	if runErr != nil {
		return exitError(runErr)
	}
	return nil
}

// exitOnSignal ends a session the REPL did not get to close. The REPL
// saves history on every clean exit, so only this path saves it here.
func exitOnSignal(log logger.Logger, out io.Writer, history *repl.History, exit func(int)) func(os.Signal) {
	return func(sig os.Signal) {
		log.Info("terminated by signal", "signal", sig.String())
		if err := history.Save(); err != nil {
			log.Warn("failed to save history", "file", history.File(), "error", err)
		}
		fmt.Fprintln(out, "\r\nExiting kvsh.")
		exit(1)
	}
}

// connectResolved resolves the server address, connects, and records
// it as the last-used host.
func connectResolved(c *cli.Context, term shellTerminal) (*connection.Manager, connection.Endpoint, error) {
	cfg := GetConfig(c)
	log := GetLogger(c)

	server, err := resolveServer(c.Context, cfg, term)
	if err != nil {
		return nil, connection.Endpoint{}, err
	}
	parsed, err := connection.ParseEndpoint(server)
	if err != nil {
		return nil, connection.Endpoint{}, err
	}
	ep := parsed.WithDefaults(cfg.Username, cfg.Password, cfg.DB, cfg.TLS)

	mgr, err := GetConnectionManager(c)
	if err != nil {
		return nil, connection.Endpoint{}, err
	}
	if _, err := mgr.Connect(c.Context, ep); err != nil {
		return nil, connection.Endpoint{}, fmt.Errorf("connect to %s: %w", ep.Label(), err)
	}

	if err := config.SaveLastHost(config.ExpandHome(cfg.State.Dir), lastHostEntry(server, parsed)); err != nil {
		log.Warn("failed to save last host", "error", err)
	}
	return mgr, ep, nil
}

// resolveServer returns the configured server, else the answer to an
// interactive prompt offering the last host, else the last host, else
// localhost.
func resolveServer(ctx context.Context, cfg *config.CLIConfig, term shellTerminal) (string, error) {
	if cfg.Server != "" {
		return cfg.Server, nil
	}

	last, err := config.LoadLastHost(config.ExpandHome(cfg.State.Dir))
	if err != nil {
		logger.L(ctx).Debug("failed to read last host", "error", err)
		last = ""
	}

	if !term.IsTerminal() {
		if last != "" {
			return last, nil
		}
		return defaultServer, nil
	}

	prompt := "Enter server address: "
	if last != "" {
		prompt = "Enter server address [" + last + "]: "
	}
	answer, err := lineedit.New(term, prompt, nil).ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer != "" {
		return answer, nil
	}
	if last == "" {
		return "", connection.ErrInvalidAddress
	}
	return last, nil
}

// lastHostEntry is what gets remembered for server: the address as
// typed, unless it embeds a password.
func lastHostEntry(server string, ep connection.Endpoint) string {
	if ep.Password != "" {
		return ep.String()
	}
	return strings.TrimSpace(server)
}

// serveMetrics exposes reg over HTTP and returns a shutdown hook.
func serveMetrics(addr string, reg *prometheus.Registry, log logger.Logger) (shutdown.Hook, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	srv := &http.Server{
		Handler:           metric.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "error", err)
		}
	}()
	log.Info("serving metrics", "address", ln.Addr().String())

	return srv.Shutdown, nil
}

// watchConfig applies log level changes from the config file while the
// shell runs. It returns nil if the file cannot be watched.
func watchConfig(path string, flags map[string]any, log logger.Logger) func() error {
	w, err := confloader.Watch(path, func() {
		cfg, err := config.Load(config.LoadOptions{Path: path, Flags: flags})
		if err != nil {
			log.Warn("ignoring invalid config change", "path", path, "error", err)
			return
		}
		prev := logger.GetLevel()
		logger.SetLevel(cfg.Log.Level)
		if now := logger.GetLevel(); now != prev {
			log.Info("log level changed", "from", prev, "to", now)
		}
	}, confloader.WithLogger(log))
	if err != nil {
		log.Debug("config watcher unavailable", "path", path, "error", err)
		return nil
	}
	return w.Stop
}
