package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pageinject/internal/config"
	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/version"
)

// Global carries state shared by every subcommand.
type Global struct {
	// Out receives command output, Err receives logs.
	Out     io.Writer
	Err     io.Writer
	Verbose bool
	Logger  *slog.Logger
}

// NewGlobal returns a Global writing to stdout and stderr.
func NewGlobal() *Global {
	return &Global{Out: os.Stdout, Err: os.Stderr, Logger: slog.Default()}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pageinject.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Transform every managed page into an output directory"`
	Watch     WatchCmd     `cmd:"" help:"Build, then rebuild on manifest and page changes"`
	Transform TransformCmd `cmd:"" help:"Transform a single file and print the result"`
	Routes    RoutesCmd    `cmd:"" help:"Print the resolved page to fragment mapping"`
	DTS       DTSCmd       `cmd:"" name:"dts" help:"Generate the route type declaration file"`
	History   HistoryCmd   `cmd:"" help:"Show builds recorded in a ledger"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply installs a text logger until loadConfig replaces it with the configured one.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Verbose = c.Verbose
	g.Logger = config.Logging{}.NewLogger(g.Err, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// Execute parses args and runs the selected command.
func Execute(args []string, g *Global, options ...kong.Option) error {
	var cli CLI
	opts := append([]kong.Option{
		kong.Name("pageinject"),
		kong.Description("Build-time fragment injection for multi-page applications."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
		kong.Writers(g.Out, g.Err),
	}, options...)

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(g, &cli)
}

// loadConfig loads the configuration file and reconfigures logging from it.
// A missing file at the default location yields the default configuration,
// so a project needs no file when the root comes from the environment.
func loadConfig(root *CLI, g *Global) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(root.Config); os.IsNotExist(err) && root.Config == config.DefaultConfigFile {
		cfg, err = config.Parse(nil)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load(root.Config)
		if err != nil {
			return nil, err
		}
	}

	g.Logger = cfg.Logging.NewLogger(g.Err, g.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// openLedger opens the SQLite ledger at path, or returns nil when path is empty.
func openLedger(path string) (*eventstore.SQLiteStore, error) {
	if path == "" {
		return nil, nil
	}
	return eventstore.NewSQLiteStore(path)
}

func closeLedger(g *Global, store *eventstore.SQLiteStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		g.Logger.Warn("Failed to close ledger", "error", err)
	}
}

// newOrchestrator wires an orchestrator to the shared logger, recorder and ledger.
func newOrchestrator(cfg *config.Config, g *Global, recorder metrics.Recorder, store *eventstore.SQLiteStore) *injector.Orchestrator {
	opts := []injector.Option{injector.WithLogger(g.Logger), injector.WithRecorder(recorder)}
	if store != nil {
		opts = append(opts, injector.WithEventSink(store))
	}
	return injector.New(cfg, opts...)
}
