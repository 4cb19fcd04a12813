package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dgallion1/checkmate/internal/config"
	"github.com/dgallion1/checkmate/internal/store"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	cfgFile string
	cfg     config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "checkmate",
		Short: "Checkmate - test case management",
		Long: `Checkmate organizes test cases into nested sections, runs them and
records results. It serves a JSON API and imports test plans from Markdown,
HTML, DOCX, PDF, CSV, YAML and plain text documents.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	f.String("port", "", "HTTP listen port")
	f.String("db-driver", "", "database driver (sqlite|postgres)")
	f.String("db-dsn", "", "database DSN or sqlite file path")
	f.String("log-level", "", "log level (debug|info|warn|error)")

	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.importCmd(),
		a.treeCmd(),
		a.userCmd(),
		versionCmd(),
	)
	return root
}

// load resolves configuration and builds the logger. Logs go to stderr so
// command output on stdout stays clean.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), lvl)
	return nil
}

func newLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openStore connects to the configured database.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if err := a.cfg.ValidateDB(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, a.cfg.DBDriver, a.cfg.DBDSN, a.log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "checkmate v%s (%s)\n", Version, GitCommit)
		},
	}
}
