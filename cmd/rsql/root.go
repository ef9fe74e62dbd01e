package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/internal/shell"
	"github.com/leapstack-labs/rsql/pkg/driver"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/all"
)

// Version information (set at build time).
var Version = "0.1.0"

// defaultURL opens an in-memory DuckDB session when no --url is given.
const defaultURL = "duckdb://"

var (
	cfgFile  string
	settings *config.Settings
	exitCode int
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rsql",
		Short: "rsql - a SQL shell for databases and data files",
		Long: `rsql is a SQL shell for relational databases and data files.

It connects to a database or file via a URL, runs SQL interactively or
from scripts, and renders results in any of the supported output formats.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			settings, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := run(cmd)
			exitCode = code
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.rsql/rsql.yaml)")
	rootCmd.PersistentFlags().StringP("url", "u", "", "Database connection URL")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Execute SQL statements from a file")
	rootCmd.PersistentFlags().String("format", "", "Results format ("+strings.Join(format.Formats(), "|")+")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return format.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// run connects, picks interactive or scripted mode, and returns the
// process exit code.
func run(cmd *cobra.Command) (int, error) {
	ctx := cmd.Context()
	fetch.Version = Version

	logger := newLogger(settings.Verbose)
	if !colorCapable() {
		settings.Color = false
	}

	url := settings.URL
	if url == "" {
		url = defaultURL
	}

	connection, err := driver.Connect(ctx, url)
	if err != nil {
		return 1, err
	}
	cached := driver.NewCachedMetadataConnection(connection)
	defer func() { _ = cached.Close(ctx) }()

	sh := shell.New(settings, cached, logger)

	if settings.File != "" {
		script, err := os.Open(settings.File)
		if err != nil {
			return 1, driver.IOError(err)
		}
		defer func() { _ = script.Close() }()
		return sh.RunReader(ctx, script)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return sh.RunReader(ctx, os.Stdin)
	}
	return sh.Run(ctx)
}

// colorCapable reports whether stdout can render ANSI colors.
func colorCapable() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
