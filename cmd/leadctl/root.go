package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"leadfinder/leads/application"
	"leadfinder/leads/domain"
	"leadfinder/leads/infra"
)

// app é o estado compartilhado pelos subcomandos, montado em PersistentPreRunE.
type app struct {
	server    string
	dataDir   string
	ephemeral bool
	verbose   bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger  *slog.Logger
	client  *infra.SearchClient
	book    *application.Book
	printer *printer
	closeKV func() error
}

// execute roda o leadctl com args e fecha o armazenamento mesmo quando o comando falha.
func execute(in io.Reader, out, errOut io.Writer, args []string) error {
	a := &app{in: in, out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	defer func() { _ = a.close() }()
	return root.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Find local business leads from the command line",
		Long: `leadctl talks to a leadfinder server to search for local businesses,
page through results, keep a list of saved leads and export them as CSV.

Example usage:
  leadctl search "coffee shops" --location "Lisbon"
  leadctl search dentists --location Porto --pages 3
  leadctl leads list
  leadctl leads export -o leads.csv
  leadctl shell`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.server, "server", getenvDefault("LEADFINDER_SERVER", infra.DefaultServerURL), "leadfinder server URL")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", getenvDefault("LEADFINDER_DATA_DIR", defaultDataDir()), "directory for saved leads and counters")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep saved leads in memory only")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.searchCmd(),
		a.suggestCmd(),
		a.leadsCmd(),
		a.statsCmd(),
		a.shellCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	a.printer = newPrinter(a.out)

	var kv domain.KVStore
	if a.ephemeral {
		kv = infra.NewMemoryKV()
		a.closeKV = func() error { return nil }
	} else {
		store, err := infra.OpenBadgerKV(a.dataDir, a.logger)
		if err != nil {
			return fmt.Errorf("opening data dir: %w", err)
		}
		kv = store
		a.closeKV = store.Close
	}

	a.book = application.NewBook(kv, a.logger)
	if err := a.book.Load(cmd.Context()); err != nil {
		_ = a.close()
		return fmt.Errorf("loading saved leads: %w", err)
	}
	a.client = infra.NewSearchClient(a.server, infra.WithClientLogger(a.logger))

	a.logger.Debug("leadctl ready", "server", a.server, "data_dir", a.dataDir, "ephemeral", a.ephemeral)
	return nil
}

func (a *app) close() error {
	if a.closeKV == nil {
		return nil
	}
	err := a.closeKV()
	a.closeKV = nil
	return err
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".leadfinder"
	}
	return filepath.Join(dir, "leadfinder")
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
