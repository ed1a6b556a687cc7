// Command evesaga is the CLI entrypoint: it loads configuration, wires an
// appctx.AppContext, and dispatches to one of the saga/report/serve
// subcommands. The logger setup and TTY-conditional console/JSON output
// mirror cmd/cryptorun/main.go from the teacher.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/evesaga/evesaga/internal/appctx"
	"github.com/evesaga/evesaga/internal/config"
)

const (
	appName = "evesaga"
	version = "0.1.0"
)

var configPath string

func main() {
	setupLogger()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "EVE Online asset dependency and market resolution engine",
		Version: version,
		Long: appName + " resolves a character's mutated-asset dependency graph and " +
			"refreshes market order books against the ESI API, persisting both to a " +
			"local snapshot.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")

	rootCmd.AddCommand(
		newAssetsCmd(),
		newMarketCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogger mirrors the teacher's console-writer-when-interactive,
// plain-JSON-otherwise split, so piping evesaga's output to a log
// aggregator yields structured lines instead of ANSI-colored text.
func setupLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func loadAppContext() (*appctx.AppContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return appctx.New(cfg)
}

func runAndPersist(run func(*appctx.AppContext) error) error {
	ac, err := loadAppContext()
	if err != nil {
		return err
	}
	if err := run(ac); err != nil {
		return err
	}
	if err := ac.PersistSnapshot(); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}
