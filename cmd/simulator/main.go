/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the career compensation simulator. Runs
  scenarios from files, validates them, prints the built-in presets and
  serves the HTTP API.

COMMANDS:
  run [scenario.yaml]   Simulate a scenario file or --preset
  validate <file>       Check a scenario file and list every problem
  presets [id]          List presets, or print one as YAML
  serve                 Start the HTTP API

CONFIGURATION:
  SIMULATOR_* environment variables (see config/config.go) are loaded
  first; command-line flags override them.

EXAMPLES:
  simulator run --preset carrera-base --roster plantilla.xlsx --pdf informe.pdf
  simulator run escenario.yaml --as-of 2025-01-01 --override 1:14=3 --json
  simulator serve --port 3000 --db ./data/simulator.db

SEE ALSO:
  - run.go: run, validate and presets commands
  - serve.go: HTTP server startup and graceful shutdown
*/
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/career-simulator/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "simulator",
		Short:        "Horizontal career compensation simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd(a))
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(presetsCmd())
	rootCmd.AddCommand(serveCmd(a))
	return rootCmd
}
