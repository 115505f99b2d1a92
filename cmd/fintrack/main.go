// Command fintrack serves the finance dashboard and offers ledger
// reports on the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

// env is shared by every subcommand once the root pre-run has loaded it.
type env struct {
	debug  bool
	cfg    *config.Config
	logger *applog.Logger
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "fintrack",
		Short:         "Personal income and expense tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if e.debug {
				level = "debug"
			}
			e.cfg = cfg
			e.logger = cli.SetupLogger(logOut, level)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&e.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(e),
		newExportCmd(e),
		newSummaryCmd(e),
		newCategoriesCmd(e),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fintrack:", err)
		os.Exit(1)
	}
}
