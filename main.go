package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plumber-cd/ez-desk/internal/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
}

// loadConfig reads the --config file with defaults and EZDESK_* overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ez-desk",
		Short:         "Tickets, attendance, leave and tasks in a terminal console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = version
	cmd.SetVersionTemplate("ez-desk {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")

	cmd.AddCommand(
		newConsoleCmd(opts),
		newServeCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
