package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plumber-cd/ez-desk/internal/api"
	"github.com/plumber-cd/ez-desk/internal/logging"
	"github.com/plumber-cd/ez-desk/internal/ui"
)

func newConsoleCmd(opts *rootOptions) *cobra.Command {
	var (
		serverURL string
		debugFile string
	)
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the terminal console against an ez-desk server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			cleanup, err := logging.SetupLogging(debugFile)
			if err != nil {
				return err
			}
			defer cleanup()

			client, err := api.New(cfg.Server.URL, cfg.Server.Token, cfg.Server.Timeout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := ui.New(ui.Options{
				Backend:        client,
				DataDir:        cfg.Data.Dir,
				ExitTransition: cfg.UI.Transition(),
				Context:        ctx,
			})
			if err != nil {
				return fmt.Errorf("connect to %s: %w", client.BaseURL(), err)
			}
			go func() {
				<-ctx.Done()
				app.Stop()
			}()

			logging.Infof("console connected to %s", client.BaseURL())
			return app.Run()
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "Server base URL (overrides server.url)")
	cmd.Flags().StringVar(&debugFile, "debug", "", "Write debug logs to this file")
	return cmd
}
