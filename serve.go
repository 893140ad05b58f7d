package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plumber-cd/ez-desk/internal/logging"
	"github.com/plumber-cd/ez-desk/internal/server"
	"github.com/plumber-cd/ez-desk/internal/store"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		dir    string
		listen string
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST backend over a data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Data.Dir = dir
			}
			if listen != "" {
				cfg.Listen = listen
			}
			logging.SetupStderr(debug)

			book, err := store.Load(cfg.Data.Dir)
			if err != nil {
				return err
			}
			logging.Infof("loaded %d records from %s", len(book.All()), cfg.Data.Dir)
			if cfg.Server.Token == "" {
				logging.Warnf("no token configured, the API is open to anyone who can reach %s", cfg.Listen)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg.Data.Dir, book, cfg.Server.Token).Run(ctx, cfg.Listen)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Data directory (overrides data.dir)")
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides listen)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every request")
	return cmd
}
