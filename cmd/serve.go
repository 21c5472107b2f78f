// File: cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/navscribe/internal/capture"
	"github.com/xkilldash9x/navscribe/internal/observability"
	"github.com/xkilldash9x/navscribe/internal/server"
	"github.com/xkilldash9x/navscribe/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr     string
		headless bool
		poll     bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation capture API over HTTP",
		Long: `Starts the HTTP API (start_navigation, capture_clicks, get_navigation_data,
stop_navigation, clear_data, download_word, status). With --poll the server also
captures clicks on its own every capture.poll_interval, so clients don't need to
call capture_clicks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(headless)
			}
			serverCfg := cfg.Server()
			if addr != "" {
				serverCfg.ListenAddr = addr
			}

			svc := service.NewFromConfig(ctx, cfg, logger)
			defer func() {
				// The serve context is already canceled here.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				svc.Shutdown(shutdownCtx)
			}()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.NewServer(serverCfg, svc, logger).Run(gctx)
			})
			if poll {
				poller := capture.NewPoller(svc, cfg.Capture().PollInterval, logger)
				g.Go(func() error { return poller.Run(gctx) })
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("navscribe server exited.", zap.String("address", serverCfg.ListenAddr))
			return nil
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.listen_addr)")
	serveCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	serveCmd.Flags().BoolVar(&poll, "poll", false, "capture clicks in the background instead of waiting for capture_clicks calls")
	return serveCmd
}
