// File: cmd/record.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/capture"
	"github.com/xkilldash9x/navscribe/internal/observability"
	"github.com/xkilldash9x/navscribe/internal/service"
)

func newRecordCmd() *cobra.Command {
	var (
		format    string
		outputDir string
		headless  bool
	)

	recordCmd := &cobra.Command{
		Use:   "record [url]",
		Short: "Open a browser, record navigation clicks until interrupted, then export",
		Long: `Opens a browser on the given URL (default: browser.default_url) and captures
every navigation element you click. Press Ctrl+C to finish; the browser is closed and
the history is written to export.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(headless)
			}
			if format != "" {
				cfg.SetExportFormat(format)
			}
			if outputDir != "" {
				cfg.SetExportDir(outputDir)
			}

			var url string
			if len(args) == 1 {
				url = args[0]
			}

			svc := service.NewFromConfig(ctx, cfg, logger)
			status, err := svc.StartSession(ctx, url)
			if err != nil {
				return fmt.Errorf("failed to start recording: %w", err)
			}
			cmd.Printf("Recording clicks on %s. Press Ctrl+C to finish.\n", status.StartURL)

			poller := capture.NewPoller(svc, cfg.Capture().PollInterval, logger)
			poller.OnCycle = func(res schemas.PollResult, err error) {
				if err == nil && res.NewEntries > 0 {
					cmd.Printf("Captured %d new entries (%d total).\n", res.NewEntries, res.TotalEntries)
				}
			}
			if err := poller.Run(ctx); err != nil {
				svc.Shutdown(context.Background())
				return err
			}

			return finishRecording(cmd, svc, format, logger)
		},
	}

	recordCmd.Flags().StringVarP(&format, "format", "f", "", "export format: docx or json (overrides export.format)")
	recordCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the export (overrides export.dir)")
	recordCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	return recordCmd
}

// finishRecording picks up the last clicks, closes the browser and exports.
func finishRecording(cmd *cobra.Command, svc *service.Service, format string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if _, err := svc.PollAndAnnotate(ctx); err != nil {
		logger.Warn("Final capture cycle failed.", zap.Error(err))
	}
	if err := svc.StopSession(ctx); err != nil {
		logger.Warn("Failed to stop the browser session.", zap.Error(err))
	}

	export, err := svc.ExportRecords(format)
	if errors.Is(err, schemas.ErrEmptyExport) {
		cmd.Println("No navigation was captured; nothing to export.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to export navigation history: %w", err)
	}
	cmd.Printf("Wrote %d entries to %s\n", export.Entries, export.Path)
	return nil
}
