// internal/browser/launcher.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/config"
)

const defaultLaunchTimeout = 30 * time.Second

// Launcher starts a fresh browser process per Acquire call.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

var _ schemas.Launcher = (*Launcher)(nil)

// NewLauncher creates a Launcher for cfg.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger.Named("browser")}
}

// Acquire launches the browser and opens its first tab. ctx bounds the launch only;
// the process lives until the handle is terminated.
func (l *Launcher) Acquire(ctx context.Context) (schemas.BrowserHandle, error) {
	id := uuid.NewString()
	logger := l.logger.With(zap.String("handle", id))
	logger.Info("Launching browser.", zap.Bool("headless", l.cfg.Headless))

	allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), allocatorOptions(l.cfg)...)
	sugar := logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	timeout := l.cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	launchCtx, cancelLaunch := context.WithTimeout(ctx, timeout)
	defer cancelLaunch()

	// The first Run allocates the browser and binds it to tabCtx, so it must not run
	// on the shorter launch context.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	select {
	case err := <-started:
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-launchCtx.Done():
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("browser did not start: %w", launchCtx.Err())
	}

	logger.Info("Browser ready.")
	return &Handle{
		id:                id,
		ctx:               tabCtx,
		cancel:            tabCancel,
		allocCancel:       allocCancel,
		navigationTimeout: l.cfg.NavigationTimeout,
		logger:            logger,
	}, nil
}
