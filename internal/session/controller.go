// internal/session/controller.go
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/instrument"
)

// DefaultURL is opened when a session is started without a URL.
const DefaultURL = "https://www.google.com"

const releaseTimeout = 10 * time.Second

// InjectorBinder builds the listener injector for a handle.
type InjectorBinder func(h schemas.BrowserHandle) schemas.Injector

// Options tunes a Controller.
type Options struct {
	// DefaultURL replaces DefaultURL when set.
	DefaultURL string
	// SettleDelay is waited between navigation and listener injection.
	SettleDelay time.Duration
	// Bind overrides the instrument.Page injector.
	Bind InjectorBinder
}

// Controller owns the single browser session. It is Idle or Active; Start and Stop
// move between the two and Handle exposes the active browser to the capture pipeline.
type Controller struct {
	launcher schemas.Launcher
	opts     Options
	logger   *zap.Logger

	mu          sync.Mutex
	handle      schemas.BrowserHandle
	id          string
	startURL    string
	startedAt   time.Time
	starting    bool
	cancelStart context.CancelFunc
}

// NewController creates an idle Controller.
func NewController(launcher schemas.Launcher, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultURL == "" {
		opts.DefaultURL = DefaultURL
	}
	logger = logger.Named("session")
	if opts.Bind == nil {
		opts.Bind = func(h schemas.BrowserHandle) schemas.Injector { return instrument.NewPage(h, logger) }
	}
	return &Controller{launcher: launcher, opts: opts, logger: logger}
}

// Start acquires a browser, opens url and installs the click listener. It fails with
// ErrSessionActive unless the controller is idle. Acquisition or navigation failures
// wrap ErrAcquisition and leave the controller idle; an injection failure is only
// logged since the next capture cycle injects again.
func (c *Controller) Start(ctx context.Context, url string) (schemas.SessionStatus, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		url = c.opts.DefaultURL
	}

	c.mu.Lock()
	if c.handle != nil || c.starting {
		c.mu.Unlock()
		return schemas.SessionStatus{}, fmt.Errorf("cannot start session for %s: %w", url, schemas.ErrSessionActive)
	}
	startCtx, cancel := context.WithCancel(ctx)
	c.starting = true
	c.cancelStart = cancel
	c.mu.Unlock()

	id := uuid.NewString()
	logger := c.logger.With(zap.String("session_id", id), zap.String("url", url))
	logger.Info("Starting navigation session.")

	handle, err := c.open(startCtx, url, logger)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil && startCtx.Err() != nil {
		// Stop or the caller gave up after the browser came up.
		c.release(handle, logger)
		err = fmt.Errorf("%w: start interrupted: %w", schemas.ErrAcquisition, startCtx.Err())
	}
	c.starting = false
	c.cancelStart = nil
	cancel()
	if err != nil {
		logger.Error("Failed to start navigation session.", zap.Error(err))
		return schemas.SessionStatus{}, err
	}

	c.handle = handle
	c.id = id
	c.startURL = url
	c.startedAt = time.Now()
	logger.Info("Navigation session started.", zap.String("handle", handle.ID()))
	return c.statusLocked(), nil
}

// open runs the launch sequence without holding the lock. The handle is released on
// any failure.
func (c *Controller) open(ctx context.Context, url string, logger *zap.Logger) (schemas.BrowserHandle, error) {
	handle, err := c.launcher.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schemas.ErrAcquisition, err)
	}

	if err := handle.Navigate(ctx, url); err != nil {
		c.release(handle, logger)
		return nil, fmt.Errorf("%w: %w", schemas.ErrAcquisition, err)
	}

	if c.opts.SettleDelay > 0 {
		timer := time.NewTimer(c.opts.SettleDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.release(handle, logger)
			return nil, fmt.Errorf("%w: start interrupted: %w", schemas.ErrAcquisition, ctx.Err())
		}
	}

	if ok, err := c.opts.Bind(handle).Inject(ctx); err != nil || !ok {
		logger.Warn("Initial listener injection failed; the next capture cycle will retry.", zap.Error(err))
	}
	return handle, nil
}

func (c *Controller) release(handle schemas.BrowserHandle, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := handle.Terminate(ctx); err != nil {
		logger.Warn("Failed to release browser handle.", zap.Error(err))
	}
}

// Stop terminates the active browser and returns to idle. Stopping an idle controller
// is a no-op; stopping one that is still starting aborts the start.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.starting && c.cancelStart != nil {
		c.cancelStart()
	}
	handle, id := c.handle, c.id
	c.handle = nil
	c.id = ""
	c.startURL = ""
	c.startedAt = time.Time{}
	c.mu.Unlock()

	if handle == nil {
		c.logger.Debug("Stop requested with no active session.")
		return nil
	}

	logger := c.logger.With(zap.String("session_id", id))
	if err := handle.Terminate(ctx); err != nil {
		// The session is idle regardless; the browser is best-effort.
		logger.Warn("Browser did not terminate cleanly.", zap.Error(err))
	}
	logger.Info("Navigation session stopped.")
	return nil
}

// Handle returns the active browser handle, or ErrNoActiveSession while idle.
func (c *Controller) Handle() (schemas.BrowserHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return nil, schemas.ErrNoActiveSession
	}
	return c.handle, nil
}

// State reports whether a session is running.
func (c *Controller) State() schemas.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return schemas.SessionIdle
	}
	return schemas.SessionActive
}

// Status snapshots the session. TotalEntries is left for the caller to fill in.
func (c *Controller) Status() schemas.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() schemas.SessionStatus {
	if c.handle == nil {
		return schemas.SessionStatus{State: schemas.SessionIdle}
	}
	startedAt := c.startedAt
	return schemas.SessionStatus{
		State:     schemas.SessionActive,
		SessionID: c.id,
		StartURL:  c.startURL,
		StartedAt: &startedAt,
	}
}
