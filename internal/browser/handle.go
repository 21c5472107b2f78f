// internal/browser/handle.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// ErrHandleClosed is returned by operations on a terminated handle.
var ErrHandleClosed = errors.New("browser handle is closed")

// Handle is one chromedp-controlled browser process with a single tab. It implements
// schemas.BrowserHandle.
type Handle struct {
	id     string
	ctx    context.Context // tab context, carries the CDP target
	cancel context.CancelFunc
	// allocCancel tears down the browser process.
	allocCancel context.CancelFunc

	navigationTimeout time.Duration
	logger            *zap.Logger

	mu       sync.Mutex
	isClosed bool
}

var _ schemas.BrowserHandle = (*Handle)(nil)

func (h *Handle) ID() string { return h.id }

// Navigate loads url and waits for the load event, bounded by the navigation timeout.
func (h *Handle) Navigate(ctx context.Context, url string) error {
	if h.navigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.navigationTimeout)
		defer cancel()
	}
	if err := h.runActions(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	h.logger.Debug("Navigated.", zap.String("url", url))
	return nil
}

// EvaluateScript evaluates source in the current document and unmarshals the result
// into res. A script that throws yields an error wrapping schemas.ErrScript.
func (h *Handle) EvaluateScript(ctx context.Context, source string, res interface{}) error {
	return classifyScriptError(h.runActions(ctx, chromedp.Evaluate(source, res)))
}

// classifyScriptError marks in-page exceptions so callers can tell a throwing script
// from a dead tab.
func classifyScriptError(err error) error {
	var exception *runtime.ExceptionDetails
	if errors.As(err, &exception) {
		return fmt.Errorf("%w: %w", schemas.ErrScript, err)
	}
	return err
}

// Terminate closes the browser gracefully, then releases the process. Calling it
// again is a no-op.
func (h *Handle) Terminate(ctx context.Context) error {
	h.mu.Lock()
	if h.isClosed {
		h.mu.Unlock()
		return nil
	}
	h.isClosed = true
	h.mu.Unlock()

	h.logger.Debug("Terminating browser.")

	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(h.ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	h.cancel()
	h.allocCancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn("Browser did not close cleanly.", zap.Error(err))
		return fmt.Errorf("failed to close browser: %w", err)
	}
	h.logger.Info("Browser terminated.")
	return nil
}

func (h *Handle) closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isClosed
}

// runActions executes chromedp actions bound to both the tab lifetime and ctx.
func (h *Handle) runActions(ctx context.Context, actions ...chromedp.Action) error {
	if h.closed() {
		return ErrHandleClosed
	}
	runCtx, cancel := CombineContext(h.ctx, ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Prefer the caller's error when it's their deadline that ran out.
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return err
	}
	return nil
}
