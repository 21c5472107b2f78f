// internal/instrument/page.go
package instrument

import (
	"context"
	_ "embed"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

//go:embed listener.js
var listenerScript string

// Keys of the two logs kept in the page's sessionStorage.
const (
	RawLogKey       = "navClicks"
	ProcessedLogKey = "processedClicks"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Page binds the click listener and the in-page event logs to one browser handle.
type Page struct {
	handle schemas.BrowserHandle
	logger *zap.Logger
}

var (
	_ schemas.Injector = (*Page)(nil)
	_ schemas.EventLog = (*Page)(nil)
)

// NewPage creates a Page over handle.
func NewPage(handle schemas.BrowserHandle, logger *zap.Logger) *Page {
	return &Page{
		handle: handle,
		logger: logger.Named("instrument").With(zap.String("handle", handle.ID())),
	}
}

// ListenerScript returns the source of the in-page click listener.
func ListenerScript() string { return listenerScript }

// Inject installs the click listener unless the page already carries it. A page
// that navigated since the last call has lost the listener and gets it again.
func (p *Page) Inject(ctx context.Context) (bool, error) {
	var installed bool
	if err := p.handle.EvaluateScript(ctx, listenerScript, &installed); err != nil {
		p.logger.Warn("Failed to inject click listener.", zap.Error(err))
		return false, fmt.Errorf("%w: %w", schemas.ErrInjection, err)
	}
	if !installed {
		return false, fmt.Errorf("%w: listener did not report installation", schemas.ErrInjection)
	}
	return true, nil
}

// ReadRaw returns every click the listener recorded on this page session.
func (p *Page) ReadRaw(ctx context.Context) ([]schemas.CapturedEvent, error) {
	var events []schemas.CapturedEvent
	if err := p.handle.EvaluateScript(ctx, readLogScript(RawLogKey), &events); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", RawLogKey, err)
	}
	return events, nil
}

// ReadProcessed returns the identities already turned into records.
func (p *Page) ReadProcessed(ctx context.Context) ([]schemas.EventIdentity, error) {
	var ids []schemas.EventIdentity
	if err := p.handle.EvaluateScript(ctx, readLogScript(ProcessedLogKey), &ids); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ProcessedLogKey, err)
	}
	return ids, nil
}

// AppendRaw appends ev to the raw log, as the listener does on a click.
func (p *Page) AppendRaw(ctx context.Context, ev schemas.CapturedEvent) error {
	payload, err := json.Marshal([]schemas.CapturedEvent{ev})
	if err != nil {
		return fmt.Errorf("failed to encode captured event: %w", err)
	}
	if err := p.handle.EvaluateScript(ctx, appendLogScript(RawLogKey, payload), nil); err != nil {
		return fmt.Errorf("failed to append to %s: %w", RawLogKey, err)
	}
	return nil
}

// AppendProcessedBatch appends ids to the processed log in a single write.
func (p *Page) AppendProcessedBatch(ctx context.Context, ids []schemas.EventIdentity) error {
	if len(ids) == 0 {
		return nil
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode processed identities: %w", err)
	}
	if err := p.handle.EvaluateScript(ctx, appendLogScript(ProcessedLogKey, payload), nil); err != nil {
		return fmt.Errorf("failed to append to %s: %w", ProcessedLogKey, err)
	}
	return nil
}

func readLogScript(key string) string {
	return fmt.Sprintf(`JSON.parse(sessionStorage.getItem(%q) || '[]')`, key)
}

// appendLogScript embeds items (a JSON array) as a literal and pushes it onto the log
// in one setItem call.
func appendLogScript(key string, items []byte) string {
	return fmt.Sprintf(`(() => {
  const log = JSON.parse(sessionStorage.getItem(%[1]q) || '[]');
  log.push(...%[2]s);
  sessionStorage.setItem(%[1]q, JSON.stringify(log));
  return log.length;
})()`, key, items)
}
