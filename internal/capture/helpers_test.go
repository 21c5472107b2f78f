// internal/capture/helpers_test.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// stubHandle is an inert browser handle; the coordinator only hands it to the binder.
type stubHandle struct{ id string }

func (h *stubHandle) ID() string                                                { return h.id }
func (h *stubHandle) Navigate(context.Context, string) error                    { return nil }
func (h *stubHandle) EvaluateScript(context.Context, string, interface{}) error { return nil }
func (h *stubHandle) Terminate(context.Context) error                           { return nil }

// fakeSession mimics the session controller's Handle contract.
type fakeSession struct {
	mu     sync.Mutex
	handle schemas.BrowserHandle
}

func newActiveSession() *fakeSession {
	return &fakeSession{handle: &stubHandle{id: "tab-1"}}
}

func (s *fakeSession) Handle() (schemas.BrowserHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil, fmt.Errorf("capture requested: %w", schemas.ErrNoActiveSession)
	}
	return s.handle, nil
}

func (s *fakeSession) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = nil
}

// memoryPage is an in-memory stand-in for the page's sessionStorage logs.
type memoryPage struct {
	mu        sync.Mutex
	raw       []schemas.CapturedEvent
	processed []schemas.EventIdentity
	injected  int

	injectErr         error
	readErr           error
	processedErr      error
	processedFailures int
}

func (p *memoryPage) binder() PageBinder {
	return func(schemas.BrowserHandle) Page { return p }
}

func (p *memoryPage) click(events ...schemas.CapturedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = append(p.raw, events...)
}

func (p *memoryPage) Inject(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injected++
	if p.injectErr != nil {
		return false, p.injectErr
	}
	return true, nil
}

func (p *memoryPage) ReadRaw(context.Context) ([]schemas.CapturedEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	return append([]schemas.CapturedEvent(nil), p.raw...), nil
}

func (p *memoryPage) ReadProcessed(context.Context) ([]schemas.EventIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	return append([]schemas.EventIdentity(nil), p.processed...), nil
}

func (p *memoryPage) AppendRaw(_ context.Context, ev schemas.CapturedEvent) error {
	p.click(ev)
	return nil
}

func (p *memoryPage) AppendProcessedBatch(_ context.Context, ids []schemas.EventIdentity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.processedFailures > 0 {
		p.processedFailures--
		return p.processedErr
	}
	p.processed = append(p.processed, ids...)
	return nil
}

func (p *memoryPage) processedLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

// echoAnnotator describes an element by echoing its inputs.
type echoAnnotator struct {
	mu    sync.Mutex
	calls int
	delay func(text string) time.Duration
}

func (a *echoAnnotator) Describe(ctx context.Context, text string, tag schemas.ElementTag, url string) string {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.delay != nil {
		select {
		case <-time.After(a.delay(text)):
		case <-ctx.Done():
		}
	}
	return fmt.Sprintf("%s %s -> %s", tag, text, url)
}

func (a *echoAnnotator) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// annotatorFunc adapts a function to schemas.Annotator.
type annotatorFunc func(ctx context.Context, text string, tag schemas.ElementTag, url string) string

func (f annotatorFunc) Describe(ctx context.Context, text string, tag schemas.ElementTag, url string) string {
	return f(ctx, text, tag, url)
}

var errStorage = errors.New("sessionStorage unavailable")

// linkClick builds the event the listener records for a link click.
func linkClick(text, page, href, ts string) schemas.CapturedEvent {
	return schemas.CapturedEvent{Text: text, Tag: "LINK", PageURL: page, TargetHref: href, CapturedAt: ts}
}

func buttonClick(text, page, ts string) schemas.CapturedEvent {
	return schemas.CapturedEvent{Text: text, Tag: "BUTTON", PageURL: page, CapturedAt: ts}
}

func ts(ms int) string {
	return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond).Format("2006-01-02T15:04:05.000Z")
}
