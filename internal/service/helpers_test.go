// File: internal/service/helpers_test.go
package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/capture"
	"github.com/xkilldash9x/navscribe/internal/config"
)

// fakeBrowser is a launcher whose handles record their lifecycle.
type fakeBrowser struct {
	mu         sync.Mutex
	launched   int
	terminated int
	navigated  []string
}

func (b *fakeBrowser) Acquire(context.Context) (schemas.BrowserHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.launched++
	return &fakeHandle{browser: b, id: fmt.Sprintf("tab-%d", b.launched)}, nil
}

func (b *fakeBrowser) terminations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terminated
}

type fakeHandle struct {
	browser *fakeBrowser
	id      string
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Navigate(_ context.Context, url string) error {
	h.browser.mu.Lock()
	defer h.browser.mu.Unlock()
	h.browser.navigated = append(h.browser.navigated, url)
	return nil
}

func (h *fakeHandle) EvaluateScript(context.Context, string, interface{}) error { return nil }

func (h *fakeHandle) Terminate(context.Context) error {
	h.browser.mu.Lock()
	defer h.browser.mu.Unlock()
	h.browser.terminated++
	return nil
}

// tab keeps the two sessionStorage logs of the active page.
type tab struct {
	mu        sync.Mutex
	raw       []schemas.CapturedEvent
	processed []schemas.EventIdentity
}

func (p *tab) Inject(context.Context) (bool, error) { return true, nil }

func (p *tab) ReadRaw(context.Context) ([]schemas.CapturedEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]schemas.CapturedEvent(nil), p.raw...), nil
}

func (p *tab) ReadProcessed(context.Context) ([]schemas.EventIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]schemas.EventIdentity(nil), p.processed...), nil
}

func (p *tab) AppendRaw(_ context.Context, ev schemas.CapturedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = append(p.raw, ev)
	return nil
}

func (p *tab) AppendProcessedBatch(_ context.Context, ids []schemas.EventIdentity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, ids...)
	return nil
}

// click simulates the listener recording an interaction.
func (p *tab) click(t *testing.T, ev schemas.CapturedEvent) {
	t.Helper()
	require.NoError(t, p.AppendRaw(context.Background(), ev))
}

type describeFunc func(ctx context.Context, text string, tag schemas.ElementTag, url string) string

func (f describeFunc) Describe(ctx context.Context, text string, tag schemas.ElementTag, url string) string {
	return f(ctx, text, tag, url)
}

type fixture struct {
	svc     *Service
	browser *fakeBrowser
	page    *tab
}

func newFixture(t *testing.T, annotator schemas.Annotator) *fixture {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetBrowserSettleDelay(0)
	cfg.SetExportDir(t.TempDir())

	f := &fixture{browser: &fakeBrowser{}, page: &tab{}}
	components := Factory{
		Launcher:  f.browser,
		Annotator: annotator,
		Bind:      func(schemas.BrowserHandle) capture.Page { return f.page },
	}.Create(context.Background(), cfg, zap.NewNop())

	f.svc = New(components, cfg.Export(), zap.NewNop())
	return f
}

func click(text, page, href string, ms int) schemas.CapturedEvent {
	tag := "BUTTON"
	if href != "" {
		tag = "LINK"
	}
	return schemas.CapturedEvent{
		Text:       text,
		Tag:        tag,
		PageURL:    page,
		TargetHref: href,
		CapturedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond).Format("2006-01-02T15:04:05.000Z"),
	}
}
