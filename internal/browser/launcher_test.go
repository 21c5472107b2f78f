// internal/browser/launcher_test.go
package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/config"
	"github.com/xkilldash9x/navscribe/internal/instrument"
)

const fixturePage = `<!DOCTYPE html>
<html><body>
  <nav><a id="pricing" class="nav-link" href="#pricing">Pricing</a></nav>
  <button id="save" aria-label="Save draft"></button>
  <p id="plain">Just text</p>
</body></html>`

// findChrome returns a browser binary on PATH, skipping the test when there is none.
func findChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser integration test in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome or Chromium binary found on PATH")
	return ""
}

func TestLauncher_CapturesClicks(t *testing.T) {
	execPath := findChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	logger := zaptest.NewLogger(t)
	launcher := NewLauncher(config.BrowserConfig{
		Headless:          true,
		DisableGPU:        true,
		ExecPath:          execPath,
		LaunchTimeout:     30 * time.Second,
		NavigationTimeout: 15 * time.Second,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	handle, err := launcher.Acquire(ctx)
	require.NoError(t, err)
	defer func() { assert.NoError(t, handle.Terminate(context.Background())) }()

	require.NoError(t, handle.Navigate(ctx, server.URL))

	page := instrument.NewPage(handle, logger)
	_, err = page.Inject(ctx)
	require.NoError(t, err)
	// A second injection is a no-op.
	_, err = page.Inject(ctx)
	require.NoError(t, err)

	var ignored interface{}
	for _, id := range []string{"pricing", "save", "plain"} {
		require.NoError(t, handle.EvaluateScript(ctx, `document.getElementById("`+id+`").click()`, &ignored))
	}

	events, err := page.ReadRaw(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2, "the plain paragraph is not navigation")

	assert.Equal(t, "Pricing", events[0].Text)
	assert.Equal(t, schemas.TagLink, events[0].ElementTag())
	assert.Equal(t, server.URL+"/#pricing", events[0].TargetHref)
	assert.Equal(t, "Save draft", events[1].Text)
	assert.Equal(t, schemas.TagButton, events[1].ElementTag())
	assert.Empty(t, events[1].TargetHref)

	err = handle.EvaluateScript(ctx, `(() => { throw new Error("boom") })()`, &ignored)
	assert.ErrorIs(t, err, schemas.ErrScript)
}

func TestLauncher_LaunchFailure(t *testing.T) {
	launcher := NewLauncher(config.BrowserConfig{
		Headless:      true,
		ExecPath:      "/nonexistent/chrome",
		LaunchTimeout: 5 * time.Second,
	}, zaptest.NewLogger(t))

	handle, err := launcher.Acquire(context.Background())
	assert.Error(t, err)
	assert.Nil(t, handle)
}
