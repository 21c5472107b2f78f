// internal/annotate/adapter_test.go
package annotate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// MockGenerator is a testify mock of Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func setupObservedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

const contactText = "Contact Us, get in touch with our sales team today for enterprise pricing options"

func TestAdapter_Describe_Success(t *testing.T) {
	gen := new(MockGenerator)
	want := BuildRequest("Pricing", schemas.TagLink, "/pricing")
	gen.On("Generate", mock.Anything, want).Return("  Opens the pricing page.\n", nil).Once()

	a := NewAdapter(gen, zap.NewNop())
	got := a.Describe(context.Background(), "Pricing", schemas.TagLink, "/pricing")

	assert.Equal(t, "Opens the pricing page.", got)
	gen.AssertExpectations(t)
}

func TestAdapter_Describe_TruncatesLongOutput(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, Request) (string, error) {
		return strings.Repeat("é", 300), nil
	})
	got := NewAdapter(gen, nil).Describe(context.Background(), "Docs", schemas.TagNav, "https://a.test/")
	assert.Equal(t, strings.Repeat("é", schemas.MaxDescriptionLen), got)
}

func TestAdapter_Describe_Fallbacks(t *testing.T) {
	wantFallback := "Navigation element: Contact Us, get in touch with our sales team today"
	require.Equal(t, wantFallback, FallbackDescription(contactText), "fallback keeps exactly the first 50 characters")

	tests := []struct {
		name string
		gen  Generator
	}{
		{name: "no generator configured", gen: nil},
		{name: "unreachable service", gen: GeneratorFunc(func(context.Context, Request) (string, error) {
			return "", errors.New("dial tcp: connection refused")
		})},
		{name: "quota exhausted", gen: GeneratorFunc(func(context.Context, Request) (string, error) {
			return "", errors.New("gemini request failed: Error 429, RESOURCE_EXHAUSTED")
		})},
		{name: "blank response", gen: GeneratorFunc(func(context.Context, Request) (string, error) {
			return " \n\t ", nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.gen, zap.NewNop())
			assert.Equal(t, wantFallback, a.Describe(context.Background(), contactText, schemas.TagLink, "https://example.com/contact"))
		})
	}
}

func TestAdapter_Describe_FailureIsLogged(t *testing.T) {
	logger, logs := setupObservedLogger(t)
	gen := GeneratorFunc(func(context.Context, Request) (string, error) {
		return "", errors.New("boom")
	})

	NewAdapter(gen, logger).Describe(context.Background(), "Docs", schemas.TagNav, "https://a.test/")

	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Description generation failed, using fallback.", warnings[0].Message)
	assert.Equal(t, "NAV", warnings[0].ContextMap()["tag"])
	assert.Equal(t, "boom", warnings[0].ContextMap()["error"])
}

func TestAdapter_Describe_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := GeneratorFunc(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := NewAdapter(gen, zap.NewNop(), WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := a.Describe(context.Background(), "Slow", schemas.TagButton, "https://a.test/")

	assert.Equal(t, "Navigation element: Slow", got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAdapter_Describe_TimeoutWithUncooperativeGenerator(t *testing.T) {
	release := make(chan struct{})
	gen := GeneratorFunc(func(context.Context, Request) (string, error) {
		<-release
		return "too late", nil
	})
	a := NewAdapter(gen, zap.NewNop(), WithTimeout(20*time.Millisecond))

	got := a.Describe(context.Background(), "Stuck", schemas.TagButton, "https://a.test/")
	assert.Equal(t, "Navigation element: Stuck", got)
	close(release)
}

func TestAdapter_Describe_RateLimited(t *testing.T) {
	var calls atomic.Int32
	gen := GeneratorFunc(func(context.Context, Request) (string, error) {
		calls.Add(1)
		return "ok", nil
	})
	// One token every 10s with a burst of one: the second call can't get a token
	// within its timeout and falls back without reaching the generator.
	a := NewAdapter(gen, zap.NewNop(), WithRateLimit(0.1), WithTimeout(50*time.Millisecond))

	assert.Equal(t, "ok", a.Describe(context.Background(), "First", schemas.TagLink, "u"))
	assert.Equal(t, "Navigation element: Second", a.Describe(context.Background(), "Second", schemas.TagLink, "u"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdapter_Describe_CanceledParent(t *testing.T) {
	gen := new(MockGenerator)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAdapter(gen, zap.NewNop(), WithRateLimit(1))
	assert.Equal(t, "Navigation element: Docs", a.Describe(ctx, "Docs", schemas.TagNav, "u"))
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestBuildRequest(t *testing.T) {
	req := BuildRequest("Pricing", schemas.TagLink, "https://example.com/pricing")
	assert.NotEmpty(t, req.SystemPrompt)
	assert.True(t, strings.HasPrefix(req.UserPrompt, "Analyze this navigation element and provide a brief, professional description (max 100 chars)"))
	assert.Contains(t, req.UserPrompt, "Element Text: Pricing")
	assert.Contains(t, req.UserPrompt, "Element Type: LINK")
	assert.Contains(t, req.UserPrompt, "Page URL: https://example.com/pricing")
}
