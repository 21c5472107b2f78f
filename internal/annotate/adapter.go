// internal/annotate/adapter.go
package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// DefaultTimeout bounds a single Describe call when none is configured.
const DefaultTimeout = 10 * time.Second

// errEmptyDescription marks a generator reply with nothing usable in it.
var errEmptyDescription = errors.New("generator returned an empty description")

// Adapter wraps a Generator with a per-call timeout, a client-side rate limit and
// the fallback policy. It never fails: any problem yields FallbackDescription.
type Adapter struct {
	gen     Generator
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ schemas.Annotator = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout sets the per-call bound. Waiting for the rate limiter counts against it.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRateLimit allows rps calls per second with a burst of one. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(a *Adapter) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			a.limiter = nil
		}
	}
}

// NewAdapter creates an Adapter. A nil generator is valid: every description is the fallback.
func NewAdapter(gen Generator, logger *zap.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  logger.Named("annotate"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Describe returns a description of the element, at most schemas.MaxDescriptionLen runes.
func (a *Adapter) Describe(ctx context.Context, text string, tag schemas.ElementTag, url string) string {
	if a.gen == nil {
		return FallbackDescription(text)
	}

	start := time.Now()
	desc, err := a.generate(ctx, BuildRequest(text, tag, url))
	if err != nil {
		a.logger.Warn("Description generation failed, using fallback.",
			zap.String("element", schemas.Truncate(text, schemas.FallbackTextLen)),
			zap.String("tag", string(tag)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return FallbackDescription(text)
	}

	a.logger.Debug("Element described.", zap.String("tag", string(tag)), zap.Duration("elapsed", time.Since(start)))
	return schemas.Truncate(desc, schemas.MaxDescriptionLen)
}

type generation struct {
	text string
	err  error
}

// generate runs the generator under the timeout. The result channel is buffered so a
// generator that ignores ctx can still finish and exit after we've given up on it.
func (a *Adapter) generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	done := make(chan generation, 1)
	go func() {
		text, err := a.gen.Generate(ctx, req)
		done <- generation{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", errEmptyDescription
		}
		return text, nil
	}
}
