// internal/capture/coordinator.go
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/instrument"
)

// DefaultConcurrency bounds concurrent annotation calls within one poll cycle.
const DefaultConcurrency = 4

// HandleSource hands out the active browser handle. The session controller
// implements it.
type HandleSource interface {
	Handle() (schemas.BrowserHandle, error)
}

// Page is the instrumented view of the active tab: listener injection plus the two
// in-page logs.
type Page interface {
	schemas.Injector
	schemas.EventLog
}

// PageBinder builds the Page for a handle.
type PageBinder func(h schemas.BrowserHandle) Page

// RecordSink is the part of the record store the coordinator writes to.
type RecordSink interface {
	Generation() uint64
	AppendBatch(generation uint64, records []schemas.NavigationRecord) (appended int, committed bool)
	Len() int
}

// Coordinator turns the raw click log of the active page into navigation records.
// PollAndAnnotate calls are serialized.
type Coordinator struct {
	mu sync.Mutex

	session     HandleSource
	bind        PageBinder
	annotator   schemas.Annotator
	store       RecordSink
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPageBinder replaces the default instrument.Page binding.
func WithPageBinder(b PageBinder) Option {
	return func(c *Coordinator) { c.bind = b }
}

// WithConcurrency sets how many annotation calls run in parallel.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(session HandleSource, store RecordSink, annotator schemas.Annotator, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		session:     session,
		annotator:   annotator,
		store:       store,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      logger.Named("capture"),
	}
	c.bind = func(h schemas.BrowserHandle) Page { return instrument.NewPage(h, logger) }
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PollAndAnnotate runs one capture cycle: re-inject the listener, read both logs,
// annotate every event whose identity hasn't been processed, append the records in
// raw-log order and mark their identities processed in one batch.
//
// Read failures, an idle session and a ctx canceled mid-cycle leave everything
// untouched. If the processed
// log can't be written after the records were appended, the error is returned; the
// next cycle sees the same events again and the store drops the duplicates.
func (c *Coordinator) PollAndAnnotate(ctx context.Context) (schemas.PollResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handle, err := c.session.Handle()
	if err != nil {
		return schemas.PollResult{}, err
	}
	page := c.bind(handle)

	// The user may have navigated since the last cycle, which drops the listener.
	if _, err := page.Inject(ctx); err != nil {
		c.logger.Warn("Listener re-injection failed; reading logs anyway.", zap.Error(err))
	}

	raw, err := page.ReadRaw(ctx)
	if err != nil {
		return schemas.PollResult{}, fmt.Errorf("failed to read captured events: %w", err)
	}
	processed, err := page.ReadProcessed(ctx)
	if err != nil {
		return schemas.PollResult{}, fmt.Errorf("failed to read processed identities: %w", err)
	}

	generation := c.store.Generation()
	fresh := selectUnprocessed(raw, processed)
	if len(fresh) == 0 {
		return schemas.PollResult{TotalEntries: c.store.Len()}, nil
	}

	c.logger.Debug("Annotating new navigation events.",
		zap.Int("new", len(fresh)),
		zap.Int("raw", len(raw)),
		zap.Int("processed", len(processed)))
	records := c.annotate(ctx, fresh)

	// A canceled cycle may hold fallback descriptions for calls it cut short. Leave the
	// events unprocessed so the next cycle annotates them properly.
	if err := ctx.Err(); err != nil {
		return schemas.PollResult{}, fmt.Errorf("capture cycle canceled during annotation: %w", err)
	}

	// Stop may have terminated the handle while we were annotating.
	if current, err := c.session.Handle(); err != nil || current != handle {
		return schemas.PollResult{}, fmt.Errorf("%w: session ended during capture", schemas.ErrNoActiveSession)
	}

	appended, committed := c.store.AppendBatch(generation, records)

	ids := make([]schemas.EventIdentity, len(fresh))
	for i, ev := range fresh {
		ids[i] = ev.Identity()
	}
	if err := page.AppendProcessedBatch(ctx, ids); err != nil {
		c.logger.Error("Failed to mark events processed; they will be retried.", zap.Int("events", len(ids)), zap.Error(err))
		return schemas.PollResult{NewEntries: appended, TotalEntries: c.store.Len()}, fmt.Errorf("failed to mark %d events processed: %w", len(ids), err)
	}

	result := schemas.PollResult{NewEntries: appended, TotalEntries: c.store.Len()}
	c.logger.Info("Capture cycle complete.",
		zap.Int("new_entries", result.NewEntries),
		zap.Int("total_entries", result.TotalEntries),
		zap.Bool("committed", committed))
	return result, nil
}

// annotate describes every event concurrently and returns the records in input order.
func (c *Coordinator) annotate(ctx context.Context, events []schemas.CapturedEvent) []schemas.NavigationRecord {
	records := make([]schemas.NavigationRecord, len(events))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ev := range events {
		g.Go(func() error {
			desc := c.annotator.Describe(groupCtx, ev.Text, ev.ElementTag(), ev.DisplayURL())
			records[i] = schemas.NewNavigationRecord(ev, desc, c.now())
			return nil
		})
	}
	// Describe never fails, so Wait only synchronizes.
	_ = g.Wait()
	return records
}

// selectUnprocessed keeps raw events, in order, whose identity is neither processed
// nor repeated earlier in the same batch.
func selectUnprocessed(raw []schemas.CapturedEvent, processed []schemas.EventIdentity) []schemas.CapturedEvent {
	seen := make(map[schemas.EventIdentity]struct{}, len(processed)+len(raw))
	for _, id := range processed {
		seen[id] = struct{}{}
	}
	var fresh []schemas.CapturedEvent
	for _, ev := range raw {
		id := ev.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, ev)
	}
	return fresh
}
