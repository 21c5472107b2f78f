package schemas

import (
	"context"
)

// -- Browser Interfaces --

// BrowserHandle is a single controllable browser instance (one tab).
type BrowserHandle interface {
	// ID identifies the handle in logs.
	ID() string
	// Navigate loads url in the handle's tab.
	Navigate(ctx context.Context, url string) error
	// EvaluateScript runs source in the current document and unmarshals the result
	// into res. A nil res discards the result.
	EvaluateScript(ctx context.Context, source string, res interface{}) error
	// Terminate closes the tab and the browser process. Safe to call more than once.
	Terminate(ctx context.Context) error
}

// Launcher acquires new browser handles.
type Launcher interface {
	Acquire(ctx context.Context) (BrowserHandle, error)
}

// -- Page Event Store --

// EventLog abstracts the two append-only logs kept in the page's transient storage.
type EventLog interface {
	// ReadRaw returns the full raw event log, in capture order.
	ReadRaw(ctx context.Context) ([]CapturedEvent, error)
	// ReadProcessed returns every identity already turned into a record.
	ReadProcessed(ctx context.Context) ([]EventIdentity, error)
	// AppendRaw appends a captured event to the raw log.
	AppendRaw(ctx context.Context, ev CapturedEvent) error
	// AppendProcessedBatch appends identities to the processed log in one write.
	AppendProcessedBatch(ctx context.Context, ids []EventIdentity) error
}

// Injector installs the page click listener.
type Injector interface {
	// Inject installs the listener if absent. It reports false when installation failed.
	Inject(ctx context.Context) (bool, error)
}

// -- Annotation --

// Annotator produces a short description of a captured element. Implementations
// never return an error; failures degrade to a fallback description.
type Annotator interface {
	Describe(ctx context.Context, text string, tag ElementTag, url string) string
}
