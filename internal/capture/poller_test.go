// internal/capture/poller_test.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

type pollFunc func(ctx context.Context) (schemas.PollResult, error)

func (f pollFunc) PollAndAnnotate(ctx context.Context) (schemas.PollResult, error) { return f(ctx) }

func TestPoller_RunsUntilCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	var cycles atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	target := pollFunc(func(context.Context) (schemas.PollResult, error) {
		if cycles.Add(1) == 3 {
			cancel()
		}
		return schemas.PollResult{NewEntries: 1, TotalEntries: int(cycles.Load())}, nil
	})

	done := make(chan error, 1)
	go func() { done <- NewPoller(target, 5*time.Millisecond, zap.NewNop()).Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, cycles.Load(), int32(3))
}

func TestPoller_LogsOutcomes(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	outcomes := []error{
		fmt.Errorf("poll: %w", schemas.ErrNoActiveSession),
		errors.New("failed to read captured events: target closed"),
		nil,
	}
	var i int
	var seen []error
	target := pollFunc(func(context.Context) (schemas.PollResult, error) {
		err := outcomes[i]
		i++
		if err != nil {
			return schemas.PollResult{}, err
		}
		return schemas.PollResult{NewEntries: 2, TotalEntries: 2}, nil
	})

	p := NewPoller(target, time.Second, zap.New(core))
	p.OnCycle = func(_ schemas.PollResult, err error) { seen = append(seen, err) }
	for range outcomes {
		p.tick(context.Background())
	}

	assert.Equal(t, 1, logs.FilterMessage("No active session; skipping capture cycle.").Len())
	assert.Equal(t, 1, logs.FilterMessage("Capture cycle failed.").Len())
	assert.Equal(t, 1, logs.FilterMessage("Captured new navigation entries.").Len())
	assert.Equal(t, outcomes, seen)
}

func TestPoller_RejectsNonPositiveInterval(t *testing.T) {
	err := NewPoller(pollFunc(nil), 0, nil).Run(context.Background())
	assert.Error(t, err)
}
