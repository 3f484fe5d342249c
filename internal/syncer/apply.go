package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/sethvargo/go-retry"
)

// ErrNotConverged is returned when a bounded ApplyPendingEvents run exceeds
// its pass budget while the server still reports pending events.
var ErrNotConverged = errors.New("sync did not converge within pass budget")

// ApplyPendingEvents drives the engine for one share until the server
// reports no more pending events. Invocations for the same share are
// serialized; different shares may sync in parallel.
type ApplyPendingEvents struct {
	engine *Engine
	api    client.Client
	log    logging.Logger

	// maxPasses bounds the number of engine passes per invocation.
	// Zero means unbounded: the loop relies on each batch strictly
	// advancing the server-side cursor.
	maxPasses int

	mu         sync.Mutex
	shareLocks map[string]*sync.Mutex
}

// Option configures an ApplyPendingEvents orchestrator.
type Option func(*ApplyPendingEvents)

// WithMaxPasses bounds the number of engine passes per invocation.
func WithMaxPasses(n int) Option {
	return func(a *ApplyPendingEvents) { a.maxPasses = n }
}

// NewApplyPendingEvents builds the orchestrator.
func NewApplyPendingEvents(engine *Engine, api client.Client, log logging.Logger, opts ...Option) *ApplyPendingEvents {
	a := &ApplyPendingEvents{
		engine:     engine,
		api:        api,
		log:        log,
		shareLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ApplyPendingEvents) lockShare(shareID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.shareLocks[shareID]
	if !ok {
		lock = &sync.Mutex{}
		a.shareLocks[shareID] = lock
	}
	return lock
}

// Invoke resolves the user's primary address and loops the engine until a
// batch reports eventsPending=false. Transient transport failures within a
// pass are retried with bounded exponential backoff; persistent failures
// surface to the caller, who retries on its next invocation.
func (a *ApplyPendingEvents) Invoke(ctx context.Context, userID, shareID string) error {
	lock := a.lockShare(shareID)
	lock.Lock()
	defer lock.Unlock()

	addr, err := a.api.GetPrimaryAddress(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolving primary address: %w", err)
	}

	for pass := 1; ; pass++ {
		if a.maxPasses > 0 && pass > a.maxPasses {
			return fmt.Errorf("share %s: %w", shareID, ErrNotConverged)
		}

		// backoff state is per pass, so each pass gets the full retry budget
		backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))

		var pending bool
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var err error
			pending, err = a.engine.SyncShare(ctx, userID, addr, shareID)
			if errors.Is(err, client.ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			return err
		}

		if !pending {
			a.log.Debug(ctx, "share converged", "share_id", shareID, "passes", pass)
			return nil
		}
	}
}
