package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/angas/tibberwatch-go/tibber"
)

const fetchTimeout = 10 * time.Second

// Fetcher is the upstream price source.
type Fetcher interface {
	FetchHomes(ctx context.Context) ([]tibber.RawHome, error)
}

type flight struct {
	done chan struct{}
	err  error
}

// Coordinator drives one fetch-and-compute cycle per refresh and holds
// the last published per-home snapshots. A refresh requested while one
// is already in flight is coalesced into the running one, so an older
// fetch can never clobber a newer result.
type Coordinator struct {
	logger  *slog.Logger
	fetcher Fetcher

	flightMu sync.Mutex
	flight   *flight

	mu          sync.RWMutex
	params      Params
	data        map[string]Snapshot
	lastSuccess time.Time
	stale       bool
	listeners   []func(map[string]Snapshot)

	// now is the evaluation clock, replaceable in tests.
	now func() time.Time
}

func New(logger *slog.Logger, fetcher Fetcher, params Params) *Coordinator {
	return &Coordinator{
		logger:  logger,
		fetcher: fetcher,
		params:  params,
		now:     time.Now,
	}
}

// OnUpdate registers a hook that runs after every successful publish
// with the freshly published snapshots. Hooks run on the refreshing
// goroutine, after the publish itself.
func (c *Coordinator) OnUpdate(fn func(map[string]Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SetParams swaps the analytics parameters. They take effect on the
// next refresh cycle.
func (c *Coordinator) SetParams(p Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = p
}

// Data returns the currently published home snapshots, or nil when no
// cycle has succeeded yet.
func (c *Coordinator) Data() map[string]Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil
	}
	snapshots := make(map[string]Snapshot, len(c.data))
	for id, s := range c.data {
		snapshots[id] = s
	}
	return snapshots
}

func (c *Coordinator) Home(id string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.data[id]
	return s, ok
}

// FirstHome returns the snapshot with the lexically smallest home id,
// the default subject for account-level service calls.
func (c *Coordinator) FirstHome() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var first Snapshot
	found := false
	for id, s := range c.data {
		if !found || id < first.HomeID {
			first = s
			found = true
		}
	}
	return first, found
}

func (c *Coordinator) LastSuccess() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

// IsStale reports whether the published data survived one or more
// failed refresh cycles.
func (c *Coordinator) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// Refresh runs one cycle, or waits for the in-flight one and adopts
// its outcome.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.flightMu.Lock()
	if fl := c.flight; fl != nil {
		c.flightMu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	fl := &flight{done: make(chan struct{})}
	c.flight = fl
	c.flightMu.Unlock()

	fl.err = c.refresh(ctx)

	c.flightMu.Lock()
	c.flight = nil
	c.flightMu.Unlock()
	close(fl.done)

	return fl.err
}

func (c *Coordinator) refresh(ctx context.Context) error {
	c.logger.Debug("refreshing price data...")

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	rawHomes, err := c.fetcher.FetchHomes(fetchCtx)
	if err != nil {
		var authErr *tibber.AuthError
		if errors.As(err, &authErr) {
			// Never masked by stale data, the token must be renewed.
			return err
		}
		return c.keepOrFail(fmt.Errorf("fetching price data: %w", err))
	}

	if len(rawHomes) == 0 {
		return c.keepOrFail(fmt.Errorf("no homes found in tibber account"))
	}

	c.mu.RLock()
	params := c.params
	previous := c.data
	c.mu.RUnlock()

	now := c.now()
	snapshots := make(map[string]Snapshot, len(rawHomes))
	for _, raw := range rawHomes {
		home, err := raw.Home()
		if err != nil {
			// One malformed home must never abort the others.
			if prev, ok := previous[raw.Id]; ok {
				c.logger.Warn("keeping last valid data for malformed home",
					slog.String("homeId", raw.Id), slog.Any("error", err))
				snapshots[raw.Id] = prev
			} else {
				c.logger.Warn("skipping malformed home", slog.Any("error", err))
			}
			continue
		}
		snapshots[home.ID] = buildSnapshot(home, params, now)
	}

	if len(snapshots) == 0 {
		return c.keepOrFail(fmt.Errorf("no homes could be processed"))
	}

	if err := ctx.Err(); err != nil {
		// Torn down mid-flight, don't publish a partial cycle.
		return err
	}

	c.mu.Lock()
	c.data = snapshots
	c.lastSuccess = now
	c.stale = false
	listeners := c.listeners
	c.mu.Unlock()

	c.logger.Info("price data refreshed", slog.Int("noOfHomes", len(snapshots)))

	for _, fn := range listeners {
		fn(snapshots)
	}

	return nil
}

// keepOrFail applies the whole-cycle staleness fallback: with a prior
// snapshot the cycle ends quietly on stale data, without one it fails.
func (c *Coordinator) keepOrFail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data != nil {
		c.logger.Warn("refresh failed, keeping last valid data", slog.Any("error", err))
		c.stale = true
		return nil
	}
	return err
}
