package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/five82/patrol/internal/state"
	"github.com/five82/patrol/internal/violations"
)

// DefaultInterval is the period between automatic refreshes.
const DefaultInterval = 10 * time.Second

const listKey = "list"

// Status is the poller's externally visible state.
type Status struct {
	InFlight            bool
	LastError           error
	LastAttempt         time.Time
	ConsecutiveFailures int
}

// IsOffline reports whether the collection has been unreachable for multiple polls.
func (s Status) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Poller keeps a Store in sync with the remote collection.
type Poller struct {
	client   violations.Lister
	store    *state.Store
	log      zerolog.Logger
	interval time.Duration

	group    singleflight.Group
	inFlight atomic.Bool
	starts   atomic.Uint64 // fetches begun so far

	mu       sync.Mutex
	lastErr  error
	attempt  time.Time
	failures int

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Poller. A non-positive interval uses DefaultInterval.
func New(client violations.Lister, store *state.Store, log zerolog.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		store:    store,
		log:      log.With().Str("component", "poller").Logger(),
		interval: interval,
	}
}

// Interval returns the automatic refresh period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Refresh fetches the collection and replaces the store on success. If a fetch
// is already running, Refresh waits for it and returns its result instead of
// issuing a second request, so responses can never land out of order.
func (p *Poller) Refresh(ctx context.Context) error {
	_, err := p.refresh(ctx)
	return err
}

// refresh returns the start number of the fetch whose result it reports.
func (p *Poller) refresh(ctx context.Context) (uint64, error) {
	v, err, _ := p.group.Do(listKey, func() (any, error) {
		gen := p.starts.Add(1)
		return gen, p.fetch(ctx)
	})
	gen, _ := v.(uint64)
	return gen, err
}

// Resync returns once a fetch that began after the call has finished. A fetch
// already running may predate a write the caller just made, so joining it is
// not enough.
func (p *Poller) Resync(ctx context.Context) error {
	after := p.starts.Load()
	for {
		gen, err := p.refresh(ctx)
		if gen > after || ctx.Err() != nil {
			return err
		}
	}
}

func (p *Poller) fetch(ctx context.Context) error {
	p.inFlight.Store(true)
	defer p.inFlight.Store(false)

	started := time.Now()
	records, err := p.client.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempt = started

	if err != nil {
		if p.store.Closed() || errors.Is(ctx.Err(), context.Canceled) {
			// Shutting down; nobody is left to show the error.
			return err
		}
		p.lastErr = err
		p.failures++
		p.log.Warn().Err(err).Int("consecutive_failures", p.failures).Msg("poll failed")
		return err
	}

	if !p.store.Replace(records) {
		p.log.Debug().Int("records", len(records)).Msg("store closed, discarding fetch")
		return nil
	}
	if p.failures > 0 {
		p.log.Info().Int("after_failures", p.failures).Msg("poll recovered")
	}
	p.lastErr = nil
	p.failures = 0
	p.log.Debug().
		Int("records", len(records)).
		Dur("took", time.Since(started)).
		Msg("snapshot replaced")
	return nil
}

// Status returns a copy of the poller state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		InFlight:            p.inFlight.Load(),
		LastError:           p.lastErr,
		LastAttempt:         p.attempt,
		ConsecutiveFailures: p.failures,
	}
}

// DismissError hides the current error indicator until the next failure.
func (p *Poller) DismissError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = nil
}

// Start refreshes once immediately and then on every interval until ctx is
// cancelled or Stop is called. Ticks fire whether or not the previous refresh
// finished; Refresh itself prevents overlapping requests. Calling Start on a
// running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.loopMu.Lock()
	defer p.loopMu.Unlock()
	if p.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(loopCtx, p.done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// A refresh outlives cancellation of the trigger; a closed store discards
	// its result.
	fetchCtx := context.WithoutCancel(ctx)
	trigger := func() {
		go func() { _ = p.Refresh(fetchCtx) }()
	}

	trigger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			trigger()
		}
	}
}

// Stop cancels the periodic trigger and waits for the loop to exit. A refresh
// already in flight is left to finish on its own. Safe to call more than once.
func (p *Poller) Stop() {
	p.loopMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
