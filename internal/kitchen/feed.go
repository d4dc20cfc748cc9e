package kitchen

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Source lists the ticket collection for one day. The production
// implementation is the backend REST client.
type Source interface {
	ListTickets(ctx context.Context, day time.Time) ([]Ticket, error)
}

// FeedConfig tunes the feed's timers. Zero values pick the defaults.
type FeedConfig struct {
	// Debounce coalesces bursts of push notifications into one fetch.
	Debounce time.Duration
	// Poll is the unconditional re-fetch interval. It runs regardless of
	// push-channel health as a safety net.
	Poll time.Duration
	// OnUpdate, when set, is called from the feed goroutine with each new
	// snapshot.
	OnUpdate func([]Ticket)
}

const (
	defaultDebounce = 350 * time.Millisecond
	defaultPoll     = 30 * time.Second
)

// Feed owns the board snapshot. Push events arriving through Notify are a
// freshness hint only: every update is one authoritative full re-fetch, and
// the last response wins wholesale. A failed fetch keeps the previous
// snapshot on screen.
type Feed struct {
	source   Source
	debounce time.Duration
	poll     time.Duration
	onUpdate func([]Ticket)

	notify  chan struct{}
	refresh chan struct{}

	mu      sync.RWMutex
	day     time.Time
	tickets []Ticket
	lastErr error
}

// NewFeed creates a feed over a ticket source, initially filtered to the
// given day.
func NewFeed(source Source, day time.Time, cfg FeedConfig) *Feed {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Poll <= 0 {
		cfg.Poll = defaultPoll
	}
	return &Feed{
		source:   source,
		debounce: cfg.Debounce,
		poll:     cfg.Poll,
		onUpdate: cfg.OnUpdate,
		notify:   make(chan struct{}, 1),
		refresh:  make(chan struct{}, 1),
		day:      day,
	}
}

// Notify signals that something changed on the backend. Safe from any
// goroutine; bursts coalesce into a single re-fetch after the debounce
// window.
func (f *Feed) Notify() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// RefreshNow requests an immediate re-fetch outside the debounce window,
// used on push-channel reconnect.
func (f *Feed) RefreshNow() {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// SetDay switches the active date filter and refreshes.
func (f *Feed) SetDay(day time.Time) {
	f.mu.Lock()
	f.day = day
	f.mu.Unlock()
	f.RefreshNow()
}

// Snapshot returns a copy of the current ticket collection.
func (f *Feed) Snapshot() []Ticket {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out
}

// Err returns the error of the most recent fetch, nil after a clean one.
func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// Run drives the feed until the context is cancelled. It performs one
// initial fetch, then serves debounced push notifications, immediate
// refresh requests, and the unconditional poll ticker from a single
// goroutine. All timers stop with the context.
func (f *Feed) Run(ctx context.Context) error {
	f.fetch(ctx)

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	debounce := time.NewTimer(f.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-f.notify:
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(f.debounce)

		case <-debounce.C:
			f.fetch(ctx)

		case <-f.refresh:
			f.fetch(ctx)

		case <-ticker.C:
			f.fetch(ctx)
		}
	}
}

func (f *Feed) fetch(ctx context.Context) {
	f.mu.RLock()
	day := f.day
	f.mu.RUnlock()

	tickets, err := f.source.ListTickets(ctx, day)

	f.mu.Lock()
	if err != nil {
		// Stale-but-present beats a blank board.
		f.lastErr = fmt.Errorf("refresh tickets: %w", err)
		f.mu.Unlock()
		return
	}
	f.lastErr = nil
	f.tickets = tickets
	cb := f.onUpdate
	f.mu.Unlock()

	if cb != nil {
		cb(tickets)
	}
}
