// Package ratelimit enforces a minimum interval between outbound NVD
// catalog calls and memoizes their responses with a TTL.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMinInterval matches the catalog's unauthenticated budget of
// roughly 5 requests per 30 seconds.
const DefaultMinInterval = 6 * time.Second

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 5 * time.Minute

// Clock abstracts time.Now so tests can drive the limiter without real
// sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Fetcher performs the actual upstream call once the gate admits it.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	payload    any
	insertedAt time.Time
}

// Limiter serializes outbound calls behind a minimum interval and
// caches their results for a TTL window. The zero value is not usable;
// construct with New.
type Limiter struct {
	mu            sync.Mutex
	clock         Clock
	minInterval   time.Duration
	ttl           time.Duration
	lastRequestAt time.Time
	cache         map[string]entry
	log           *logrus.Entry
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the wall clock, used in tests.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithMinInterval overrides DefaultMinInterval.
func WithMinInterval(d time.Duration) Option {
	return func(l *Limiter) { l.minInterval = d }
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(l *Limiter) { l.ttl = d }
}

// WithLogger attaches a structured logger; the logrus standard logger
// is used when omitted.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Limiter) { l.log = log }
}

// New builds a Limiter ready for concurrent use.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		clock:       systemClock{},
		minInterval: DefaultMinInterval,
		ttl:         DefaultTTL,
		cache:       make(map[string]entry),
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do returns the cached payload for key if it is still fresh;
// otherwise it blocks until the minimum interval has elapsed since the
// last outbound call, invokes fetch, caches the result, and returns
// it. Cancellation via ctx aborts the wait or the fetch and rolls back
// the reserved slot if the wait never completed, so a cancelled caller
// never leaves lastRequestAt pushed into the future on a call that
// never happened, and without writing a cache entry.
func (l *Limiter) Do(ctx context.Context, key string, fetch Fetcher) (any, error) {
	if cached, ok := l.lookupFresh(key); ok {
		l.log.WithField("cacheKey", key).Debug("ratelimit: cache hit")
		return cached, nil
	}

	wait, rollback, err := l.reserveSlot(ctx)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			rollback()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	l.store(key, payload)
	return payload, nil
}

func (l *Limiter) lookupFresh(key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.cache[key]
	if !ok {
		return nil, false
	}
	if l.clock.Now().Sub(e.insertedAt) >= l.ttl {
		delete(l.cache, key)
		return nil, false
	}
	return e.payload, true
}

// reserveSlot computes how long the caller must wait, and commits
// lastRequestAt to that future point before returning — the "update
// before the outbound call" rule that makes concurrent callers
// serialize into a FIFO instead of racing on the same window. The
// returned rollback restores lastRequestAt to its pre-reservation
// value if this caller's wait is abandoned, but only if no later
// caller has since built on top of this reservation.
func (l *Limiter) reserveSlot(ctx context.Context) (time.Duration, func(), error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	previous := l.lastRequestAt
	earliest := previous.Add(l.minInterval)
	if earliest.Before(now) {
		earliest = now
	}
	l.lastRequestAt = earliest

	rollback := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.lastRequestAt.Equal(earliest) {
			l.lastRequestAt = previous
		}
	}
	return earliest.Sub(now), rollback, nil
}

func (l *Limiter) store(key string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = entry{payload: payload, insertedAt: l.clock.Now()}
}

// Fingerprint builds the cache key: a canonical pairing of the
// exact-CPE query and the keyword query, either half left empty when
// unused.
func Fingerprint(exactCpe, keyword string) string {
	return exactCpe + "\x00" + keyword
}
