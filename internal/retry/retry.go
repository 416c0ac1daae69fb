// Package retry wraps a fallible remote call with bounded, classified retries.
//
// Rate-limited failures back off exponentially with jitter up to a cap,
// oversized-payload and permanent upstream failures (bad key, unknown
// model) are returned at once, and everything else is treated as
// transient with a linear backoff. A Scheduler carries no state
// between calls apart from its (locked) random source.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-marker/internal/llm"
)

// DefaultCap bounds any single rate-limit backoff.
const DefaultCap = 30 * time.Second

// DefaultAttemptTimeout bounds each individual attempt.
const DefaultAttemptTimeout = 2 * time.Minute

// Policy is static retry configuration.
type Policy struct {
	MaxRetries     int           // additional attempts after the first
	BaseDelay      time.Duration // unit for both backoff curves
	Jitter         time.Duration // upper bound (exclusive) of random jitter on rate-limit waits
	Cap            time.Duration // 0 means DefaultCap
	AttemptTimeout time.Duration // per attempt; 0 disables
}

// DefaultPolicy is what the marking engine uses unless configured otherwise.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      2 * time.Second,
		Jitter:         time.Second,
		Cap:            DefaultCap,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Kind classifies a failed attempt.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindTooLarge    Kind = "payload_too_large"
	KindTransient   Kind = "transient"
	KindFatal       Kind = "fatal"
)

// Classify maps an attempt error onto a Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, llm.ErrPayloadTooLarge):
		return KindTooLarge
	case errors.Is(err, llm.ErrMissingAPIKey):
		return KindFatal
	}
	var ue *llm.UpstreamError
	switch {
	case errors.As(err, &ue) && !ue.Temporary():
		return KindFatal
	default:
		return KindTransient
	}
}

// Event describes a scheduled retry.
type Event struct {
	Attempt int // zero-based index of the attempt that failed
	Kind    Kind
	Delay   time.Duration
	Err     error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSource injects the random source used for jitter.
func WithSource(src rand.Source) Option {
	return func(s *Scheduler) { s.rng = rand.New(src) }
}

// WithSleeper replaces the wait between attempts. The sleeper must honour ctx.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) { s.sleep = fn }
}

// WithObserver registers a callback invoked before every retry wait.
func WithObserver(fn func(Event)) Option {
	return func(s *Scheduler) { s.observe = fn }
}

// Scheduler runs operations under a Policy.
type Scheduler struct {
	mu      sync.Mutex
	rng     *rand.Rand
	sleep   func(ctx context.Context, d time.Duration) error
	observe func(Event)
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: Sleep,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run is Do for operations without a result value.
func (s *Scheduler) Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, s, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do calls op until it succeeds, fails fatally, or p.MaxRetries extra
// attempts have been spent.
func Do[T any](ctx context.Context, s *Scheduler, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := once(ctx, p, op)
		if err == nil {
			return v, nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return zero, cerr
		}
		kind := Classify(err)
		if kind == KindTooLarge || kind == KindFatal {
			return zero, err
		}
		if attempt >= p.MaxRetries {
			if attempt == 0 {
				return zero, err
			}
			return zero, fmt.Errorf("after %d attempts: %w", attempt+1, err)
		}
		d := s.Delay(p, attempt, kind)
		if s.observe != nil {
			s.observe(Event{Attempt: attempt, Kind: kind, Delay: d, Err: err})
		}
		if err := s.sleep(ctx, d); err != nil {
			return zero, err
		}
	}
}

func once[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	if p.AttemptTimeout <= 0 {
		return op(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return op(actx)
}

// Delay computes the wait after the given zero-based failed attempt.
func (s *Scheduler) Delay(p Policy, attempt int, kind Kind) time.Duration {
	if kind != KindRateLimited {
		return p.BaseDelay * time.Duration(attempt+1)
	}
	limit := p.Cap
	if limit <= 0 {
		limit = DefaultCap
	}
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > limit { // overflow guard as well
		return limit
	}
	d += s.jitter(p.Jitter)
	if d > limit {
		return limit
	}
	return d
}

func (s *Scheduler) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rng.Int63n(int64(max)))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
