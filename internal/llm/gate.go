package llm

import (
	"context"
	"sync"
	"time"
)

// Gated paces calls to a Completer with a requests-per-minute token bucket.
type Gated struct {
	next Completer
	clk  func() time.Time

	mu    sync.Mutex
	cap   float64
	level float64
	rate  float64 // per second
	last  time.Time
}

// NewGated wraps next; rpm <= 0 disables pacing. clk defaults to time.Now.
func NewGated(next Completer, rpm int, clk func() time.Time) *Gated {
	if clk == nil {
		clk = time.Now
	}
	g := &Gated{next: next, clk: clk}
	if rpm > 0 {
		g.cap = float64(rpm)
		g.level = g.cap
		g.rate = g.cap / 60
		g.last = clk()
	}
	return g
}

func (g *Gated) Complete(ctx context.Context, r Request) (string, error) {
	if err := g.Wait(ctx); err != nil {
		return "", err
	}
	return g.next.Complete(ctx, r)
}

// Wait blocks until one request may be issued or ctx is done.
func (g *Gated) Wait(ctx context.Context) error {
	const minSleep = 10 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, ok := g.take()
		if ok {
			return nil
		}
		if d < minSleep {
			d = minSleep
		}
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}
}

// take consumes one request if available, otherwise returns the wait needed.
func (g *Gated) take() (time.Duration, bool) {
	if g.cap == 0 {
		return 0, true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clk()
	if now.After(g.last) {
		g.level += now.Sub(g.last).Seconds() * g.rate
		if g.level > g.cap {
			g.level = g.cap
		}
		g.last = now
	}
	if g.level >= 1 {
		g.level--
		return 0, true
	}
	return time.Duration((1 - g.level) / g.rate * float64(time.Second)), false
}

// Available is the number of whole requests that may be issued now.
func (g *Gated) Available() int {
	if g.cap == 0 {
		return -1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.level)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
