// Package ratelimit paces outbound page fetches so the target site sees a
// human-like request rhythm: a hard cap per sliding window plus a jittered
// minimum delay between consecutive admissions.
//
// This is deliberately not a token bucket. The contract is "consecutive
// admissions at least MinDelay apart, never more than MaxPerWindow in any
// sliding window" — a token bucket allows back-to-back admissions whenever
// tokens are banked, which is exactly the burst pattern this limiter exists
// to break.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ByteMe6/rozetka-scrapper/config"
)

// Limiter admits callers one at a time. The admission mutex is held across
// the wait so two callers can never compute their delay from the same
// history snapshot.
type Limiter struct {
	mu      sync.Mutex
	history []time.Time

	window       time.Duration
	maxPerWindow int
	minDelay     time.Duration
	jitterMin    time.Duration
	jitterMax    time.Duration
}

// New creates a Limiter from pacing configuration.
func New(cfg config.PacingConfig) *Limiter {
	return &Limiter{
		window:       cfg.Window,
		maxPerWindow: cfg.MaxPerWindow,
		minDelay:     cfg.MinDelay,
		jitterMin:    cfg.JitterMin,
		jitterMax:    cfg.JitterMax,
	}
}

// Admit blocks until the caller may proceed, then records the admission.
// It returns early with ctx.Err() if the context is canceled while waiting.
func (l *Limiter) Admit(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.prune(now)

	var wait time.Duration
	if n := len(l.history); n > 0 {
		if delta := now.Sub(l.history[n-1]); delta < l.minDelay {
			wait = l.minDelay - delta + l.jitter()
		}
	}

	// Window full: wait until the oldest admission falls out of it.
	if len(l.history) >= l.maxPerWindow {
		if penalty := l.history[0].Add(l.window).Sub(now) + l.jitter(); penalty > wait {
			wait = penalty
		}
	}

	if wait > 0 {
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		l.prune(time.Now())
	}

	l.history = append(l.history, time.Now())
	return nil
}

// InWindow reports how many admissions are currently inside the sliding
// window. Used by health reporting and tests.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(time.Now())
	return len(l.history)
}

// prune drops history entries older than the window. Caller holds mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.history) && !l.history[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.history = append(l.history[:0], l.history[i:]...)
	}
}

func (l *Limiter) jitter() time.Duration {
	if l.jitterMax <= l.jitterMin {
		return l.jitterMin
	}
	return l.jitterMin + time.Duration(rand.Int63n(int64(l.jitterMax-l.jitterMin)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
