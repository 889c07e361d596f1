package usecase

import (
	"sync"
	"time"
)

// SendGate enforces the daily and hourly send ceilings. Check-and-reserve is
// a single guarded operation so concurrent dispatch workers cannot overshoot
// the limits between a check and the increment.
//
// "Today" is the calendar date; "last hour" is a rolling window.
type SendGate struct {
	mu          sync.Mutex
	dailyLimit  int
	hourlyLimit int
	sends       []time.Time
	now         func() time.Time
}

// NewSendGate seeds the gate with prior send timestamps (from the message
// store) so restarts don't reset the ceilings.
func NewSendGate(dailyLimit, hourlyLimit int, seed []time.Time) *SendGate {
	g := &SendGate{
		dailyLimit:  dailyLimit,
		hourlyLimit: hourlyLimit,
		now:         time.Now,
	}
	g.sends = append(g.sends, seed...)
	return g
}

// TryAcquire reserves one send slot. Returns false, leaving the counters
// unchanged, when either ceiling is already met.
func (g *SendGate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	daily, hourly := g.counts(now)
	if daily >= g.dailyLimit || hourly >= g.hourlyLimit {
		return false
	}

	g.sends = append(g.sends, now)
	return true
}

// Release returns the most recent reservation, used when the transport call
// fails: failed sends do not consume budget.
func (g *SendGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n := len(g.sends); n > 0 {
		g.sends = g.sends[:n-1]
	}
}

// Counts reports the current sent-today and sent-last-hour tallies.
func (g *SendGate) Counts() (daily, hourly int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts(g.now())
}

func (g *SendGate) counts(now time.Time) (daily, hourly int) {
	y, m, d := now.Date()
	hourAgo := now.Add(-time.Hour)

	for _, t := range g.sends {
		ty, tm, td := t.Date()
		if ty == y && tm == m && td == d {
			daily++
		}
		if t.After(hourAgo) {
			hourly++
		}
	}
	return daily, hourly
}

// prune drops timestamps that can no longer affect either window.
func (g *SendGate) prune(now time.Time) {
	cutoff := now.Add(-25 * time.Hour)
	kept := g.sends[:0]
	for _, t := range g.sends {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.sends = kept
}
