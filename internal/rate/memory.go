package rate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const sweepEvery = 1024

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryGate keeps counters in process memory.
type MemoryGate struct {
	rules Rules
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window
	calls   int
}

// NewMemoryGate returns a process-local gate. now may be nil.
func NewMemoryGate(rules Rules, now func() time.Time) *MemoryGate {
	if now == nil {
		now = time.Now
	}
	return &MemoryGate{
		rules:   rules,
		now:     now,
		windows: make(map[string]*window),
	}
}

// Admit counts the request and reports whether it fits in the window.
func (g *MemoryGate) Admit(_ context.Context, class Class, key string) (Decision, error) {
	rule, ok := g.rules[class]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	k := string(class) + ":" + key
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.calls%sweepEvery == 0 {
		g.sweep(now)
	}

	w, ok := g.windows[k]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rule.Window)}
		g.windows[k] = w
	}
	w.count++

	return decide(rule, w.count, w.resetAt.Sub(now)), nil
}

func (g *MemoryGate) sweep(now time.Time) {
	for k, w := range g.windows {
		if !now.Before(w.resetAt) {
			delete(g.windows, k)
		}
	}
}
