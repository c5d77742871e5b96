package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// ClientBudget tracks per-client request counts within fixed time windows.
type ClientBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewClientBudget creates a budget limiter.
// maxPerWindow limits calls per (clientID, route) within windowSize;
// maxPerWindow <= 0 disables the budget.
func NewClientBudget(maxPerWindow int, windowSize time.Duration) *ClientBudget {
	return &ClientBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(clientID, route string) string {
	return clientID + "|" + route
}

// Check returns an error if the client has exhausted its budget for route.
func (b *ClientBudget) Check(clientID, route string) error {
	if b.maxPerWindow <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	wc, ok := b.counts[budgetKey(clientID, route)]
	if !ok || b.now().After(wc.windowEnd) {
		return nil // no window or expired window
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("request budget exceeded: client %s route %s (%d/%d in window)",
			clientID, route, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record counts one request by the client.
func (b *ClientBudget) Record(clientID, route string) {
	if b.maxPerWindow <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(clientID, route)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}

// RetryAfter reports how long until the client's current window for route
// resets. It is zero when there is no open window.
func (b *ClientBudget) RetryAfter(clientID, route string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	wc, ok := b.counts[budgetKey(clientID, route)]
	if !ok {
		return 0
	}
	if d := wc.windowEnd.Sub(b.now()); d > 0 {
		return d
	}
	return 0
}
