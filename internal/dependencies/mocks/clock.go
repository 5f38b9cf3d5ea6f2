package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/resonance/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers never fire on their own; call Tick to deliver a tick to every
// active ticker.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// NewTicker creates a manually driven ticker
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{Interval: d, ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances the clock by one interval of each active ticker and delivers
// a tick to it. It blocks until every active ticker's tick has been received.
func (c *MockClock) Tick() {
	c.mu.Lock()
	active := c.activeLocked()
	c.mu.Unlock()

	for _, t := range active {
		c.Advance(t.Interval)
		t.ch <- c.Now()
	}
}

// ActiveTickers returns the number of tickers that have not been stopped
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.activeLocked())
}

// TickersCreated returns the total number of tickers ever created
func (c *MockClock) TickersCreated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *MockClock) activeLocked() []*MockTicker {
	var active []*MockTicker
	for _, t := range c.tickers {
		if !t.Stopped() {
			active = append(active, t)
		}
	}
	return active
}

// MockTicker is a ticker driven by MockClock.Tick
type MockTicker struct {
	Interval time.Duration

	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop marks the ticker as stopped
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop has been called
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
