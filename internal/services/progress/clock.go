package progress

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/resonance/internal/dependencies/clock"
	"github.com/mcoot/resonance/internal/model"
)

// Interval is the playback tick period
const Interval = time.Second

// Clock drives playback forward once per interval while running. At most one
// ticker is active at a time.
type Clock struct {
	clock    clock.Clock
	interval time.Duration
	onTick   func()
	logger   *slog.Logger

	mu     sync.Mutex
	runID  uint64
	ticker clock.Ticker
	stop   chan struct{}
}

// New creates a stopped Clock that calls onTick on every tick
func New(clk clock.Clock, interval time.Duration, onTick func(), logger *slog.Logger) *Clock {
	return &Clock{
		clock:    clk,
		interval: interval,
		onTick:   onTick,
		logger:   logger.With(slog.String("component", "progress")),
	}
}

// Start begins ticking. It does nothing when already running.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker != nil {
		return
	}

	c.runID++
	c.ticker = c.clock.NewTicker(c.interval)
	c.stop = make(chan struct{})
	go c.run(c.runID, c.ticker, c.stop)

	c.logger.Debug("progress clock started", slog.Uint64("run", c.runID))
}

// Stop cancels the current run without waiting for it to exit, so it is safe
// to call from inside onTick. Ticks already in flight for the stopped run are
// dropped.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker == nil {
		return
	}

	close(c.stop)
	c.ticker.Stop()
	c.ticker = nil
	c.stop = nil

	c.logger.Debug("progress clock stopped", slog.Uint64("run", c.runID))
}

// Running reports whether a run is active
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil
}

// Follow starts the clock while state is playing and stops it otherwise
func (c *Clock) Follow(state model.PlayerState) {
	if state.IsPlaying {
		c.Start()
	} else {
		c.Stop()
	}
}

func (c *Clock) run(id uint64, ticker clock.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if !c.current(id) {
				c.logger.Debug("dropping tick from stopped run", slog.Uint64("run", id))
				return
			}
			c.onTick()
		}
	}
}

// current reports whether id is the active run
func (c *Clock) current(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil && id == c.runID
}
