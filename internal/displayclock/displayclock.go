// Package displayclock adapts a periodic ticker into the elapsed-time
// callbacks that drive the playback engine.
package displayclock

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultInterval approximates a 60 Hz display refresh.
const DefaultInterval = time.Second / 60

// Clock delivers periodic ticks to a handler, each carrying the wall
// time elapsed since the previous tick. Start and Stop are idempotent.
//
// Stop does not wait for an in-flight handler call: the handler may be
// the one calling Stop (the driver auto-stops from inside a tick). A
// straggler tick delivered right after Stop is possible; consumers gate
// on their own state instead.
type Clock struct {
	src      clock.Clock
	interval time.Duration

	mu      sync.Mutex
	onTick  func(elapsed time.Duration)
	running bool
	stop    chan struct{}
}

// New creates a clock ticking at the given interval. src may be a mock
// clock in tests; pass clock.New() for wall time.
func New(src clock.Clock, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{src: src, interval: interval}
}

// OnTick registers the tick handler. Must be set before Start.
func (c *Clock) OnTick(fn func(elapsed time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// Start begins delivering ticks. No-op if already running or if no
// handler is registered.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.onTick == nil {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	go c.loop(c.stop, c.onTick)
}

// Stop halts tick delivery.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
}

// IsRunning reports whether ticks are being delivered.
func (c *Clock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) loop(stop chan struct{}, onTick func(time.Duration)) {
	ticker := c.src.Ticker(c.interval)
	defer ticker.Stop()

	last := c.src.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			onTick(now.Sub(last))
			last = now
		}
	}
}
