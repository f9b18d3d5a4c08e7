// Package player implements the animation playback driver: a
// clock-driven state machine that advances the frame cursor by
// accumulated time, keeps a bounded buffer of decoded frames filled
// ahead of the cursor, and degrades to repeating the current frame when
// a decode is not ready in time.
package player

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/flipbook/internal/anim"
	"github.com/llehouerou/flipbook/internal/displayclock"
	"github.com/llehouerou/flipbook/internal/framecache"
	"github.com/llehouerou/flipbook/internal/prefetch"
)

// ErrNotAnimated is returned by New when the provider has fewer than
// two frames; there is nothing to play back.
var ErrNotAnimated = errors.New("player: provider must have more than one frame")

// Clock is the display-refresh source that drives ticks.
type Clock interface {
	OnTick(fn func(elapsed time.Duration))
	Start()
	Stop()
	IsRunning() bool
}

// Verify the display clock satisfies Clock at compile time.
var _ Clock = (*displayclock.Clock)(nil)

// Options configures a Player. The zero value is usable.
type Options struct {
	// PlaybackRate scales frame durations. Defaults to 1.0. A rate
	// that is not positive stops playback on the next tick.
	PlaybackRate float64

	// MaxBufferBytes bounds the decoded-frame buffer. 0 means size it
	// automatically from system memory.
	MaxBufferBytes uint64

	// TickInterval is the display refresh period. Defaults to
	// displayclock.DefaultInterval. Ignored when Clock is set.
	TickInterval time.Duration

	// Clock overrides the wall-time display clock, for tests.
	Clock Clock

	// SystemMemory overrides the system memory probe, for tests.
	SystemMemory func() (total, free uint64)
}

// Player drives playback of an animated image. Control operations and
// tick handling serialize on one mutex; decode work runs on a single
// background prefetch goroutine and never blocks a tick.
type Player struct {
	provider anim.Provider
	poster   anim.Frame // capability resolved once at construction

	cache  *framecache.Cache
	worker *prefetch.Worker
	clock  Clock
	sysMem func() (total, free uint64)

	mu             sync.Mutex
	state          State
	rate           float64
	maxBytes       uint64
	maxBufferCount int
	currentIndex   int
	currentLoop    int
	currentTime    time.Duration
	bufferMiss     bool
	bufferFull     bool
	closed         bool

	onFrameChange func(index int, frame anim.Frame)
	onLoopChange  func(loop int)
	onStateChange func(previous, current State)
}

// New creates a player over the provider. It fails with ErrNotAnimated
// when the provider does not describe a multi-frame image.
func New(provider anim.Provider, opts Options) (*Player, error) {
	if provider == nil {
		return nil, errors.New("player: provider is nil")
	}
	if provider.FrameCount() <= 1 {
		return nil, ErrNotAnimated
	}

	rate := opts.PlaybackRate
	if rate == 0 {
		rate = 1.0
	}

	p := &Player{
		provider: provider,
		cache:    framecache.New(),
		worker:   prefetch.New(),
		clock:    opts.Clock,
		sysMem:   opts.SystemMemory,
		rate:     rate,
		maxBytes: opts.MaxBufferBytes,
	}
	if p.clock == nil {
		p.clock = displayclock.New(clock.New(), opts.TickInterval)
	}
	if p.sysMem == nil {
		p.sysMem = framecache.SystemMemory
	}
	if pp, ok := provider.(anim.PosterProvider); ok {
		p.poster = pp.Poster()
	}
	p.clock.OnTick(p.handleTick)

	return p, nil
}

// Callback registration. Callbacks fire synchronously from the driver
// context (a tick or the control call that caused the change) after the
// driver's own state has settled; they must not assume they can block.

// OnFrameChange registers the displayed-frame callback. It also fires
// for the poster publish on Start, the reset publish on Stop, and
// Seek.
func (p *Player) OnFrameChange(fn func(index int, frame anim.Frame)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFrameChange = fn
}

// OnLoopChange registers the loop-count callback.
func (p *Player) OnLoopChange(fn func(loop int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLoopChange = fn
}

// OnStateChange registers the state-transition callback.
func (p *Player) OnStateChange(fn func(previous, current State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStateChange = fn
}

// SetPlaybackRate changes the playback rate. Takes effect on the next
// tick.
func (p *Player) SetPlaybackRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
}

// SetMaxBufferBytes changes the buffer budget. Capacity is recomputed
// on the next Start.
func (p *Player) SetMaxBufferBytes(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxBytes = n
}

// Start begins or resumes playback. Buffer capacity is recomputed from
// the current (or poster) frame; when starting cold at frame 0 the
// poster frame, if any, is published immediately so the consumer has
// something to show before the first decode lands.
func (p *Player) Start() {
	p.mu.Lock()
	if p.closed || p.state == Playing {
		p.mu.Unlock()
		return
	}

	var events []func()

	reference := p.cache.Get(p.currentIndex)
	if reference == nil {
		reference = p.poster
	}
	total, free := p.sysMem()
	p.maxBufferCount = framecache.Capacity(reference, p.maxBytes, total, free)

	if p.state == Stopped && p.currentIndex == 0 && p.cache.Get(0) == nil && p.poster != nil {
		p.cache.Put(0, p.poster)
		events = p.queueFrameChange(events, 0, p.poster)
	}

	events = p.transitionLocked(events, Playing)

	logrus.WithFields(logrus.Fields{
		"frames":   p.provider.FrameCount(),
		"capacity": p.maxBufferCount,
		"budget":   humanize.IBytes(p.budgetBytes(total, free)),
	}).Info("playback started")

	p.mu.Unlock()

	emit(events)
	p.clock.Start()
}

// Stop halts playback, discards the buffer, and rewinds to frame 0.
// Safe to call repeatedly; stopping a stopped player does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state == Stopped {
		p.mu.Unlock()
		return
	}
	var events []func()
	events = p.stopLocked(events)
	p.mu.Unlock()

	emit(events)
}

// Pause halts the clock but keeps the cursor and buffered frames.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.worker.CancelAll()
	p.clock.Stop()
	events := p.transitionLocked(nil, Paused)
	p.mu.Unlock()

	emit(events)
}

// Seek moves the cursor to the given frame and loop count. It does not
// touch the cache or the playing state. Out-of-range indexes are
// ignored.
func (p *Player) Seek(index, loop int) {
	p.mu.Lock()
	if p.closed || index < 0 || index >= p.provider.FrameCount() {
		logrus.WithField("index", index).Debug("seek ignored: index out of range")
		p.mu.Unlock()
		return
	}
	p.currentIndex = index
	p.currentLoop = loop
	events := p.queueFrameChange(nil, index, p.cache.Get(index))
	p.mu.Unlock()

	emit(events)
}

// LowMemory reacts to an external memory-pressure signal: outstanding
// prefetch work is cancelled and, asynchronously, every buffered frame
// except the current one is evicted. Ignored unless playing.
func (p *Player) LowMemory() {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.worker.CancelAll()
	p.bufferFull = false
	keep := p.currentIndex
	p.mu.Unlock()

	logrus.WithField("keep", keep).Debug("memory pressure: shrinking frame buffer")
	go p.cache.RemoveAllExcept(keep)
}

// IsPlaying reports whether the player is in the Playing state.
func (p *Player) IsPlaying() bool {
	return p.State() == Playing
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentFrameIndex returns the cursor position.
func (p *Player) CurrentFrameIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentIndex
}

// CurrentLoopCount returns the number of completed loops.
func (p *Player) CurrentLoopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLoop
}

// MaxBufferCount returns the frame capacity computed at the last Start.
func (p *Player) MaxBufferCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxBufferCount
}

// Close stops playback and shuts down the prefetch goroutine. The
// player must not be used afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	var events []func()
	if p.state != Stopped {
		events = p.stopLocked(events)
	}
	p.mu.Unlock()

	emit(events)
	p.worker.Close()
	return nil
}

// handleTick advances playback by one display refresh. Invoked by the
// clock; ignored unless playing.
func (p *Player) handleTick(elapsed time.Duration) {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return
	}

	var events []func()

	frameCount := p.provider.FrameCount()
	if frameCount <= 1 || p.rate <= 0 {
		// Fatal to playback, not an error to the consumer.
		logrus.WithFields(logrus.Fields{
			"frames": frameCount,
			"rate":   p.rate,
		}).Warn("stopping: unplayable configuration")
		events = p.stopLocked(events)
		p.mu.Unlock()
		emit(events)
		return
	}

	nextIndex := (p.currentIndex + 1) % frameCount

	// Accumulate elapsed time unless stalled on a missing frame; a
	// stalled player re-attempts the same frame every tick without
	// racking up debt.
	if !p.bufferMiss {
		p.currentTime += elapsed
		curDur := p.scaledDuration(p.currentIndex)
		if p.currentTime < curDur {
			p.mu.Unlock()
			return
		}
		p.currentTime -= curDur
		// Clamp instead of catching up: a long stall repeats frames,
		// it never skips them.
		if nextDur := p.scaledDuration(nextIndex); p.currentTime > nextDur {
			p.currentTime = nextDur
		}
	}

	frameAtCurrent := p.cache.Get(p.currentIndex)
	var frameAtNext anim.Frame
	if frameAtCurrent != nil {
		frameAtNext = p.cache.Get(nextIndex)
	}

	advanced := frameAtCurrent != nil
	if advanced {
		// Evict the frame being superseded before the buffer can
		// overflow its capacity.
		if p.cache.Count() > p.maxBufferCount {
			p.cache.Remove(p.currentIndex)
		}
		if p.cache.Count() == frameCount {
			p.bufferFull = true
		}
		events = p.queueFrameChange(events, p.currentIndex, frameAtCurrent)
		p.currentIndex = nextIndex
		if p.bufferMiss {
			p.bufferMiss = false
			logrus.WithField("index", nextIndex).Debug("buffer miss recovered")
		}
	} else if !p.bufferMiss {
		p.bufferMiss = true
		logrus.WithField("index", p.currentIndex).Debug("buffer miss: stalling on current frame")
	}

	if advanced && nextIndex == 0 {
		p.currentLoop++
		events = p.queueLoopChange(events, p.currentLoop)
		if total := p.provider.LoopCount(); total != 0 && p.currentLoop >= total {
			events = p.stopLocked(events)
			p.mu.Unlock()
			emit(events)
			return
		}
	}

	// Prefetch the frame needed next; a stalled render takes priority
	// over read-ahead.
	fetchTarget := nextIndex
	missing := frameAtNext == nil
	if p.bufferMiss {
		fetchTarget = p.currentIndex
		missing = true
	}
	if missing && !p.bufferFull && p.worker.Depth() == 0 {
		p.scheduleDecodeLocked(fetchTarget)
	}

	p.mu.Unlock()
	emit(events)
}

// scheduleDecodeLocked submits a decode for index. The decode itself
// runs without any lock; the commit re-checks that the result is still
// wanted. Caller holds p.mu.
func (p *Player) scheduleDecodeLocked(index int) {
	p.worker.Schedule(func(stale func() bool) {
		frame := p.provider.DecodeFrame(index)
		if frame == nil {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		// Discard results that were cancelled mid-decode or that
		// completed after playback stopped.
		if stale() || p.state != Playing {
			return
		}
		p.cache.Put(index, frame)
	})
}

// stopLocked performs the shared stop sequence: cancel prefetch, stop
// the clock, reset the cursor, clear the buffer, and queue the reset
// publish. Caller holds p.mu.
func (p *Player) stopLocked(events []func()) []func() {
	p.worker.CancelAll()
	p.clock.Stop()

	p.currentIndex = 0
	p.currentLoop = 0
	p.currentTime = 0
	p.bufferMiss = false
	p.bufferFull = false
	p.cache.Clear()

	events = p.transitionLocked(events, Stopped)
	events = p.queueFrameChange(events, 0, p.poster)
	logrus.Info("playback stopped")
	return events
}

// transitionLocked moves to the target state and queues the state
// callback. Caller holds p.mu.
func (p *Player) transitionLocked(events []func(), to State) []func() {
	previous := p.state
	p.state = to
	if fn := p.onStateChange; fn != nil && previous != to {
		events = append(events, func() { fn(previous, to) })
	}
	return events
}

func (p *Player) queueFrameChange(events []func(), index int, frame anim.Frame) []func() {
	if fn := p.onFrameChange; fn != nil {
		events = append(events, func() { fn(index, frame) })
	}
	return events
}

func (p *Player) queueLoopChange(events []func(), loop int) []func() {
	if fn := p.onLoopChange; fn != nil {
		events = append(events, func() { fn(loop) })
	}
	return events
}

// scaledDuration returns the display duration of a frame adjusted for
// the playback rate. Caller holds p.mu.
func (p *Player) scaledDuration(index int) time.Duration {
	d := p.provider.FrameDuration(index)
	if p.rate == 1.0 {
		return d
	}
	return time.Duration(float64(d) / p.rate)
}

func (p *Player) budgetBytes(total, free uint64) uint64 {
	if p.maxBytes > 0 {
		return p.maxBytes
	}
	t := uint64(float64(total) * framecache.TotalMemoryFraction)
	f := uint64(float64(free) * framecache.FreeMemoryFraction)
	return min(t, f)
}

func emit(events []func()) {
	for _, fn := range events {
		fn()
	}
}
