package playback

import (
	"sync"

	"github.com/llehouerou/flipbook/internal/anim"
	"github.com/llehouerou/flipbook/internal/player"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	driver player.Interface

	subs   []*Subscription
	subsMu sync.RWMutex

	mu     sync.Mutex
	closed bool
}

// New creates a playback service over the driver and hooks its
// callbacks, fanning events out to subscribers.
func New(driver player.Interface) Service {
	s := &serviceImpl{driver: driver}

	driver.OnFrameChange(s.publishFrame)
	driver.OnLoopChange(s.publishLoop)
	driver.OnStateChange(s.publishState)

	return s
}

// Start begins or resumes playback.
func (s *serviceImpl) Start() { s.driver.Start() }

// Stop halts playback and rewinds to frame 0.
func (s *serviceImpl) Stop() { s.driver.Stop() }

// Pause halts playback keeping the cursor in place.
func (s *serviceImpl) Pause() { s.driver.Pause() }

// Toggle switches between playing and paused. No-op when stopped.
func (s *serviceImpl) Toggle() {
	switch s.driver.State() {
	case player.Playing:
		s.driver.Pause()
	case player.Paused:
		s.driver.Start()
	case player.Stopped:
		// Nothing to toggle when stopped
	}
}

// Seek moves the cursor to the given frame and loop count.
func (s *serviceImpl) Seek(index, loop int) { s.driver.Seek(index, loop) }

// LowMemory forwards the platform's memory-pressure signal.
func (s *serviceImpl) LowMemory() { s.driver.LowMemory() }

// State returns the current playback state.
func (s *serviceImpl) State() State { return stateOf(s.driver.State()) }

// IsPlaying reports whether playback is running.
func (s *serviceImpl) IsPlaying() bool { return s.driver.IsPlaying() }

// CurrentFrameIndex returns the cursor position.
func (s *serviceImpl) CurrentFrameIndex() int { return s.driver.CurrentFrameIndex() }

// CurrentLoopCount returns the number of completed loops.
func (s *serviceImpl) CurrentLoopCount() int { return s.driver.CurrentLoopCount() }

// Player returns the underlying driver.
func (s *serviceImpl) Player() player.Interface { return s.driver }

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close shuts down the service and the driver.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.driver.Close()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return err
}

func (s *serviceImpl) publishFrame(index int, frame anim.Frame) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendFrame(FrameChange{Index: index, Frame: frame})
	}
}

func (s *serviceImpl) publishLoop(loop int) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendLoop(LoopChange{Loop: loop})
	}
}

func (s *serviceImpl) publishState(previous, current player.State) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendState(StateChange{Previous: stateOf(previous), Current: stateOf(current)})
	}
}
