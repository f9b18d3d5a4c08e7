package anim

import (
	"image"
	"sync"
	"time"
)

// Mock is a scripted Provider test double.
type Mock struct {
	mu sync.Mutex

	frameCount  int
	loopCount   int
	duration    time.Duration
	poster      Frame
	decodeCalls []int

	// blocked frames never return from DecodeFrame until released
	blocked  map[int]bool
	releases map[int]chan struct{}
}

// NewMock creates a mock provider with uniform frame durations.
func NewMock(frameCount, loopCount int, duration time.Duration) *Mock {
	return &Mock{
		frameCount: frameCount,
		loopCount:  loopCount,
		duration:   duration,
		blocked:    make(map[int]bool),
		releases:   make(map[int]chan struct{}),
	}
}

func (m *Mock) FrameCount() int { return m.frameCount }

func (m *Mock) LoopCount() int { return m.loopCount }

func (m *Mock) FrameDuration(_ int) time.Duration { return m.duration }

// DecodeFrame records the call and returns a small solid frame. If the
// index was marked blocking, it waits until ReleaseFrame is called.
func (m *Mock) DecodeFrame(index int) Frame {
	m.mu.Lock()
	m.decodeCalls = append(m.decodeCalls, index)
	var gate chan struct{}
	if m.blocked[index] {
		gate = m.releaseChan(index)
	}
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return NewImageFrame(image.NewRGBA(image.Rect(0, 0, 4, 4)))
}

// Poster returns the configured poster frame, or nil.
func (m *Mock) Poster() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poster
}

// Test helpers

// SetPoster makes the mock advertise a poster frame.
func (m *Mock) SetPoster(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poster = f
}

// BlockFrame makes DecodeFrame(index) hang until ReleaseFrame(index).
func (m *Mock) BlockFrame(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked[index] = true
}

// ReleaseFrame unblocks a pending or future DecodeFrame(index).
func (m *Mock) ReleaseFrame(index int) {
	m.mu.Lock()
	gate := m.releaseChan(index)
	m.blocked[index] = false
	m.mu.Unlock()

	select {
	case <-gate:
	default:
		close(gate)
	}
}

func (m *Mock) releaseChan(index int) chan struct{} {
	ch, ok := m.releases[index]
	if !ok {
		ch = make(chan struct{})
		m.releases[index] = ch
	}
	return ch
}

// DecodeCalls returns the indices passed to DecodeFrame, in order.
func (m *Mock) DecodeCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]int, len(m.decodeCalls))
	copy(calls, m.decodeCalls)
	return calls
}

// Verify Mock implements PosterProvider at compile time.
var _ PosterProvider = (*Mock)(nil)
