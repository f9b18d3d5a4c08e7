package player

import "github.com/llehouerou/flipbook/internal/anim"

// Mock is a test double for the driver.
type Mock struct {
	state State
	index int
	loop  int

	startCalls     int
	stopCalls      int
	pauseCalls     int
	lowMemoryCalls int
	seekCalls      [][2]int
	closed         bool

	onFrameChange func(int, anim.Frame)
	onLoopChange  func(int)
	onStateChange func(State, State)
}

// NewMock creates a stopped mock driver.
func NewMock() *Mock {
	return &Mock{state: Stopped}
}

func (m *Mock) Start() {
	m.startCalls++
	m.setState(Playing)
}

func (m *Mock) Stop() {
	m.stopCalls++
	m.index, m.loop = 0, 0
	m.setState(Stopped)
}

func (m *Mock) Pause() {
	m.pauseCalls++
	if m.state == Playing {
		m.setState(Paused)
	}
}

func (m *Mock) Seek(index, loop int) {
	m.seekCalls = append(m.seekCalls, [2]int{index, loop})
	m.index, m.loop = index, loop
	if m.onFrameChange != nil {
		m.onFrameChange(index, nil)
	}
}

func (m *Mock) IsPlaying() bool { return m.state == Playing }

func (m *Mock) State() State { return m.state }

func (m *Mock) CurrentFrameIndex() int { return m.index }

func (m *Mock) CurrentLoopCount() int { return m.loop }

func (m *Mock) LowMemory() { m.lowMemoryCalls++ }

func (m *Mock) OnFrameChange(fn func(int, anim.Frame)) { m.onFrameChange = fn }

func (m *Mock) OnLoopChange(fn func(int)) { m.onLoopChange = fn }

func (m *Mock) OnStateChange(fn func(State, State)) { m.onStateChange = fn }

func (m *Mock) Close() error {
	m.closed = true
	m.setState(Stopped)
	return nil
}

func (m *Mock) setState(s State) {
	prev := m.state
	m.state = s
	if m.onStateChange != nil && prev != s {
		m.onStateChange(prev, s)
	}
}

// Test helpers

// EmitFrame fires the frame callback as the driver would on a tick.
func (m *Mock) EmitFrame(index int, frame anim.Frame) {
	m.index = index
	if m.onFrameChange != nil {
		m.onFrameChange(index, frame)
	}
}

// EmitLoop fires the loop callback.
func (m *Mock) EmitLoop(loop int) {
	m.loop = loop
	if m.onLoopChange != nil {
		m.onLoopChange(loop)
	}
}

func (m *Mock) StartCalls() int { return m.startCalls }

func (m *Mock) StopCalls() int { return m.stopCalls }

func (m *Mock) PauseCalls() int { return m.pauseCalls }

func (m *Mock) LowMemoryCalls() int { return m.lowMemoryCalls }

func (m *Mock) SeekCalls() [][2]int { return m.seekCalls }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
