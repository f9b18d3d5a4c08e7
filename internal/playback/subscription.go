package playback

const eventBufferSize = 16

// Subscription provides event channels for one subscriber. Sends are
// non-blocking; a slow subscriber drops events rather than stalling the
// driver.
type Subscription struct {
	StateChanged <-chan StateChange
	FrameChanged <-chan FrameChange
	LoopChanged  <-chan LoopChange
	Done         <-chan struct{}

	// Internal write channels
	stateCh chan StateChange
	frameCh chan FrameChange
	loopCh  chan LoopChange
	doneCh  chan struct{}
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh: make(chan StateChange, eventBufferSize),
		frameCh: make(chan FrameChange, eventBufferSize),
		loopCh:  make(chan LoopChange, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.FrameChanged = s.frameCh
	s.LoopChanged = s.loopCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendFrame sends a frame change event (non-blocking).
func (s *Subscription) sendFrame(e FrameChange) {
	select {
	case s.frameCh <- e:
	default:
	}
}

// sendLoop sends a loop change event (non-blocking).
func (s *Subscription) sendLoop(e LoopChange) {
	select {
	case s.loopCh <- e:
	default:
	}
}
