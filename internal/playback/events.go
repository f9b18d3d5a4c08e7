package playback

import (
	"github.com/llehouerou/flipbook/internal/anim"
	"github.com/llehouerou/flipbook/internal/player"
)

// StateChange is emitted when the playback state changes, including
// auto-stop when the loop budget is exhausted.
type StateChange struct {
	Previous State
	Current  State
}

// FrameChange is emitted whenever the displayed frame changes.
//
// Emitted by:
//   - ticks that advance the cursor
//   - Start: the synthetic poster publish when starting cold
//   - Stop: the reset publish back to frame 0
//   - Seek
//
// Frame may be nil when the frame at Index has not been decoded (a
// Seek outside the buffered window, or a reset with no poster).
type FrameChange struct {
	Index int
	Frame anim.Frame
}

// LoopChange is emitted each time the cursor wraps back to frame 0.
type LoopChange struct {
	Loop int
}

func stateOf(s player.State) State {
	switch s {
	case player.Playing:
		return StatePlaying
	case player.Paused:
		return StatePaused
	default:
		return StateStopped
	}
}
