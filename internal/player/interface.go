package player

import "github.com/llehouerou/flipbook/internal/anim"

// Interface defines the driver contract for dependency injection and
// testing.
type Interface interface {
	Start()
	Stop()
	Pause()
	Seek(index, loop int)
	IsPlaying() bool
	State() State
	CurrentFrameIndex() int
	CurrentLoopCount() int
	LowMemory()
	OnFrameChange(fn func(index int, frame anim.Frame))
	OnLoopChange(fn func(loop int))
	OnStateChange(fn func(previous, current State))
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
