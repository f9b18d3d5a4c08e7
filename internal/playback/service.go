// Package playback exposes the animation driver to consumers as a
// service with queryable state and channel-based event subscriptions.
package playback

import "github.com/llehouerou/flipbook/internal/player"

// Service defines the playback service contract.
type Service interface {
	// Playback control. These never fail; invalid requests degrade to
	// no-ops per the engine's error policy.
	Start()
	Stop()
	Pause()
	Toggle()
	Seek(index, loop int)

	// Memory pressure signal from the platform.
	LowMemory()

	// State queries
	State() State
	IsPlaying() bool
	CurrentFrameIndex() int
	CurrentLoopCount() int
	Player() player.Interface // Direct driver access

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
