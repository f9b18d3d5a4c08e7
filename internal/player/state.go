package player

// State represents the playback state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Start; publishes the poster frame when one
//     is available and nothing has been decoded yet)
//   - Playing → Paused  (via Pause; keeps cursor and cache)
//   - Paused  → Playing (via Start)
//   - Playing → Stopped (via Stop, loop exhaustion, or a fatal
//     misconfiguration observed on a tick)
//   - Paused  → Stopped (via Stop)
//
// Invalid transitions are ignored: stopping while Stopped, pausing while
// not Playing, and starting while Playing are all no-ops.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
