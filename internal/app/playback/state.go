// Package playback provides the playback controller and its state machine.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No track selected
	StatePlaying              // Track is playing (possibly still preparing)
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true if a track is selected (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
