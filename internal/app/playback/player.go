package playback

import (
	"time"

	"github.com/sparshik/automedia/internal/domain/track"
)

// Player is the contract the controller expects from the audio backend.
//
// SetSource may fail on an invalid or unreachable locator; everything else is
// fire-and-forget. PrepareAsync returns immediately and invokes onReady on a
// backend-controlled goroutine once the source is ready to start.
type Player interface {
	Reset()
	SetSource(locator string) error
	PrepareAsync(onReady func())
	Start()
	Pause()
	Position() time.Duration
	Close() error
}

// Publisher receives state snapshots and track metadata for remote observers.
// Return values are not consumed anywhere, so the methods have none.
type Publisher interface {
	PublishState(st State, position time.Duration, rate float64, at time.Time)
	PublishMetadata(t track.Track)
	Release()
}
