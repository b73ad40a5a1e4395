// Package session provides the session publisher observed by remote clients.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/sparshik/automedia/internal/app/playback"
	"github.com/sparshik/automedia/internal/domain/track"
)

const statusBufferSize = 16

// Status is a published snapshot of the session.
type Status struct {
	SequenceNo uint64         // Monotonic, assigned at publish time
	State      playback.State // Derived playback state
	Track      *track.Track   // Nil when no track is selected
	Position   time.Duration  // Player position when the snapshot was taken
	Rate       float64        // Playback rate
	Timestamp  time.Time      // When the snapshot was published
}

// subscription holds a subscriber's delivery channel.
type subscription struct {
	id string
	ch chan Status
}

// Manager holds the current session snapshot and fans out updates to
// subscribers. It is created at process start, mutated only by the playback
// controller, and released at process stop; nothing survives a restart.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	current       Status
	sequenceNo    uint64
	released      bool
}

// Verify Manager satisfies the controller's publisher contract.
var _ playback.Publisher = (*Manager)(nil)

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// PublishState records a new state snapshot and broadcasts it.
func (m *Manager) PublishState(st playback.State, position time.Duration, rate float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return
	}

	m.current.State = st
	m.current.Position = position
	m.current.Rate = rate
	m.current.Timestamp = at
	m.broadcastLocked()
}

// PublishMetadata records the current track's metadata and broadcasts it.
func (m *Manager) PublishMetadata(t track.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return
	}

	m.current.Track = &t
	m.broadcastLocked()
}

// Status returns the latest published snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers a new subscriber and returns its ID and channel.
// The channel is buffered; slow consumers lose intermediate snapshots.
func (m *Manager) Subscribe() (string, <-chan Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id: id,
		ch: make(chan Status, statusBufferSize),
	}
	m.subscriptions[id] = sub
	return id, sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subscriptions[id]; ok {
		delete(m.subscriptions, id)
		close(sub.ch)
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Release tears the session down: all subscriptions are closed and
// subsequent publishes are dropped.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return
	}
	m.released = true

	for id, sub := range m.subscriptions {
		delete(m.subscriptions, id)
		close(sub.ch)
	}
	zlog.Debug().Msg("session: released")
}

// broadcastLocked assigns the next sequence number and delivers the current
// snapshot to every subscriber without blocking.
// Must be called with lock held.
func (m *Manager) broadcastLocked() {
	m.sequenceNo++
	m.current.SequenceNo = m.sequenceNo

	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- m.current:
		default:
			// Buffer full, drop the snapshot for this subscriber
		}
	}
}
