package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/sparshik/automedia/internal/domain/track"
)

// Errors
var (
	ErrNoTrack            = errors.New("no track selected")
	ErrSourceAttachFailed = errors.New("failed to attach source to player")
)

// Config holds controller configuration.
type Config struct {
	Rate float64 // Playback rate published with every state snapshot
}

// Controller translates transport commands into catalog lookups, player
// directives, and state publications.
//
// State is published optimistically: a snapshot claiming "playing" goes out
// before the player confirms the source is ready. The prepare handoff is
// guarded by a generation token so that a stale ready callback from a
// superseded track never starts playback.
type Controller struct {
	mu sync.RWMutex

	catalog   *track.Catalog
	player    Player
	publisher Publisher

	currentTrack *track.Track
	state        State
	rate         float64

	// Incremented on every load; the prepare callback re-checks it
	// under lock and discards itself when superseded.
	prepareGen uint64
}

// NewController creates a new playback controller.
func NewController(catalog *track.Catalog, player Player, publisher Publisher, cfg Config) *Controller {
	rate := cfg.Rate
	if rate == 0 {
		rate = 1.0
	}
	return &Controller{
		catalog:   catalog,
		player:    player,
		publisher: publisher,
		state:     StateIdle,
		rate:      rate,
	}
}

// Play starts or resumes playback.
//
// With no current track it selects the catalog's first entry and loads it.
// With a current track it resumes the player without re-attaching the source.
// On an empty catalog it logs a warning and leaves the state at idle.
func (c *Controller) Play() error {
	c.mu.Lock()

	if c.currentTrack == nil {
		first, ok := c.catalog.First()
		if !ok {
			c.mu.Unlock()
			zlog.Warn().Msg("playback: play requested with empty catalog, ignoring")
			return nil
		}
		c.currentTrack = &first
		prepare := c.loadLocked()
		c.mu.Unlock()
		prepare()
		return nil
	}

	c.player.Start()
	c.state = StatePlaying
	c.publishStateLocked()
	c.mu.Unlock()
	return nil
}

// PlayFromID selects the catalog track with the given ID and loads it.
//
// An unknown ID leaves the current selection unchanged and the load still
// runs against the previous track; this mirrors the long-standing behavior
// remote clients depend on rather than surfacing a not-found failure.
func (c *Controller) PlayFromID(id string) error {
	c.mu.Lock()

	if t, ok := c.catalog.FindByID(id); ok {
		c.currentTrack = &t
	} else {
		zlog.Warn().Msgf("playback: track id not in catalog, keeping previous selection: id=%s", id)
	}

	prepare := c.loadLocked()
	c.mu.Unlock()
	if prepare != nil {
		prepare()
	}
	return nil
}

// Pause pauses the current playback.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentTrack == nil {
		return ErrNoTrack
	}

	c.player.Pause()
	c.state = StatePaused
	c.publishStateLocked()
	return nil
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentTrack returns the currently selected track.
func (c *Controller) CurrentTrack() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.currentTrack == nil {
		return track.Track{}, false
	}
	return *c.currentTrack, true
}

// Position returns the player's current position.
func (c *Controller) Position() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player.Position()
}

// Close releases the publisher and the player.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.publisher.Release()
	return c.player.Close()
}

// loadLocked publishes the optimistic playing state and attaches the
// current track's locator to the player. It returns the prepare handoff,
// which the caller must run after releasing the lock so that a player
// firing its ready callback inline cannot re-enter the controller.
// Must be called with lock held; returns nil when no track is selected.
func (c *Controller) loadLocked() func() {
	if c.currentTrack == nil {
		zlog.Warn().Msg("playback: load requested with no track selected, ignoring")
		return nil
	}
	cur := *c.currentTrack

	// Optimistic: observers see "playing" before the player confirms.
	c.state = StatePlaying
	c.publishStateLocked()
	c.publisher.PublishMetadata(cur)

	c.player.Reset()
	if err := c.player.SetSource(cur.Locator()); err != nil {
		// Known failure mode: the attach error is swallowed and the
		// published state stays at playing while the player is idle.
		err = errors.Mark(err, ErrSourceAttachFailed)
		zlog.Error().Err(err).Msgf("playback: source attach failed: track=%s locator=%s", cur.Title, cur.Locator())
	}

	c.prepareGen++
	gen := c.prepareGen
	return func() {
		c.player.PrepareAsync(func() {
			c.onPrepared(gen)
		})
	}
}

// onPrepared handles the player's ready callback for a given generation.
func (c *Controller) onPrepared(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.prepareGen {
		zlog.Debug().Msgf("playback: discarding stale prepare callback: gen=%d current=%d", gen, c.prepareGen)
		return
	}
	if c.currentTrack == nil {
		return
	}

	c.player.Start()
}

// publishStateLocked publishes the current state snapshot.
// Must be called with lock held.
func (c *Controller) publishStateLocked() {
	c.publisher.PublishState(c.state, c.player.Position(), c.rate, time.Now())
}
