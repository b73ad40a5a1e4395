// Package track provides the Track domain entity and the fixed catalog.
package track

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Track represents a single playable entry in the catalog.
// The ID doubles as the resource locator handed to the player.
type Track struct {
	ID       string        // Opaque ID, also the playable resource locator (URI)
	Title    string        // Track title
	Artist   string        // Artist name
	Duration time.Duration // Advisory duration, not enforced during playback
}

// Locator returns the resource locator for the track.
func (t Track) Locator() string {
	return t.ID
}

// Catalog is an ordered list of tracks, fixed for the process lifetime.
type Catalog struct {
	tracks []Track
}

// NewCatalog builds a catalog from the given tracks.
// Track IDs must be non-empty and unique.
func NewCatalog(tracks []Track) (*Catalog, error) {
	seen := make(map[string]struct{}, len(tracks))
	for i, t := range tracks {
		if t.ID == "" {
			return nil, errors.Newf("catalog entry %d has empty id", i)
		}
		if _, ok := seen[t.ID]; ok {
			return nil, errors.Newf("duplicate track id: %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	copied := make([]Track, len(tracks))
	copy(copied, tracks)

	return &Catalog{tracks: copied}, nil
}

// First returns the first catalog entry.
func (c *Catalog) First() (Track, bool) {
	if len(c.tracks) == 0 {
		return Track{}, false
	}
	return c.tracks[0], true
}

// FindByID scans the catalog in order and returns the first track
// whose ID equals the argument.
func (c *Catalog) FindByID(id string) (Track, bool) {
	for _, t := range c.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

// Tracks returns a copy of all tracks in catalog order.
func (c *Catalog) Tracks() []Track {
	result := make([]Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Len returns the number of tracks in the catalog.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// IsEmpty returns true if the catalog has no tracks.
func (c *Catalog) IsEmpty() bool {
	return len(c.tracks) == 0
}
