//go:build !linux

package mpris

import (
	"github.com/sparshik/automedia/internal/app/playback"
	"github.com/sparshik/automedia/internal/app/session"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *Settings, _ *playback.Controller, _ *session.Manager) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
