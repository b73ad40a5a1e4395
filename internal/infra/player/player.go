// Package player provides the beep-backed audio player.
package player

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/sparshik/automedia/internal/app/playback"
)

// Config holds player configuration.
type Config struct {
	ConnectTimeout time.Duration // Timeout for opening remote sources
}

// Player streams MP3 audio from http(s) URLs or local files through beep.
//
// It follows the platform-player lifecycle the controller expects: Reset,
// SetSource, PrepareAsync (fetch and decode off the calling goroutine),
// then Start once the ready callback fires.
type Player struct {
	mu sync.Mutex

	client  *http.Client
	timeout time.Duration

	locator  string
	streamer beep.StreamSeekCloser
	format   beep.Format
	body     io.Closer
	ctrl     *beep.Ctrl
	started  bool

	// Bumped by Reset and SetSource so an in-flight prepare for a
	// superseded source abandons its result.
	gen uint64
}

var _ playback.Player = (*Player)(nil)

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
)

// New creates a new player.
func New(cfg Config) *Player {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Player{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:        (&net.Dialer{Timeout: timeout}).DialContext,
				DisableCompression: true,
			},
			// No total timeout: the body keeps streaming during playback
		},
		timeout: timeout,
	}
}

// Reset stops playback and discards any attached source.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Player) resetLocked() {
	p.gen++
	if p.started {
		speaker.Clear()
	}
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	if p.body != nil {
		_ = p.body.Close()
		p.body = nil
	}
	p.ctrl = nil
	p.started = false
	p.locator = ""
}

// SetSource attaches a resource locator. The locator must be an http(s)
// URL, a file URL, or a bare filesystem path; reachability is not checked
// until preparation.
func (p *Player) SetSource(locator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if locator == "" {
		return errors.New("empty locator")
	}

	u, err := url.Parse(locator)
	if err != nil {
		return errors.Wrapf(err, "invalid locator: %s", locator)
	}
	switch u.Scheme {
	case "http", "https", "file", "":
	default:
		return errors.Newf("unsupported locator scheme: %s", u.Scheme)
	}

	p.gen++
	p.locator = locator
	return nil
}

// PrepareAsync fetches and decodes the attached source in the background
// and invokes onReady when the stream can be started. Failures are logged
// and onReady never fires, leaving the player idle.
func (p *Player) PrepareAsync(onReady func()) {
	p.mu.Lock()
	locator := p.locator
	gen := p.gen
	p.mu.Unlock()

	if locator == "" {
		zlog.Warn().Msg("player: prepare requested with no source attached")
		return
	}

	go func() {
		rc, err := p.open(locator)
		if err != nil {
			zlog.Error().Err(err).Msgf("player: failed to open source: locator=%s", locator)
			return
		}

		streamer, format, err := mp3.Decode(rc)
		if err != nil {
			_ = rc.Close()
			zlog.Error().Err(err).Msgf("player: failed to decode source: locator=%s", locator)
			return
		}

		var speakerErr error
		speakerOnce.Do(func() {
			speakerRate = format.SampleRate
			speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
		})
		if speakerErr != nil {
			_ = streamer.Close()
			_ = rc.Close()
			zlog.Error().Err(speakerErr).Msg("player: failed to initialize speaker")
			return
		}

		p.mu.Lock()
		if gen != p.gen {
			// Source changed while preparing; drop this stream.
			p.mu.Unlock()
			_ = streamer.Close()
			_ = rc.Close()
			zlog.Debug().Msgf("player: discarding prepared stream for superseded source: locator=%s", locator)
			return
		}

		var play beep.Streamer = streamer
		if format.SampleRate != speakerRate {
			play = beep.Resample(4, format.SampleRate, speakerRate, streamer)
		}

		p.streamer = streamer
		p.format = format
		p.body = rc
		p.ctrl = &beep.Ctrl{Streamer: play, Paused: true}
		p.mu.Unlock()

		onReady()
	}()
}

// Start begins or resumes playback. Without a prepared stream it is a no-op.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		zlog.Debug().Msg("player: start requested with no prepared stream")
		return
	}

	if !p.started {
		p.started = true
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
			zlog.Debug().Msg("player: stream finished")
		})))
		return
	}

	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

// Pause suspends playback. Without a prepared stream it is a no-op.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

// Close releases the player's resources.
func (p *Player) Close() error {
	p.Reset()
	return nil
}

// open resolves a locator into a readable stream.
func (p *Player) open(locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, errors.Wrap(err, "invalid locator")
	}

	switch u.Scheme {
	case "http", "https":
		return p.openHTTP(locator)
	case "file":
		return os.Open(u.Path)
	default:
		return os.Open(locator)
	}
}

// openHTTP connects to a remote source the way a streaming client does:
// a connect timeout but no total request timeout, so the body can keep
// streaming for the lifetime of the track.
func (p *Player) openHTTP(rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Newf("unexpected status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
