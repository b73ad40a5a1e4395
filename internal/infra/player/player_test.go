package player

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_SetSource(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		wantErr bool
		errMsg  string
	}{
		{name: "http url", locator: "http://example.com/a.mp3"},
		{name: "https url", locator: "https://example.com/a.mp3"},
		{name: "file url", locator: "file:///music/a.mp3"},
		{name: "bare path", locator: "/music/a.mp3"},
		{name: "empty locator", locator: "", wantErr: true, errMsg: "empty locator"},
		{name: "unsupported scheme", locator: "rtsp://example.com/a", wantErr: true, errMsg: "unsupported locator scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{})
			defer p.Close()

			err := p.SetSource(tt.locator)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPlayer_ResetClearsSource(t *testing.T) {
	p := New(Config{})
	defer p.Close()

	require.NoError(t, p.SetSource("https://example.com/a.mp3"))
	p.Reset()

	// After a reset there is nothing to prepare; onReady must not fire.
	fired := make(chan struct{}, 1)
	p.PrepareAsync(func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("onReady fired after reset")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPlayer_IdleOperationsAreSafe(t *testing.T) {
	p := New(Config{})
	defer p.Close()

	// No prepared stream: transport directives are no-ops.
	p.Start()
	p.Pause()
	assert.Equal(t, time.Duration(0), p.Position())
}

func TestPlayer_OpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	p := New(Config{ConnectTimeout: time.Second})
	defer p.Close()

	rc, err := p.open(srv.URL + "/track.mp3")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "audio-bytes", string(data))

	_, err = p.open(srv.URL + "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 404")
}

func TestPlayer_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not-really-mp3"), 0644))

	p := New(Config{})
	defer p.Close()

	rc, err := p.open(path)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	rc, err = p.open("file://" + path)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestPlayer_PrepareFailureNeverFiresReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(Config{ConnectTimeout: time.Second})
	defer p.Close()

	require.NoError(t, p.SetSource(srv.URL+"/broken.mp3"))

	fired := make(chan struct{}, 1)
	p.PrepareAsync(func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("onReady fired for an unreachable source")
	case <-time.After(200 * time.Millisecond):
	}
}
