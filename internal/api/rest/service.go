// Package rest provides the HTTP JSON API for browsing and transport control.
package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/sparshik/automedia/internal/app/playback"
	"github.com/sparshik/automedia/internal/app/session"
	"github.com/sparshik/automedia/internal/domain/track"
)

// RootID is the identifier of the single browse root.
const RootID = "root"

// Service implements the browse and transport HTTP API.
type Service struct {
	catalog    *track.Catalog
	controller *playback.Controller
	session    *session.Manager
}

// NewService creates a new API service.
func NewService(catalog *track.Catalog, controller *playback.Controller, sess *session.Manager) *Service {
	return &Service{
		catalog:    catalog,
		controller: controller,
		session:    sess,
	}
}

// Register registers all routes on the given mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /v1/browse/{parent}", s.handleBrowse)
	mux.HandleFunc("POST /v1/playback/play", s.handlePlay)
	mux.HandleFunc("POST /v1/playback/pause", s.handlePause)
	mux.HandleFunc("GET /v1/playback/status", s.handleStatus)
	mux.HandleFunc("GET /v1/playback/events", s.handleEvents)
}

// browseItem is a single entry in the browse tree.
type browseItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Playable   bool   `json:"playable"`
}

// browseResponse is the response for a browse request.
type browseResponse struct {
	ParentID string       `json:"parent_id"`
	Items    []browseItem `json:"items"`
}

// playRequest is the optional body for a play command.
type playRequest struct {
	TrackID string `json:"track_id"`
}

// statusResponse mirrors session.Status on the wire.
type statusResponse struct {
	SequenceNo uint64      `json:"sequence_no"`
	State      string      `json:"state"`
	Track      *browseItem `json:"track,omitempty"`
	PositionMs int64       `json:"position_ms"`
	Rate       float64     `json:"rate"`
	Timestamp  string      `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleBrowse exposes the catalog as a flat one-level tree: the root has
// every track as a playable child, and tracks have no children of their own.
func (s *Service) handleBrowse(w http.ResponseWriter, r *http.Request) {
	parent := r.PathValue("parent")
	if parent != RootID {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown parent id"})
		return
	}

	tracks := s.catalog.Tracks()
	items := make([]browseItem, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, trackToItem(t))
	}

	writeJSON(w, http.StatusOK, browseResponse{ParentID: parent, Items: items})
}

func (s *Service) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	var err error
	if req.TrackID != "" {
		err = s.controller.PlayFromID(req.TrackID)
	} else {
		err = s.controller.Play()
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.writeStatus(w)
}

func (s *Service) handlePause(w http.ResponseWriter, _ *http.Request) {
	if err := s.controller.Pause(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, playback.ErrNoTrack) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.writeStatus(w)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeStatus(w)
}

// handleEvents streams status snapshots over SSE: the current state first,
// then every published update until the client disconnects.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id, ch := s.session.Subscribe()
	defer s.session.Unsubscribe(id)

	if err := writeEvent(w, statusToResponse(s.session.Status())); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case status, open := <-ch:
			if !open {
				return
			}
			if err := writeEvent(w, statusToResponse(status)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Service) writeStatus(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusToResponse(s.session.Status()))
}

func statusToResponse(status session.Status) statusResponse {
	resp := statusResponse{
		SequenceNo: status.SequenceNo,
		State:      status.State.String(),
		PositionMs: status.Position.Milliseconds(),
		Rate:       status.Rate,
	}
	if !status.Timestamp.IsZero() {
		resp.Timestamp = status.Timestamp.Format(time.RFC3339Nano)
	}
	if status.Track != nil {
		item := trackToItem(*status.Track)
		resp.Track = &item
	}
	return resp
}

func trackToItem(t track.Track) browseItem {
	return browseItem{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		DurationMs: t.Duration.Milliseconds(),
		Playable:   true,
	}
}

// decodeBody decodes an optional JSON body; an empty body is valid.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("rest: failed to encode response")
	}
}

func writeEvent(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(append([]byte("data: "), data...), '\n', '\n'))
	return err
}
