// Package spotify provides the playback-engine handle (a go-librespot
// instance controlled over its local HTTP API) and the Web API catalog
// client.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ncspot/mprisd/internal/models"
)

const (
	defaultLibrespotURL = "http://localhost:3678"
	statusPollInterval  = 1 * time.Second

	// finishedWindowMS is how close to the end of a track a stop must be
	// observed to count as "track finished" rather than a user stop.
	finishedWindowMS = 2000
)

// Session is the shared handle on the playback engine. It is safe for
// concurrent use; transport commands are fire-and-forget (errors are logged,
// never returned to callers).
type Session struct {
	mu         sync.Mutex
	baseURL    string
	client     *http.Client
	event      models.PlayerEvent
	positionMS int
	posAt      time.Time // when positionMS was last observed
	durationMS int
	volume     uint16
	onEvent    func(models.PlayerEvent)
}

// NewSession creates a session talking to the go-librespot API at baseURL
// (empty means localhost default).
func NewSession(baseURL string) *Session {
	if baseURL == "" {
		baseURL = defaultLibrespotURL
	}
	return &Session{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
		event:   models.EventStopped,
		volume:  models.MaxVolume,
	}
}

// OnEvent registers the callback fired whenever the engine's event state
// changes. Must be set before Run is started.
func (s *Session) OnEvent(fn func(models.PlayerEvent)) { s.onEvent = fn }

// CurrentEvent returns the engine's current event state.
func (s *Session) CurrentEvent() models.PlayerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

// ProgressMS returns the current playback position in milliseconds.
func (s *Session) ProgressMS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.positionMS
	if s.event == models.EventPlaying && !s.posAt.IsZero() {
		pos += int(time.Since(s.posAt) / time.Millisecond)
	}
	return pos
}

// Volume returns the engine's stored volume on its internal integer scale.
func (s *Session) Volume() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetVolume sets the engine volume on its internal integer scale.
func (s *Session) SetVolume(vol uint16) {
	s.mu.Lock()
	s.volume = vol
	s.mu.Unlock()
	s.post("/player/volume", map[string]any{"volume": int(vol)})
}

// Load starts playback of the given item, optionally paused or at an offset.
func (s *Session) Load(item models.Playable, startPlaying bool, positionMS int) {
	uri := item.URI()
	if uri == "" {
		return
	}
	s.post("/player/play", map[string]any{"uri": uri, "paused": !startPlaying})
	if positionMS > 0 {
		s.SeekMS(positionMS)
	}
	ev := models.EventPaused
	if startPlaying {
		ev = models.EventPlaying
	}
	s.setState(ev, positionMS, item.DurationMS())
}

// Play resumes playback.
func (s *Session) Play() {
	s.post("/player/resume", nil)
	s.markEvent(models.EventPlaying)
}

// Resume resumes playback.
func (s *Session) Resume() { s.Play() }

// Pause pauses playback.
func (s *Session) Pause() {
	s.post("/player/pause", nil)
	s.markEvent(models.EventPaused)
}

// Stop stops playback.
func (s *Session) Stop() {
	s.post("/player/stop", nil)
	s.setState(models.EventStopped, 0, 0)
}

// SeekMS seeks to an absolute position in milliseconds.
func (s *Session) SeekMS(positionMS int) {
	if positionMS < 0 {
		positionMS = 0
	}
	s.post("/player/seek", map[string]any{"position": positionMS})
	s.mu.Lock()
	s.positionMS = positionMS
	s.posAt = time.Now()
	s.mu.Unlock()
}

// SeekRelativeMS seeks by a signed offset from the current position,
// clamping the result at 0.
func (s *Session) SeekRelativeMS(deltaMS int) {
	pos := s.ProgressMS() + deltaMS
	if pos < 0 {
		pos = 0
	}
	s.SeekMS(pos)
}

// Run polls the go-librespot status endpoint until ctx is cancelled,
// keeping the session's event state and position in sync with the engine.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollStatus(ctx)
		}
	}
}

// librespotStatus is the JSON response from go-librespot's /status endpoint.
type librespotStatus struct {
	Stopped bool `json:"stopped"`
	Paused  bool `json:"paused"`
	Volume  int  `json:"volume"`
	Track   *struct {
		URI      string `json:"uri"`
		Name     string `json:"name"`
		Duration int    `json:"duration"`
		Position int    `json:"position"`
	} `json:"track"`
}

func (s *Session) pollStatus(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/status", nil)
	if err != nil {
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("spotify: status fetch failed", "err", err)
		return
	}
	defer resp.Body.Close()

	var status librespotStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return
	}

	ev := models.EventPlaying
	switch {
	case status.Stopped || status.Track == nil:
		ev = models.EventStopped
	case status.Paused:
		ev = models.EventPaused
	}

	pos, dur := 0, 0
	if status.Track != nil {
		pos = status.Track.Position
		dur = status.Track.Duration
	}

	s.mu.Lock()
	// A stop observed right at the end of a playing track means the track
	// finished rather than the user stopping it.
	if ev == models.EventStopped && s.event == models.EventPlaying &&
		s.durationMS > 0 && s.positionMS >= s.durationMS-finishedWindowMS {
		ev = models.EventFinishedTrack
	}
	changed := ev != s.event
	s.event = ev
	s.positionMS = pos
	s.posAt = time.Now()
	s.durationMS = dur
	cb := s.onEvent
	s.mu.Unlock()

	if changed && cb != nil {
		cb(ev)
	}
}

// markEvent sets the event state optimistically after a transport command;
// the status poller corrects it on the next cycle if the engine disagreed.
func (s *Session) markEvent(ev models.PlayerEvent) {
	s.mu.Lock()
	if s.event == models.EventPlaying && ev != models.EventPlaying && !s.posAt.IsZero() {
		s.positionMS += int(time.Since(s.posAt) / time.Millisecond)
	}
	s.posAt = time.Now()
	changed := ev != s.event
	s.event = ev
	cb := s.onEvent
	s.mu.Unlock()

	if changed && cb != nil {
		cb(ev)
	}
}

func (s *Session) setState(ev models.PlayerEvent, positionMS, durationMS int) {
	s.mu.Lock()
	changed := ev != s.event
	s.event = ev
	s.positionMS = positionMS
	s.posAt = time.Now()
	s.durationMS = durationMS
	cb := s.onEvent
	s.mu.Unlock()

	if changed && cb != nil {
		cb(ev)
	}
}

// post issues a fire-and-forget command to the go-librespot API.
func (s *Session) post(path string, body map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, reader)
	if err != nil {
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("spotify: command failed", "path", path, "err", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		slog.Debug("spotify: command rejected", "path", path, "status", resp.StatusCode)
	}
}

// String describes the session target, for logs.
func (s *Session) String() string {
	return fmt.Sprintf("go-librespot@%s", s.baseURL)
}
