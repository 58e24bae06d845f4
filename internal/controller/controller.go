// Package controller ties the playback engine, queue and library together
// behind one facade. It is the single place that reacts to engine events
// and fans state changes out to the event bus and the D-Bus presence.
package controller

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ncspot/mprisd/internal/events"
	"github.com/ncspot/mprisd/internal/models"
)

// Engine is the playback-engine slice the controller drives.
type Engine interface {
	CurrentEvent() models.PlayerEvent
	ProgressMS() int
	Volume() uint16
	SetVolume(vol uint16)
	Play()
	Pause()
	Stop()
	SeekMS(positionMS int)
	SeekRelativeMS(deltaMS int)
}

// Queue is the play-queue slice the controller drives.
type Queue interface {
	Current() models.Playable
	TogglePlayback()
	Next(force bool)
	Previous()
	Shuffle() bool
	SetShuffle(on bool)
	Repeat() models.LoopMode
	SetRepeat(mode models.LoopMode)
}

// Library answers and mutates saved-track state.
type Library interface {
	IsSavedTrack(t *models.Track) bool
	SaveTrack(id string)
	RemoveTrack(id string)
}

// Notifier receives change notifications for the D-Bus presence.
type Notifier interface {
	Update()
}

// Controller is the shared state facade. All consumers (HTTP API, MPRIS
// adapter, engine callbacks) funnel through it.
type Controller struct {
	engine Engine
	queue  Queue
	lib    Library
	bus    *events.Bus

	mu       sync.Mutex
	notifier Notifier
}

func New(engine Engine, queue Queue, lib Library, bus *events.Bus) *Controller {
	return &Controller{engine: engine, queue: queue, lib: lib, bus: bus}
}

// AttachNotifier registers the D-Bus presence. Set once during startup,
// after the manager exists; nil stays valid for headless runs.
func (c *Controller) AttachNotifier(n Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

// Now builds a fresh state snapshot from the live engine and queue.
func (c *Controller) Now() models.NowPlaying {
	current := c.queue.Current()
	now := models.NowPlaying{
		State:      string(models.StatusFromEvent(c.engine.CurrentEvent())),
		Track:      current.Title(),
		CoverURL:   current.CoverURL(),
		URI:        current.URI(),
		PositionMS: c.engine.ProgressMS(),
		DurationMS: current.DurationMS(),
		Shuffle:    c.queue.Shuffle(),
		Repeat:     c.queue.Repeat().String(),
		Volume:     float64(c.engine.Volume()) / float64(models.MaxVolume),
	}
	if t := current.Track; t != nil {
		now.Artists = t.Artists
		now.Album = t.Album
		now.Saved = c.lib.IsSavedTrack(t)
	}
	return now
}

// HandleEvent is the engine's event callback. A finished track advances the
// queue before the new state goes out.
func (c *Controller) HandleEvent(ev models.PlayerEvent) {
	if ev == models.EventFinishedTrack {
		c.queue.Next(false)
	}
	c.publish()
}

// Trigger publishes a fresh snapshot. It backs the UI-refresh notification
// the MPRIS settings writes fire.
func (c *Controller) Trigger() { c.publish() }

func (c *Controller) publish() {
	c.bus.Publish(c.Now())
	c.mu.Lock()
	n := c.notifier
	c.mu.Unlock()
	if n != nil {
		n.Update()
	}
}

// Command executes a named transport command. Unknown names are the only
// error; commands that cannot apply in the current state are no-ops.
func (c *Controller) Command(name string) error {
	switch strings.ToLower(name) {
	case "play":
		c.engine.Play()
	case "pause":
		c.engine.Pause()
	case "playpause", "toggle":
		c.queue.TogglePlayback()
	case "stop":
		c.engine.Stop()
	case "next":
		c.queue.Next(true)
	case "previous", "prev":
		c.queue.Previous()
	case "shuffle":
		c.queue.SetShuffle(!c.queue.Shuffle())
	case "repeat":
		c.queue.SetRepeat(nextLoopMode(c.queue.Repeat()))
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	c.publish()
	return nil
}

// nextLoopMode cycles off -> playlist -> track -> off.
func nextLoopMode(m models.LoopMode) models.LoopMode {
	switch m {
	case models.LoopNone:
		return models.LoopPlaylist
	case models.LoopPlaylist:
		return models.LoopTrack
	default:
		return models.LoopNone
	}
}

// SetVolume applies a normalized volume in [0.0, 1.0].
func (c *Controller) SetVolume(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("volume %v out of range", f)
	}
	c.engine.SetVolume(uint16(float64(models.VolumePercent) * f * 100.0))
	c.publish()
	return nil
}

// SeekTo seeks within the current item. Out-of-range positions are clamped
// by the engine.
func (c *Controller) SeekTo(positionMS int) error {
	if c.queue.Current().Empty() {
		return fmt.Errorf("nothing playing")
	}
	c.engine.SeekMS(positionMS)
	c.publish()
	return nil
}

// SaveCurrent stars the current track. Episodes are not saveable.
func (c *Controller) SaveCurrent() error {
	t := c.queue.Current().Track
	if t == nil || t.ID == "" {
		return fmt.Errorf("no saveable track playing")
	}
	c.lib.SaveTrack(t.ID)
	c.publish()
	return nil
}

// RemoveCurrent unstars the current track.
func (c *Controller) RemoveCurrent() error {
	t := c.queue.Current().Track
	if t == nil || t.ID == "" {
		return fmt.Errorf("no saveable track playing")
	}
	c.lib.RemoveTrack(t.ID)
	c.publish()
	return nil
}
