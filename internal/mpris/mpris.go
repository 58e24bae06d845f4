// Package mpris exposes the player over the MPRIS D-Bus interfaces
// (org.mpris.MediaPlayer2 and org.mpris.MediaPlayer2.Player). A single
// background worker owns the bus connection, serializes all inbound
// property and method calls, and emits PropertiesChanged signals when
// playback state changes.
package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/ncspot/mprisd/internal/models"
)

const (
	// BusName is the well-known name other processes use to address us.
	BusName = "org.mpris.MediaPlayer2.ncspot"

	// ObjectPath is where the MPRIS interfaces are exported.
	ObjectPath dbus.ObjectPath = "/org/mpris/MediaPlayer2"

	rootInterface       = "org.mpris.MediaPlayer2"
	playerInterface     = "org.mpris.MediaPlayer2.Player"
	propertiesInterface = "org.freedesktop.DBus.Properties"

	identity  = "ncspot"
	uriScheme = "spotify"

	trackIDNamespace = "/org/ncspot"
)

// Engine is the playback-engine surface the adapter consumes. The engine is
// externally synchronized; every read is a consistent snapshot at call time.
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

// Queue is the play-queue surface the adapter consumes.
type Queue interface {
	Current() models.Playable
	TogglePlayback()
	Next(force bool)
	Previous()
	Clear()
	Append(item models.Playable) int
	AppendNext(items []models.Playable) int
	Play(index int, reshuffle, shuffleIndex bool)
	Shuffle() bool
	SetShuffle(on bool)
	Repeat() models.LoopMode
	SetRepeat(mode models.LoopMode)
}

// Catalog resolves content IDs to full records.
type Catalog interface {
	Track(id string) (*models.Track, error)
	Album(id string) ([]*models.Track, error)
	Playlist(id string) ([]*models.Track, error)
	ShowEpisodes(id string) ([]*models.Episode, error)
	Episode(id string) (*models.Episode, error)
	ArtistTopTracks(id string) ([]*models.Track, error)
}

// Library answers saved-track lookups.
type Library interface {
	IsSavedTrack(t *models.Track) bool
}

// Refresher wakes the UI event system after a settings write.
type Refresher interface {
	Trigger()
}
