package models

// PlayerEvent is the playback engine's current event state.
type PlayerEvent int

const (
	EventStopped PlayerEvent = iota
	EventPlaying
	EventPaused
	EventFinishedTrack
)

// PlaybackStatus is the externally visible transport state.
type PlaybackStatus string

const (
	StatusPlaying PlaybackStatus = "Playing"
	StatusPaused  PlaybackStatus = "Paused"
	StatusStopped PlaybackStatus = "Stopped"
)

// StatusFromEvent derives the transport state from an engine event.
// A finished track still counts as playing (the next item is about to start).
func StatusFromEvent(ev PlayerEvent) PlaybackStatus {
	switch ev {
	case EventPlaying, EventFinishedTrack:
		return StatusPlaying
	case EventPaused:
		return StatusPaused
	default:
		return StatusStopped
	}
}

// LoopMode is the queue repeat setting.
type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopTrack
	LoopPlaylist
)

// String returns the external token for the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopTrack:
		return "Track"
	case LoopPlaylist:
		return "Playlist"
	default:
		return "None"
	}
}

// ParseLoopMode maps an external token to a loop mode.
// Unrecognized tokens normalize to LoopNone.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "Track":
		return LoopTrack
	case "Playlist":
		return LoopPlaylist
	default:
		return LoopNone
	}
}

// Engine volume scale. The engine stores volume as a uint16; external
// consumers see a normalized float in [0.0, 1.0].
const (
	MaxVolume     uint16 = 65535
	VolumePercent uint16 = MaxVolume / 100
)
