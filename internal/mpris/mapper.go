package mpris

import (
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/ncspot/mprisd/internal/models"
)

// Mapper translates engine and queue state into the MPRIS property
// vocabulary.
type Mapper struct {
	engine  Engine
	catalog Catalog
	library Library
}

func NewMapper(engine Engine, catalog Catalog, library Library) *Mapper {
	return &Mapper{engine: engine, catalog: catalog, library: library}
}

// Status derives the transport state from the engine's current event. A
// finished track reads as Playing since the next item starts immediately.
func (m *Mapper) Status() models.PlaybackStatus {
	return models.StatusFromEvent(m.engine.CurrentEvent())
}

// Metadata maps the given playable onto the MPRIS metadata dictionary.
// Every key is always present; absent data maps to a type-correct zero
// value so consumers never observe a partial dictionary.
func (m *Mapper) Metadata(current models.Playable) map[string]dbus.Variant {
	current = m.withCoverArt(current)

	var (
		length      int64
		artURL      string
		album       string
		title       string
		shareURL    string
		discNumber  int32
		trackNumber int32
		rating      float64
	)
	albumArtists := []string{}
	artists := []string{}

	if !current.Empty() {
		length = int64(current.DurationMS()) * 1000
		artURL = current.CoverURL()
		title = current.Title()
		shareURL = current.ShareURL()
	}
	if t := current.Track; t != nil {
		album = t.Album
		if t.AlbumArtists != nil {
			albumArtists = t.AlbumArtists
		}
		if t.Artists != nil {
			artists = t.Artists
		}
		discNumber = int32(t.DiscNumber)
		trackNumber = int32(t.TrackNumber)
		if m.library.IsSavedTrack(t) {
			rating = 1.0
		}
	}

	return map[string]dbus.Variant{
		"mpris:trackid":     dbus.MakeVariant(trackIDPath(current)),
		"mpris:length":      dbus.MakeVariant(length),
		"mpris:artUrl":      dbus.MakeVariant(artURL),
		"xesam:album":       dbus.MakeVariant(album),
		"xesam:albumArtist": dbus.MakeVariant(albumArtists),
		"xesam:artist":      dbus.MakeVariant(artists),
		"xesam:discNumber":  dbus.MakeVariant(discNumber),
		"xesam:title":       dbus.MakeVariant(title),
		"xesam:trackNumber": dbus.MakeVariant(trackNumber),
		"xesam:url":         dbus.MakeVariant(shareURL),
		"xesam:userRating":  dbus.MakeVariant(rating),
	}
}

// withCoverArt fetches the full track record when the current track carries
// no cover art, which happens for tracks that entered the queue as
// simplified records. A failed fetch leaves the original record unchanged.
func (m *Mapper) withCoverArt(p models.Playable) models.Playable {
	t := p.Track
	if t == nil || t.CoverURL != "" || t.ID == "" {
		return p
	}
	full, err := m.catalog.Track(t.ID)
	if err != nil || full == nil {
		slog.Debug("cover art lookup failed", "track", t.ID, "error", err)
		return p
	}
	return models.TrackPlayable(full)
}

// trackIDPath derives the D-Bus track identifier for a playable. The MPRIS
// schema requires a structurally valid object path even when nothing is
// playing, hence the "0" sentinel.
func trackIDPath(p models.Playable) dbus.ObjectPath {
	uri := p.URI()
	if uri == "" {
		return dbus.ObjectPath(trackIDNamespace + "/0")
	}
	return dbus.ObjectPath(trackIDNamespace + "/" + strings.ReplaceAll(uri, ":", "/"))
}
