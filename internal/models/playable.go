// Package models defines the data structures shared across the daemon:
// playable items, playback state enums, and the now-playing snapshot
// published to consumers.
package models

// Track is a single track from the catalog.
type Track struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Album        string   `json:"album,omitempty"`
	AlbumArtists []string `json:"album_artists,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	DiscNumber   int      `json:"disc_number,omitempty"`
	TrackNumber  int      `json:"track_number,omitempty"`
	DurationMS   int      `json:"duration_ms"`
	CoverURL     string   `json:"cover_url,omitempty"`
	URL          string   `json:"url,omitempty"` // web share link
}

// Episode is a single podcast episode from the catalog.
type Episode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	CoverURL   string `json:"cover_url,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Playable is a queue item: either a track or a podcast episode.
// Exactly one of Track/Episode is set; the zero value means "nothing".
type Playable struct {
	Track   *Track   `json:"track,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// TrackPlayable wraps a track as a Playable.
func TrackPlayable(t *Track) Playable { return Playable{Track: t} }

// EpisodePlayable wraps an episode as a Playable.
func EpisodePlayable(e *Episode) Playable { return Playable{Episode: e} }

// Empty reports whether p holds no item.
func (p Playable) Empty() bool { return p.Track == nil && p.Episode == nil }

// ID returns the catalog ID of the item, or "" when absent.
func (p Playable) ID() string {
	switch {
	case p.Track != nil:
		return p.Track.ID
	case p.Episode != nil:
		return p.Episode.ID
	}
	return ""
}

// URI returns the canonical spotify:kind:id form, or "" for an empty or
// ID-less playable.
func (p Playable) URI() string {
	switch {
	case p.Track != nil && p.Track.ID != "":
		return "spotify:track:" + p.Track.ID
	case p.Episode != nil && p.Episode.ID != "":
		return "spotify:episode:" + p.Episode.ID
	}
	return ""
}

// Title returns the display title of the item.
func (p Playable) Title() string {
	switch {
	case p.Track != nil:
		return p.Track.Title
	case p.Episode != nil:
		return p.Episode.Name
	}
	return ""
}

// DurationMS returns the item duration in milliseconds.
func (p Playable) DurationMS() int {
	switch {
	case p.Track != nil:
		return p.Track.DurationMS
	case p.Episode != nil:
		return p.Episode.DurationMS
	}
	return 0
}

// CoverURL returns the cover art URL, possibly empty.
func (p Playable) CoverURL() string {
	switch {
	case p.Track != nil:
		return p.Track.CoverURL
	case p.Episode != nil:
		return p.Episode.CoverURL
	}
	return ""
}

// ShareURL returns the web share link, possibly empty.
func (p Playable) ShareURL() string {
	switch {
	case p.Track != nil:
		return p.Track.URL
	case p.Episode != nil:
		return p.Episode.URL
	}
	return ""
}
