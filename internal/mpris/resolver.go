package mpris

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ncspot/mprisd/internal/models"
)

// ContentKind identifies what a canonical URI points at.
type ContentKind int

const (
	KindTrack ContentKind = iota
	KindAlbum
	KindPlaylist
	KindShow
	KindEpisode
	KindArtist
)

// ResolvedContent is a parsed (kind, id) pair ready for fetching.
type ResolvedContent struct {
	Kind ContentKind
	ID   string
}

// shareLinkRE matches open.spotify.com share links, with or without the
// legacy /user/<name>/ segment before playlists. Artists have no share-link
// form here; they are reachable through canonical URIs only.
var shareLinkRE = regexp.MustCompile(`^https?://open\.spotify\.com(?:/user/[^/]+)?/(album|track|playlist|show|episode)/([A-Za-z0-9]+)`)

var kindTokens = map[string]ContentKind{
	"track":    KindTrack,
	"album":    KindAlbum,
	"playlist": KindPlaylist,
	"show":     KindShow,
	"episode":  KindEpisode,
	"artist":   KindArtist,
}

// ParseURI parses a web share link or a canonical "spotify:kind:id" string.
// Anything else yields no result; malformed input never panics.
func ParseURI(raw string) (ResolvedContent, bool) {
	if strings.Contains(raw, "open.spotify.com") {
		m := shareLinkRE.FindStringSubmatch(raw)
		if m == nil {
			return ResolvedContent{}, false
		}
		raw = uriScheme + ":" + m[1] + ":" + m[2]
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] != uriScheme || parts[2] == "" {
		return ResolvedContent{}, false
	}
	kind, ok := kindTokens[parts[1]]
	if !ok {
		return ResolvedContent{}, false
	}
	return ResolvedContent{Kind: kind, ID: parts[2]}, true
}

// Resolver turns resolved content into queue contents.
type Resolver struct {
	catalog Catalog
	queue   Queue
}

func NewResolver(catalog Catalog, queue Queue) *Resolver {
	return &Resolver{catalog: catalog, queue: queue}
}

// FetchAndEnqueue fetches the content behind rc, replaces the queue with it
// and starts playback at the first item. shuffle is the shuffle state read
// before the replacement; with shuffle on, multi-item content gets a fresh
// shuffle order that still starts at the first fetched item. A failed or
// empty fetch leaves the queue untouched.
func (r *Resolver) FetchAndEnqueue(rc ResolvedContent, shuffle bool) {
	switch rc.Kind {
	case KindTrack:
		track, err := r.catalog.Track(rc.ID)
		if err != nil || track == nil {
			slog.Warn("track lookup failed", "id", rc.ID, "error", err)
			return
		}
		r.replaceAndPlay([]models.Playable{models.TrackPlayable(track)}, shuffle)
	case KindEpisode:
		episode, err := r.catalog.Episode(rc.ID)
		if err != nil || episode == nil {
			slog.Warn("episode lookup failed", "id", rc.ID, "error", err)
			return
		}
		r.replaceAndPlay([]models.Playable{models.EpisodePlayable(episode)}, shuffle)
	case KindAlbum:
		tracks, err := r.catalog.Album(rc.ID)
		if err != nil {
			slog.Warn("album lookup failed", "id", rc.ID, "error", err)
			return
		}
		r.replaceAndPlay(trackPlayables(tracks), shuffle)
	case KindPlaylist:
		tracks, err := r.catalog.Playlist(rc.ID)
		if err != nil {
			slog.Warn("playlist lookup failed", "id", rc.ID, "error", err)
			return
		}
		r.replaceAndPlay(trackPlayables(tracks), shuffle)
	case KindArtist:
		tracks, err := r.catalog.ArtistTopTracks(rc.ID)
		if err != nil {
			slog.Warn("artist top tracks lookup failed", "id", rc.ID, "error", err)
			return
		}
		r.replaceAndPlay(trackPlayables(tracks), shuffle)
	case KindShow:
		episodes, err := r.catalog.ShowEpisodes(rc.ID)
		if err != nil {
			slog.Warn("show lookup failed", "id", rc.ID, "error", err)
			return
		}
		// The API lists newest first; play order is oldest first.
		items := make([]models.Playable, 0, len(episodes))
		for i := len(episodes) - 1; i >= 0; i-- {
			items = append(items, models.EpisodePlayable(episodes[i]))
		}
		r.replaceAndPlay(items, shuffle)
	}
}

func (r *Resolver) replaceAndPlay(items []models.Playable, shuffle bool) {
	if len(items) == 0 {
		return
	}
	r.queue.Clear()
	index := r.queue.AppendNext(items)
	r.queue.Play(index, shuffle, shuffle)
}

func trackPlayables(tracks []*models.Track) []models.Playable {
	items := make([]models.Playable, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, models.TrackPlayable(t))
	}
	return items
}
