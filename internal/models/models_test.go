package models_test

import (
	"testing"

	"github.com/ncspot/mprisd/internal/models"
)

func TestStatusFromEvent(t *testing.T) {
	cases := []struct {
		ev   models.PlayerEvent
		want models.PlaybackStatus
	}{
		{models.EventPlaying, models.StatusPlaying},
		{models.EventFinishedTrack, models.StatusPlaying},
		{models.EventPaused, models.StatusPaused},
		{models.EventStopped, models.StatusStopped},
	}
	for _, c := range cases {
		if got := models.StatusFromEvent(c.ev); got != c.want {
			t.Errorf("StatusFromEvent(%v) = %q, want %q", c.ev, got, c.want)
		}
	}
}

func TestParseLoopMode(t *testing.T) {
	cases := []struct {
		in   string
		want models.LoopMode
	}{
		{"None", models.LoopNone},
		{"Track", models.LoopTrack},
		{"Playlist", models.LoopPlaylist},
		{"garbage", models.LoopNone},
		{"", models.LoopNone},
	}
	for _, c := range cases {
		if got := models.ParseLoopMode(c.in); got != c.want {
			t.Errorf("ParseLoopMode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLoopModeRoundTrip(t *testing.T) {
	for _, m := range []models.LoopMode{models.LoopNone, models.LoopTrack, models.LoopPlaylist} {
		if got := models.ParseLoopMode(m.String()); got != m {
			t.Errorf("round trip of %v via %q gave %v", m, m.String(), got)
		}
	}
}

func TestPlayableAccessors(t *testing.T) {
	track := models.TrackPlayable(&models.Track{
		ID:         "abc",
		Title:      "Song",
		DurationMS: 180000,
		CoverURL:   "https://img/1",
		URL:        "https://open.spotify.com/track/abc",
	})
	if track.URI() != "spotify:track:abc" {
		t.Errorf("track URI = %q", track.URI())
	}
	if track.Title() != "Song" || track.DurationMS() != 180000 {
		t.Errorf("unexpected track accessors: %q %d", track.Title(), track.DurationMS())
	}

	ep := models.EpisodePlayable(&models.Episode{ID: "xyz", Name: "Ep 1", DurationMS: 60000})
	if ep.URI() != "spotify:episode:xyz" {
		t.Errorf("episode URI = %q", ep.URI())
	}
	if ep.Title() != "Ep 1" {
		t.Errorf("episode title = %q", ep.Title())
	}

	var none models.Playable
	if !none.Empty() {
		t.Error("zero Playable should be empty")
	}
	if none.URI() != "" || none.ID() != "" || none.DurationMS() != 0 {
		t.Error("zero Playable accessors should return zero values")
	}

	idless := models.TrackPlayable(&models.Track{Title: "No ID"})
	if idless.URI() != "" {
		t.Errorf("ID-less track URI = %q, want empty", idless.URI())
	}
}
