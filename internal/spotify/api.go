package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ncspot/mprisd/internal/models"
)

const (
	defaultAPIBase  = "https://api.spotify.com/v1"
	apiFetchTimeout = 10 * time.Second
	maxPages        = 20 // safety cap when following pagination links
)

// APIClient is the Web API catalog client. Requests are rate-limited and
// carry a bearer token.
type APIClient struct {
	base    string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAPIClient creates a catalog client. An empty base means the public API
// endpoint.
func NewAPIClient(base, token string) *APIClient {
	if base == "" {
		base = defaultAPIBase
	}
	return &APIClient{
		base:    strings.TrimRight(base, "/"),
		token:   token,
		client:  &http.Client{Timeout: apiFetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
}

// Web API response shapes (only the fields we consume).

type apiImage struct {
	URL string `json:"url"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbumRef struct {
	Name    string      `json:"name"`
	Images  []apiImage  `json:"images"`
	Artists []apiArtist `json:"artists"`
}

type apiTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	DurationMS   int               `json:"duration_ms"`
	DiscNumber   int               `json:"disc_number"`
	TrackNumber  int               `json:"track_number"`
	Album        *apiAlbumRef      `json:"album"`
	Artists      []apiArtist       `json:"artists"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type apiEpisode struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	DurationMS   int               `json:"duration_ms"`
	Images       []apiImage        `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type apiTrackPage struct {
	Items []apiTrack `json:"items"`
	Next  string     `json:"next"`
}

type apiPlaylistTrackPage struct {
	Items []struct {
		Track *apiTrack `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

type apiEpisodePage struct {
	Items []apiEpisode `json:"items"`
	Next  string       `json:"next"`
}

// Track fetches a single full track record.
func (c *APIClient) Track(id string) (*models.Track, error) {
	var at apiTrack
	if err := c.getJSON(c.base+"/tracks/"+id, &at); err != nil {
		return nil, err
	}
	return trackFromAPI(at, at.Album), nil
}

// Album fetches an album's tracks in catalog order. Simplified album tracks
// carry no album or cover data of their own, so those come from the album
// record.
func (c *APIClient) Album(id string) ([]*models.Track, error) {
	var album struct {
		apiAlbumRef
		Tracks apiTrackPage `json:"tracks"`
	}
	if err := c.getJSON(c.base+"/albums/"+id, &album); err != nil {
		return nil, err
	}

	items := album.Tracks.Items
	next := album.Tracks.Next
	for page := 0; next != "" && page < maxPages; page++ {
		var more apiTrackPage
		if err := c.getJSON(next, &more); err != nil {
			return nil, err
		}
		items = append(items, more.Items...)
		next = more.Next
	}

	tracks := make([]*models.Track, 0, len(items))
	for _, at := range items {
		tracks = append(tracks, trackFromAPI(at, &album.apiAlbumRef))
	}
	return tracks, nil
}

// Playlist fetches a playlist's tracks in catalog order.
func (c *APIClient) Playlist(id string) ([]*models.Track, error) {
	var tracks []*models.Track
	next := c.base + "/playlists/" + id + "/tracks"
	for page := 0; next != "" && page < maxPages; page++ {
		var p apiPlaylistTrackPage
		if err := c.getJSON(next, &p); err != nil {
			return nil, err
		}
		for _, item := range p.Items {
			if item.Track == nil {
				continue // removed or unavailable entries
			}
			tracks = append(tracks, trackFromAPI(*item.Track, item.Track.Album))
		}
		next = p.Next
	}
	return tracks, nil
}

// ShowEpisodes fetches a show's episodes in catalog order (newest first, as
// the API returns them).
func (c *APIClient) ShowEpisodes(id string) ([]*models.Episode, error) {
	var episodes []*models.Episode
	next := c.base + "/shows/" + id + "/episodes"
	for page := 0; next != "" && page < maxPages; page++ {
		var p apiEpisodePage
		if err := c.getJSON(next, &p); err != nil {
			return nil, err
		}
		for _, ae := range p.Items {
			episodes = append(episodes, episodeFromAPI(ae))
		}
		next = p.Next
	}
	return episodes, nil
}

// Episode fetches a single episode record.
func (c *APIClient) Episode(id string) (*models.Episode, error) {
	var ae apiEpisode
	if err := c.getJSON(c.base+"/episodes/"+id, &ae); err != nil {
		return nil, err
	}
	return episodeFromAPI(ae), nil
}

// ArtistTopTracks fetches an artist's top tracks.
func (c *APIClient) ArtistTopTracks(id string) ([]*models.Track, error) {
	var resp struct {
		Tracks []apiTrack `json:"tracks"`
	}
	if err := c.getJSON(c.base+"/artists/"+id+"/top-tracks?market=from_token", &resp); err != nil {
		return nil, err
	}
	tracks := make([]*models.Track, 0, len(resp.Tracks))
	for _, at := range resp.Tracks {
		tracks = append(tracks, trackFromAPI(at, at.Album))
	}
	return tracks, nil
}

// getJSON performs a rate-limited authorized GET and decodes the response.
func (c *APIClient) getJSON(url string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), apiFetchTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func trackFromAPI(at apiTrack, album *apiAlbumRef) *models.Track {
	t := &models.Track{
		ID:          at.ID,
		Title:       at.Name,
		DurationMS:  at.DurationMS,
		DiscNumber:  at.DiscNumber,
		TrackNumber: at.TrackNumber,
		URL:         at.ExternalURLs["spotify"],
	}
	for _, a := range at.Artists {
		t.Artists = append(t.Artists, a.Name)
	}
	if album != nil {
		t.Album = album.Name
		if len(album.Images) > 0 {
			t.CoverURL = album.Images[0].URL
		}
		for _, a := range album.Artists {
			t.AlbumArtists = append(t.AlbumArtists, a.Name)
		}
	}
	return t
}

func episodeFromAPI(ae apiEpisode) *models.Episode {
	e := &models.Episode{
		ID:         ae.ID,
		Name:       ae.Name,
		DurationMS: ae.DurationMS,
		URL:        ae.ExternalURLs["spotify"],
	}
	if len(ae.Images) > 0 {
		e.CoverURL = ae.Images[0].URL
	}
	return e
}
