package mpris

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ncspot/mprisd/internal/models"
)

type fakeEngine struct {
	event      models.PlayerEvent
	progressMS int
	volume     uint16
	calls      []string
	seeks      []int
	relSeeks   []int
}

func (e *fakeEngine) CurrentEvent() models.PlayerEvent { return e.event }
func (e *fakeEngine) ProgressMS() int                  { return e.progressMS }
func (e *fakeEngine) Volume() uint16                   { return e.volume }

func (e *fakeEngine) SetVolume(v uint16) {
	e.volume = v
	e.calls = append(e.calls, "SetVolume")
}

func (e *fakeEngine) Play()  { e.calls = append(e.calls, "Play") }
func (e *fakeEngine) Pause() { e.calls = append(e.calls, "Pause") }
func (e *fakeEngine) Stop()  { e.calls = append(e.calls, "Stop") }

func (e *fakeEngine) SeekMS(p int) {
	e.seeks = append(e.seeks, p)
	e.calls = append(e.calls, "Seek")
}

func (e *fakeEngine) SeekRelativeMS(d int) { e.relSeeks = append(e.relSeeks, d) }

type fakeQueue struct {
	current models.Playable
	items   []models.Playable
	shuffle bool
	repeat  models.LoopMode
	calls   []string

	playIndex        int
	playReshuffle    bool
	playShuffleIndex bool
}

func (q *fakeQueue) Current() models.Playable { return q.current }
func (q *fakeQueue) TogglePlayback()          { q.calls = append(q.calls, "TogglePlayback") }
func (q *fakeQueue) Next(force bool)          { q.calls = append(q.calls, fmt.Sprintf("Next(%v)", force)) }
func (q *fakeQueue) Previous()                { q.calls = append(q.calls, "Previous") }

func (q *fakeQueue) Clear() {
	q.calls = append(q.calls, "Clear")
	q.items = nil
}

func (q *fakeQueue) Append(item models.Playable) int {
	q.items = append(q.items, item)
	q.calls = append(q.calls, "Append")
	return len(q.items) - 1
}

func (q *fakeQueue) AppendNext(items []models.Playable) int {
	start := len(q.items)
	q.items = append(q.items, items...)
	q.calls = append(q.calls, "AppendNext")
	return start
}

func (q *fakeQueue) Play(index int, reshuffle, shuffleIndex bool) {
	q.playIndex = index
	q.playReshuffle = reshuffle
	q.playShuffleIndex = shuffleIndex
	q.calls = append(q.calls, "Play")
}

func (q *fakeQueue) Shuffle() bool                  { return q.shuffle }
func (q *fakeQueue) SetShuffle(on bool)             { q.shuffle = on }
func (q *fakeQueue) Repeat() models.LoopMode        { return q.repeat }
func (q *fakeQueue) SetRepeat(mode models.LoopMode) { q.repeat = mode }

var errNotFound = errors.New("not found")

type fakeCatalog struct {
	tracks    map[string]*models.Track
	albums    map[string][]*models.Track
	playlists map[string][]*models.Track
	episodes  map[string]*models.Episode
	shows     map[string][]*models.Episode
	topTracks map[string][]*models.Track

	trackLookups []string
}

func (c *fakeCatalog) Track(id string) (*models.Track, error) {
	c.trackLookups = append(c.trackLookups, id)
	if t, ok := c.tracks[id]; ok {
		return t, nil
	}
	return nil, errNotFound
}

func (c *fakeCatalog) Album(id string) ([]*models.Track, error) {
	if ts, ok := c.albums[id]; ok {
		return ts, nil
	}
	return nil, errNotFound
}

func (c *fakeCatalog) Playlist(id string) ([]*models.Track, error) {
	if ts, ok := c.playlists[id]; ok {
		return ts, nil
	}
	return nil, errNotFound
}

func (c *fakeCatalog) ShowEpisodes(id string) ([]*models.Episode, error) {
	if es, ok := c.shows[id]; ok {
		return es, nil
	}
	return nil, errNotFound
}

func (c *fakeCatalog) Episode(id string) (*models.Episode, error) {
	if e, ok := c.episodes[id]; ok {
		return e, nil
	}
	return nil, errNotFound
}

func (c *fakeCatalog) ArtistTopTracks(id string) ([]*models.Track, error) {
	if ts, ok := c.topTracks[id]; ok {
		return ts, nil
	}
	return nil, errNotFound
}

type fakeLibrary struct {
	saved map[string]bool
}

func (l *fakeLibrary) IsSavedTrack(t *models.Track) bool {
	return t != nil && l.saved[t.ID]
}

type fakeRefresh struct {
	triggers int
}

func (r *fakeRefresh) Trigger() { r.triggers++ }

type emitted struct {
	path   dbus.ObjectPath
	name   string
	values []interface{}
}

type fakeConn struct {
	mu      sync.Mutex
	signals []emitted
	closed  bool
}

func (c *fakeConn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = append(c.signals, emitted{path: path, name: name, values: values})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) emitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.signals)
}

func (c *fakeConn) lastSignal() (emitted, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.signals) == 0 {
		return emitted{}, false
	}
	return c.signals[len(c.signals)-1], true
}
