// Package queue implements the play queue: an ordered list of playables with
// a current index, shuffle order, and repeat setting. The queue drives the
// playback engine; it does not produce audio itself.
package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ncspot/mprisd/internal/models"
)

// Player is the audio backend surface the queue drives.
type Player interface {
	Load(item models.Playable, startPlaying bool, positionMS int)
	Resume()
	Pause()
	Stop()
	CurrentEvent() models.PlayerEvent
}

// Queue is safe for concurrent use; all access goes through an internal
// mutex. The engine is never called while the lock is held.
type Queue struct {
	mu      sync.Mutex
	player  Player
	items   []models.Playable
	order   []int // shuffle play order; nil when shuffle is off
	current int   // index into items; -1 when nothing is current
	repeat  models.LoopMode
	rng     *rand.Rand
}

// New creates an empty queue driving the given player.
func New(player Player) *Queue {
	return &Queue{
		player:  player,
		current: -1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Current returns the current item, or the zero Playable when the queue has
// no current item.
func (q *Queue) Current() models.Playable {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current < 0 || q.current >= len(q.items) {
		return models.Playable{}
	}
	return q.items[q.current]
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queued items in list order.
func (q *Queue) Items() []models.Playable {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.Playable, len(q.items))
	copy(out, q.items)
	return out
}

// Append adds an item at the end of the queue and returns its index.
func (q *Queue) Append(item models.Playable) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
	idx := len(q.items) - 1
	if q.order != nil {
		q.insertIntoOrderLocked(idx)
	}
	return idx
}

// AppendNext inserts the items directly after the current item and returns
// the index of the first inserted item. On an empty queue the items are
// inserted at the front.
func (q *Queue) AppendNext(items []models.Playable) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(items) == 0 {
		if q.current >= 0 {
			return q.current
		}
		return 0
	}

	at := 0
	if q.current >= 0 {
		at = q.current + 1
	}
	tail := make([]models.Playable, len(q.items[at:]))
	copy(tail, q.items[at:])
	q.items = append(q.items[:at], append(items, tail...)...)

	if q.order != nil {
		q.rebuildOrderLocked()
	}
	return at
}

// Clear stops playback and empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.current = -1
	if q.order != nil {
		q.order = []int{}
	}
	q.mu.Unlock()
	q.player.Stop()
}

// Play starts playback at the given index. When reshuffle is set and shuffle
// is on, the shuffle order is regenerated. When shuffleIndex is set and
// shuffle is on, a random index is played instead of the given one.
func (q *Queue) Play(index int, reshuffle, shuffleIndex bool) {
	q.mu.Lock()
	if shuffleIndex && q.order != nil && len(q.items) > 0 {
		index = q.rng.Intn(len(q.items))
	}
	if index < 0 || index >= len(q.items) {
		q.mu.Unlock()
		return
	}
	q.current = index
	if reshuffle && q.order != nil {
		q.rebuildOrderLocked()
	}
	item := q.items[index]
	q.mu.Unlock()
	q.player.Load(item, true, 0)
}

// TogglePlayback pauses a playing queue, resumes a paused one, and restarts
// the current item when stopped.
func (q *Queue) TogglePlayback() {
	switch q.player.CurrentEvent() {
	case models.EventPlaying, models.EventFinishedTrack:
		q.player.Pause()
	case models.EventPaused:
		q.player.Resume()
	default:
		q.mu.Lock()
		idx := q.current
		q.mu.Unlock()
		if idx >= 0 {
			q.Play(idx, false, false)
		}
	}
}

// Next advances to the next item. With force set the current item is always
// skipped, even under repeat-track. At the end of the queue, repeat-playlist
// wraps to the start; otherwise playback stops.
func (q *Queue) Next(force bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	if !force && q.repeat == models.LoopTrack && q.current >= 0 {
		idx := q.current
		q.mu.Unlock()
		q.Play(idx, false, false)
		return
	}
	ni := q.nextIndexLocked()
	if ni < 0 && q.repeat == models.LoopPlaylist {
		ni = q.firstIndexLocked()
	}
	q.mu.Unlock()

	if ni < 0 {
		q.player.Stop()
		return
	}
	q.Play(ni, false, false)
}

// Previous moves to the previous item, or restarts the current item when
// already at the start of the queue.
func (q *Queue) Previous() {
	q.mu.Lock()
	pi := q.prevIndexLocked()
	if pi < 0 {
		pi = q.current
	}
	q.mu.Unlock()
	if pi >= 0 {
		q.Play(pi, false, false)
	}
}

// Shuffle reports whether shuffle mode is on.
func (q *Queue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.order != nil
}

// SetShuffle turns shuffle mode on or off. Turning it on generates a fresh
// random play order.
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !on {
		q.order = nil
		return
	}
	q.rebuildOrderLocked()
}

// Repeat returns the repeat setting.
func (q *Queue) Repeat() models.LoopMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

// SetRepeat sets the repeat setting.
func (q *Queue) SetRepeat(mode models.LoopMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

// rebuildOrderLocked generates a new random play order over all items.
func (q *Queue) rebuildOrderLocked() {
	q.order = q.rng.Perm(len(q.items))
}

// insertIntoOrderLocked places a newly appended index at a random not-yet-
// played position in the shuffle order.
func (q *Queue) insertIntoOrderLocked(idx int) {
	pos := q.orderPosLocked(q.current)
	lo := pos + 1
	at := lo
	if len(q.order) > lo {
		at = lo + q.rng.Intn(len(q.order)-lo+1)
	}
	q.order = append(q.order, 0)
	copy(q.order[at+1:], q.order[at:])
	q.order[at] = idx
}

func (q *Queue) orderPosLocked(idx int) int {
	for i, v := range q.order {
		if v == idx {
			return i
		}
	}
	return -1
}

func (q *Queue) firstIndexLocked() int {
	if len(q.items) == 0 {
		return -1
	}
	if q.order != nil && len(q.order) > 0 {
		return q.order[0]
	}
	return 0
}

func (q *Queue) nextIndexLocked() int {
	if q.current < 0 || len(q.items) == 0 {
		return -1
	}
	if q.order == nil {
		if q.current+1 < len(q.items) {
			return q.current + 1
		}
		return -1
	}
	pos := q.orderPosLocked(q.current)
	if pos >= 0 && pos+1 < len(q.order) {
		return q.order[pos+1]
	}
	return -1
}

func (q *Queue) prevIndexLocked() int {
	if q.current < 0 || len(q.items) == 0 {
		return -1
	}
	if q.order == nil {
		if q.current > 0 {
			return q.current - 1
		}
		return -1
	}
	pos := q.orderPosLocked(q.current)
	if pos > 0 {
		return q.order[pos-1]
	}
	return -1
}
