package mpris

import (
	"testing"

	"github.com/ncspot/mprisd/internal/models"
)

func newTestDispatcher(engine *fakeEngine, queue *fakeQueue) (*Dispatcher, *fakeRefresh) {
	refresh := &fakeRefresh{}
	return NewDispatcher(engine, queue, NewResolver(&fakeCatalog{}, queue), refresh), refresh
}

func TestPreviousRestartsAtThreshold(t *testing.T) {
	engine := &fakeEngine{progressMS: 5000}
	queue := &fakeQueue{}
	d, _ := newTestDispatcher(engine, queue)

	d.Previous()

	if len(engine.seeks) != 1 || engine.seeks[0] != 0 {
		t.Errorf("seeks = %v, want a single seek to 0", engine.seeks)
	}
	if len(queue.calls) != 0 {
		t.Errorf("queue calls = %v, want none", queue.calls)
	}
}

func TestPreviousJumpsBackEarly(t *testing.T) {
	engine := &fakeEngine{progressMS: 4999}
	queue := &fakeQueue{}
	d, _ := newTestDispatcher(engine, queue)

	d.Previous()

	if len(queue.calls) != 1 || queue.calls[0] != "Previous" {
		t.Errorf("queue calls = %v, want [Previous]", queue.calls)
	}
	if len(engine.seeks) != 0 {
		t.Errorf("seeks = %v, want none", engine.seeks)
	}
}

func TestSeek(t *testing.T) {
	current := models.TrackPlayable(&models.Track{ID: "t", DurationMS: 200000})

	t.Run("forward", func(t *testing.T) {
		engine := &fakeEngine{progressMS: 10000}
		d, _ := newTestDispatcher(engine, &fakeQueue{current: current})
		d.Seek(5_000_000)
		if len(engine.seeks) != 1 || engine.seeks[0] != 15000 {
			t.Errorf("seeks = %v, want [15000]", engine.seeks)
		}
	})

	t.Run("clamps to start", func(t *testing.T) {
		engine := &fakeEngine{progressMS: 10000}
		d, _ := newTestDispatcher(engine, &fakeQueue{current: current})
		d.Seek(-60_000_000)
		if len(engine.seeks) != 1 || engine.seeks[0] != 0 {
			t.Errorf("seeks = %v, want [0]", engine.seeks)
		}
	})

	t.Run("overrun skips to next", func(t *testing.T) {
		engine := &fakeEngine{progressMS: 190000}
		queue := &fakeQueue{current: current}
		d, _ := newTestDispatcher(engine, queue)
		d.Seek(30_000_000)
		if len(engine.seeks) != 0 {
			t.Errorf("seeks = %v, want none on overrun", engine.seeks)
		}
		if len(queue.calls) != 1 || queue.calls[0] != "Next(true)" {
			t.Errorf("queue calls = %v, want a forced Next", queue.calls)
		}
	})

	t.Run("nothing playing", func(t *testing.T) {
		engine := &fakeEngine{}
		queue := &fakeQueue{}
		d, _ := newTestDispatcher(engine, queue)
		d.Seek(5_000_000)
		if len(engine.seeks) != 0 || len(queue.calls) != 0 {
			t.Errorf("seek with empty queue must be a no-op")
		}
	})
}

func TestSetPosition(t *testing.T) {
	current := models.TrackPlayable(&models.Track{ID: "t", DurationMS: 200000})

	t.Run("in range", func(t *testing.T) {
		engine := &fakeEngine{}
		d, _ := newTestDispatcher(engine, &fakeQueue{current: current})
		d.SetPosition(120_000_000)
		if len(engine.seeks) != 1 || engine.seeks[0] != 120000 {
			t.Errorf("seeks = %v, want [120000]", engine.seeks)
		}
	})

	t.Run("negative ignored", func(t *testing.T) {
		engine := &fakeEngine{}
		d, _ := newTestDispatcher(engine, &fakeQueue{current: current})
		d.SetPosition(-1)
		if len(engine.seeks) != 0 {
			t.Errorf("seeks = %v, want none", engine.seeks)
		}
	})

	t.Run("past end ignored", func(t *testing.T) {
		engine := &fakeEngine{}
		d, _ := newTestDispatcher(engine, &fakeQueue{current: current})
		d.SetPosition(200_000_000)
		if len(engine.seeks) != 0 {
			t.Errorf("seeks = %v, want none at or past duration", engine.seeks)
		}
	})
}

func TestForwardRewind(t *testing.T) {
	engine := &fakeEngine{}
	d, _ := newTestDispatcher(engine, &fakeQueue{})

	d.Forward()
	d.Rewind()

	if len(engine.relSeeks) != 2 || engine.relSeeks[0] != 5000 || engine.relSeeks[1] != -5000 {
		t.Errorf("relative seeks = %v, want [5000 -5000]", engine.relSeeks)
	}
}

func TestSetLoopStatus(t *testing.T) {
	tests := []struct {
		token string
		want  models.LoopMode
	}{
		{"None", models.LoopNone},
		{"Track", models.LoopTrack},
		{"Playlist", models.LoopPlaylist},
		{"bogus", models.LoopNone},
	}
	for _, tt := range tests {
		queue := &fakeQueue{repeat: models.LoopTrack}
		d, refresh := newTestDispatcher(&fakeEngine{}, queue)
		d.SetLoopStatus(tt.token)
		if queue.repeat != tt.want {
			t.Errorf("SetLoopStatus(%q): repeat = %v, want %v", tt.token, queue.repeat, tt.want)
		}
		if refresh.triggers != 1 {
			t.Errorf("SetLoopStatus(%q): triggers = %d, want 1", tt.token, refresh.triggers)
		}
	}
}

func TestVolumeFraction(t *testing.T) {
	engine := &fakeEngine{volume: models.MaxVolume}
	d, _ := newTestDispatcher(engine, &fakeQueue{})
	if got := d.VolumeFraction(); got != 1.0 {
		t.Errorf("VolumeFraction() = %v, want 1.0", got)
	}

	engine.volume = 0
	if got := d.VolumeFraction(); got != 0.0 {
		t.Errorf("VolumeFraction() = %v, want 0.0", got)
	}
}

func TestSetVolumeFraction(t *testing.T) {
	engine := &fakeEngine{volume: 100}
	d, refresh := newTestDispatcher(engine, &fakeQueue{})

	d.SetVolumeFraction(0.5)
	want := uint16(float64(models.VolumePercent) * 0.5 * 100.0)
	if engine.volume != want {
		t.Errorf("volume = %d, want %d", engine.volume, want)
	}
	if refresh.triggers != 1 {
		t.Errorf("triggers = %d, want 1", refresh.triggers)
	}

	// Out-of-range values leave the volume alone but still refresh.
	d.SetVolumeFraction(1.5)
	d.SetVolumeFraction(-0.1)
	if engine.volume != want {
		t.Errorf("volume = %d after out-of-range sets, want %d", engine.volume, want)
	}
	if refresh.triggers != 3 {
		t.Errorf("triggers = %d, want 3", refresh.triggers)
	}
}

func TestOpenURI(t *testing.T) {
	catalog := &fakeCatalog{tracks: map[string]*models.Track{"abc": {ID: "abc"}}}
	queue := &fakeQueue{}
	refresh := &fakeRefresh{}
	d := NewDispatcher(&fakeEngine{}, queue, NewResolver(catalog, queue), refresh)

	d.OpenURI("spotify:track:abc")
	if len(queue.items) != 1 || queue.items[0].ID() != "abc" {
		t.Fatalf("queue items = %v, want the opened track", queue.items)
	}

	d.OpenURI("gopher://nonsense")
	if len(queue.items) != 1 {
		t.Errorf("unrecognized URI must not touch the queue")
	}
}
