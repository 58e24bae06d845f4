package mpris

import (
	"log/slog"

	"github.com/ncspot/mprisd/internal/models"
)

const (
	// previousThresholdMS decides whether Previous restarts the current
	// item or jumps back to the one before it.
	previousThresholdMS = 5000

	// skipOffsetMS is the relative jump used by Forward and Rewind.
	skipOffsetMS = 5000
)

// Dispatcher executes the MPRIS transport commands against the engine and
// queue. Commands that cannot apply in the current state are silent no-ops;
// remote controllers get no error surface beyond what D-Bus itself reports.
type Dispatcher struct {
	engine   Engine
	queue    Queue
	resolver *Resolver
	refresh  Refresher
}

func NewDispatcher(engine Engine, queue Queue, resolver *Resolver, refresh Refresher) *Dispatcher {
	return &Dispatcher{engine: engine, queue: queue, resolver: resolver, refresh: refresh}
}

func (d *Dispatcher) PlayPause() { d.queue.TogglePlayback() }
func (d *Dispatcher) Play()      { d.engine.Play() }
func (d *Dispatcher) Pause()     { d.engine.Pause() }
func (d *Dispatcher) Stop()      { d.engine.Stop() }
func (d *Dispatcher) Next()      { d.queue.Next(true) }

// Previous restarts the current item when it has been playing for a while,
// and jumps to the previous queue item otherwise.
func (d *Dispatcher) Previous() {
	if d.engine.ProgressMS() >= previousThresholdMS {
		d.engine.SeekMS(0)
		return
	}
	d.queue.Previous()
}

// Forward and Rewind are ncspot extensions, not part of the MPRIS player
// schema. Keyboards with dedicated seek keys map onto them.
func (d *Dispatcher) Forward() { d.engine.SeekRelativeMS(skipOffsetMS) }
func (d *Dispatcher) Rewind()  { d.engine.SeekRelativeMS(-skipOffsetMS) }

// Seek moves playback by a signed microsecond offset. A target before the
// start clamps to the start; a target at or past the end of the current
// item advances to the next item instead.
func (d *Dispatcher) Seek(offsetMicros int64) {
	current := d.queue.Current()
	if current.Empty() {
		return
	}
	target := d.engine.ProgressMS() + int(offsetMicros/1000)
	if target < 0 {
		target = 0
	}
	if target >= current.DurationMS() {
		d.queue.Next(true)
		return
	}
	d.engine.SeekMS(target)
}

// SetPosition seeks to an absolute microsecond position within the current
// item. Out-of-range targets are ignored.
func (d *Dispatcher) SetPosition(positionMicros int64) {
	current := d.queue.Current()
	if current.Empty() {
		return
	}
	targetMS := positionMicros / 1000
	if targetMS < 0 || targetMS >= int64(current.DurationMS()) {
		return
	}
	d.engine.SeekMS(int(targetMS))
}

// OpenURI resolves a share link or canonical URI, replaces the queue with
// the content behind it and starts playback. Unrecognized input is dropped.
func (d *Dispatcher) OpenURI(raw string) {
	rc, ok := ParseURI(raw)
	if !ok {
		slog.Debug("ignoring unrecognized URI", "uri", raw)
		return
	}
	d.resolver.FetchAndEnqueue(rc, d.queue.Shuffle())
}

// LoopStatus reports the repeat mode in MPRIS vocabulary.
func (d *Dispatcher) LoopStatus() string {
	return d.queue.Repeat().String()
}

// SetLoopStatus applies an MPRIS loop token. Unknown tokens turn looping
// off rather than failing the call.
func (d *Dispatcher) SetLoopStatus(token string) {
	d.queue.SetRepeat(models.ParseLoopMode(token))
	d.refresh.Trigger()
}

func (d *Dispatcher) SetShuffle(on bool) {
	d.queue.SetShuffle(on)
	d.refresh.Trigger()
}

// VolumeFraction reports the engine volume on the MPRIS 0.0..1.0 scale.
func (d *Dispatcher) VolumeFraction() float64 {
	return float64(d.engine.Volume()) / float64(models.MaxVolume)
}

// SetVolumeFraction applies a 0.0..1.0 volume. Values outside the range are
// ignored; the refresh still fires so remote state converges back to ours.
func (d *Dispatcher) SetVolumeFraction(f float64) {
	if f >= 0 && f <= 1 {
		d.engine.SetVolume(uint16(float64(models.VolumePercent) * f * 100.0))
	}
	d.refresh.Trigger()
}
