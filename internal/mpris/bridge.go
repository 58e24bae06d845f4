package mpris

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/ncspot/mprisd/internal/models"
)

// inboundWait bounds how long the worker blocks on the bus before checking
// for outbound change notifications.
const inboundWait = 200 * time.Millisecond

// busConn is the slice of *dbus.Conn the worker needs. Tests substitute a
// fake that records emitted signals.
type busConn interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	Close() error
}

// notification carries one playback-state snapshot toward the bus.
type notification struct {
	status  models.PlaybackStatus
	current models.Playable
}

type request struct {
	fn   func()
	done chan struct{}
}

// Manager owns the D-Bus presence. All property and method handlers funnel
// through a single worker goroutine (Run), so engine and queue access from
// the bus is serialized with outbound signal emission.
type Manager struct {
	conn       busConn
	dispatcher *Dispatcher
	mapper     *Mapper
	registry   *Registry
	queue      Queue

	requests chan request
	updates  chan notification
	done     chan struct{}
}

// NewManager connects to the session bus, claims the player name and
// exports the MPRIS object. Call Run to start servicing requests.
func NewManager(engine Engine, queue Queue, catalog Catalog, library Library, refresh Refresher) (*Manager, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	m := newManager(conn, engine, queue, catalog, library, refresh)

	reply, err := conn.RequestName(BusName, dbus.NameFlagReplaceExisting)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s is owned by another process", BusName)
	}
	if err := m.export(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

// newManager wires the components without touching the bus.
func newManager(conn busConn, engine Engine, queue Queue, catalog Catalog, library Library, refresh Refresher) *Manager {
	mapper := NewMapper(engine, catalog, library)
	dispatcher := NewDispatcher(engine, queue, NewResolver(catalog, queue), refresh)
	return &Manager{
		conn:       conn,
		dispatcher: dispatcher,
		mapper:     mapper,
		registry:   newRegistry(dispatcher, mapper, queue, engine),
		queue:      queue,
		requests:   make(chan request),
		updates:    make(chan notification, 1),
		done:       make(chan struct{}),
	}
}

func (m *Manager) export(conn *dbus.Conn) error {
	if err := conn.Export(propsHandler{m}, ObjectPath, propertiesInterface); err != nil {
		return fmt.Errorf("export properties: %w", err)
	}
	if err := conn.ExportMethodTable(m.methodTable(), ObjectPath, playerInterface); err != nil {
		return fmt.Errorf("export player methods: %w", err)
	}
	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: append(
			[]introspect.Interface{introspect.IntrospectData},
			m.registry.introspectInterfaces()...,
		),
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}
	return nil
}

func (m *Manager) methodTable() map[string]interface{} {
	call := func(fn func()) *dbus.Error {
		if !m.invoke(fn) {
			return dbus.MakeFailedError(fmt.Errorf("player is shutting down"))
		}
		return nil
	}
	return map[string]interface{}{
		"PlayPause": func() *dbus.Error { return call(m.dispatcher.PlayPause) },
		"Play":      func() *dbus.Error { return call(m.dispatcher.Play) },
		"Pause":     func() *dbus.Error { return call(m.dispatcher.Pause) },
		"Stop":      func() *dbus.Error { return call(m.dispatcher.Stop) },
		"Next":      func() *dbus.Error { return call(m.dispatcher.Next) },
		"Previous":  func() *dbus.Error { return call(m.dispatcher.Previous) },
		"Forward":   func() *dbus.Error { return call(m.dispatcher.Forward) },
		"Rewind":    func() *dbus.Error { return call(m.dispatcher.Rewind) },
		"Seek": func(offset int64) *dbus.Error {
			return call(func() { m.dispatcher.Seek(offset) })
		},
		"SetPosition": func(trackID dbus.ObjectPath, position int64) *dbus.Error {
			return call(func() { m.dispatcher.SetPosition(position) })
		},
		"OpenUri": func(uri string) *dbus.Error {
			return call(func() { m.dispatcher.OpenURI(uri) })
		},
	}
}

// invoke runs fn on the worker goroutine and waits for it to finish. It
// reports false when the worker has already exited.
func (m *Manager) invoke(fn func()) bool {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case m.requests <- req:
		<-req.done
		return true
	case <-m.done:
		return false
	}
}

// Update snapshots the current status and track and queues the snapshot for
// emission. Only the most recent unemitted snapshot is kept, so a burst of
// rapid state changes collapses into one signal.
func (m *Manager) Update() {
	n := notification{status: m.mapper.Status(), current: m.queue.Current()}
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- n:
	default:
	}
}

// Run services the bus until ctx is cancelled. Each iteration waits up to
// inboundWait for one inbound request, executes it, then emits at most one
// pending change notification.
func (m *Manager) Run(ctx context.Context) {
	defer m.conn.Close()
	defer close(m.done)

	timer := time.NewTimer(inboundWait)
	defer timer.Stop()
	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(inboundWait)

		select {
		case <-ctx.Done():
			return
		case req := <-m.requests:
			req.fn()
			close(req.done)
		case <-timer.C:
		}

		select {
		case n := <-m.updates:
			m.emitChanged(n)
		default:
		}
	}
}

func (m *Manager) emitChanged(n notification) {
	slog.Debug("emitting PropertiesChanged", "status", n.status, "title", n.current.Title())
	changed := map[string]dbus.Variant{
		"Metadata":       dbus.MakeVariant(m.mapper.Metadata(n.current)),
		"PlaybackStatus": dbus.MakeVariant(string(n.status)),
	}
	err := m.conn.Emit(ObjectPath, propertiesInterface+".PropertiesChanged",
		playerInterface, changed, []string{})
	if err != nil {
		slog.Warn("failed to emit PropertiesChanged", "error", err)
	}
}

// propsHandler adapts org.freedesktop.DBus.Properties calls onto the
// worker goroutine.
type propsHandler struct {
	m *Manager
}

func (h propsHandler) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	var (
		v    dbus.Variant
		derr *dbus.Error
	)
	if !h.m.invoke(func() { v, derr = h.m.registry.Get(iface, name) }) {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("player is shutting down"))
	}
	return v, derr
}

func (h propsHandler) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	var (
		all  map[string]dbus.Variant
		derr *dbus.Error
	)
	if !h.m.invoke(func() { all, derr = h.m.registry.GetAll(iface) }) {
		return nil, dbus.MakeFailedError(fmt.Errorf("player is shutting down"))
	}
	return all, derr
}

func (h propsHandler) Set(iface, name string, value dbus.Variant) *dbus.Error {
	var derr *dbus.Error
	if !h.m.invoke(func() { derr = h.m.registry.Set(iface, name, value) }) {
		return dbus.MakeFailedError(fmt.Errorf("player is shutting down"))
	}
	return derr
}
