package mpris

import (
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// propEntry binds one externally visible property to its accessors. A nil
// set marks the property read-only. The signature feeds introspection.
type propEntry struct {
	sig string
	get func() dbus.Variant
	set func(v dbus.Variant)
}

// Registry is the static property table for both MPRIS interfaces. It is
// built once at startup; Get, GetAll and Set consult it for every
// org.freedesktop.DBus.Properties call. Getters read live state, so values
// are computed fresh on each call.
type Registry struct {
	props map[string]map[string]*propEntry
}

func newRegistry(d *Dispatcher, m *Mapper, queue Queue, engine Engine) *Registry {
	root := map[string]*propEntry{
		"CanQuit":             constProp(false),
		"CanRaise":            constProp(false),
		"CanSetFullscreen":    constProp(false),
		"HasTrackList":        constProp(false),
		"Identity":            constProp(identity),
		"SupportedMimeTypes":  constProp([]string{}),
		"SupportedUriSchemes": constProp([]string{uriScheme}),
	}

	player := map[string]*propEntry{
		"CanControl":    constProp(true),
		"CanGoNext":     constProp(true),
		"CanGoPrevious": constProp(true),
		"CanGoForward":  constProp(true),
		"CanRewind":     constProp(true),
		"CanPause":      constProp(true),
		"CanPlay":       constProp(true),
		"CanSeek":       constProp(true),
		"Rate":          constProp(1.0),
		"MinimumRate":   constProp(1.0),
		"MaximumRate":   constProp(1.0),
		"PlaybackStatus": {
			sig: "s",
			get: func() dbus.Variant { return dbus.MakeVariant(string(m.Status())) },
		},
		"Position": {
			sig: "x",
			get: func() dbus.Variant { return dbus.MakeVariant(int64(engine.ProgressMS()) * 1000) },
		},
		"Metadata": {
			sig: "a{sv}",
			get: func() dbus.Variant { return dbus.MakeVariant(m.Metadata(queue.Current())) },
		},
		"LoopStatus": {
			sig: "s",
			get: func() dbus.Variant { return dbus.MakeVariant(d.LoopStatus()) },
			set: func(v dbus.Variant) {
				token, _ := v.Value().(string)
				d.SetLoopStatus(token)
			},
		},
		"Shuffle": {
			sig: "b",
			get: func() dbus.Variant { return dbus.MakeVariant(queue.Shuffle()) },
			set: func(v dbus.Variant) {
				if on, ok := v.Value().(bool); ok {
					d.SetShuffle(on)
					return
				}
				d.refresh.Trigger()
			},
		},
		"Volume": {
			sig: "d",
			get: func() dbus.Variant { return dbus.MakeVariant(d.VolumeFraction()) },
			set: func(v dbus.Variant) {
				f, ok := v.Value().(float64)
				if !ok {
					f = d.VolumeFraction()
				}
				d.SetVolumeFraction(f)
			},
		},
	}

	return &Registry{props: map[string]map[string]*propEntry{
		rootInterface:   root,
		playerInterface: player,
	}}
}

func constProp(value interface{}) *propEntry {
	v := dbus.MakeVariant(value)
	return &propEntry{
		sig: v.Signature().String(),
		get: func() dbus.Variant { return v },
	}
}

var (
	errUnknownInterface = dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", nil)
	errUnknownProperty  = dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", nil)
	errPropertyReadOnly = dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly", nil)
)

func (r *Registry) lookup(iface, name string) (*propEntry, *dbus.Error) {
	table, ok := r.props[iface]
	if !ok {
		return nil, errUnknownInterface
	}
	entry, ok := table[name]
	if !ok {
		return nil, errUnknownProperty
	}
	return entry, nil
}

func (r *Registry) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	entry, derr := r.lookup(iface, name)
	if derr != nil {
		return dbus.Variant{}, derr
	}
	return entry.get(), nil
}

func (r *Registry) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	table, ok := r.props[iface]
	if !ok {
		return nil, errUnknownInterface
	}
	all := make(map[string]dbus.Variant, len(table))
	for name, entry := range table {
		all[name] = entry.get()
	}
	return all, nil
}

func (r *Registry) Set(iface, name string, value dbus.Variant) *dbus.Error {
	entry, derr := r.lookup(iface, name)
	if derr != nil {
		return derr
	}
	if entry.set == nil {
		return errPropertyReadOnly
	}
	entry.set(value)
	return nil
}

// introspectInterfaces renders the property tables plus the player method
// signatures as introspection data.
func (r *Registry) introspectInterfaces() []introspect.Interface {
	return []introspect.Interface{
		{
			Name:       rootInterface,
			Properties: r.introspectProps(rootInterface),
		},
		{
			Name:       playerInterface,
			Properties: r.introspectProps(playerInterface),
			Methods: []introspect.Method{
				{Name: "Next"},
				{Name: "Previous"},
				{Name: "Pause"},
				{Name: "PlayPause"},
				{Name: "Stop"},
				{Name: "Play"},
				{Name: "Forward"},
				{Name: "Rewind"},
				{Name: "Seek", Args: []introspect.Arg{
					{Name: "Offset", Type: "x", Direction: "in"},
				}},
				{Name: "SetPosition", Args: []introspect.Arg{
					{Name: "TrackId", Type: "o", Direction: "in"},
					{Name: "Position", Type: "x", Direction: "in"},
				}},
				{Name: "OpenUri", Args: []introspect.Arg{
					{Name: "Uri", Type: "s", Direction: "in"},
				}},
			},
			Signals: []introspect.Signal{
				{Name: "Seeked", Args: []introspect.Arg{
					{Name: "Position", Type: "x"},
				}},
			},
		},
	}
}

func (r *Registry) introspectProps(iface string) []introspect.Property {
	table := r.props[iface]
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]introspect.Property, 0, len(names))
	for _, name := range names {
		access := "read"
		if table[name].set != nil {
			access = "readwrite"
		}
		props = append(props, introspect.Property{
			Name:   name,
			Type:   table[name].sig,
			Access: access,
		})
	}
	return props
}
