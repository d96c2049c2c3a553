package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sort"

	"github.com/havud29/asyncdep/inject"
)

// ErrDestroyed is returned when a behaviour that is being torn down is
// registered as a dependency.
var ErrDestroyed = errors.New("core: instance is destroyed")

// entry is a single capability -> instance binding.
type entry struct {
	capability reflect.Type
	target     any
}

// request is the outstanding row of a behaviour with unresolved slots.
type request struct {
	requester Behaviour
	slots     []inject.Slot
}

// Container owns the singleton registry and the outstanding requests of
// behaviours waiting for dependencies.
//
// It is not safe for concurrent use. Calls made while a registration is being
// processed are queued and drained by the outermost call, so callbacks may
// freely register further instances.
type Container struct {
	log      *slog.Logger
	observer Observer

	registry map[reflect.Type]any

	pending     []entry
	registering bool

	rows  map[Behaviour]*request
	order []*request

	listeners []*listener
}

type listener struct {
	fn func()
}

// NewContainer creates an empty container. A nil logger discards output and a
// nil observer ignores events.
func NewContainer(logger *slog.Logger, observer Observer) *Container {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Container{
		log:      logger,
		observer: observer,
		registry: make(map[reflect.Type]any),
		rows:     make(map[Behaviour]*request),
	}
}

// Register binds instance as the singleton for capability, replacing any
// earlier binding. Behaviours already resolved against the old instance keep
// it. Outstanding requesters waiting for capability are resolved before
// Register returns, unless Register was called from inside another
// registration, in which case the binding is applied once the outer call gets
// to it.
func (c *Container) Register(capability reflect.Type, instance any) error {
	if capability == nil {
		return &CapabilityMismatchError{Got: reflect.TypeOf(instance)}
	}
	if isNil(instance) {
		return &NilInstanceError{Capability: capability}
	}
	if got := reflect.TypeOf(instance); !got.AssignableTo(capability) {
		return &CapabilityMismatchError{Capability: capability, Got: got}
	}
	if b, ok := instance.(Behaviour); ok {
		base := b.lifecycle()
		if base.destroying {
			c.log.Warn("rejected registration of destroyed behaviour",
				"capability", capability.String(), "behaviour", base.id.String())
			return fmt.Errorf("register %v: %w", capability, ErrDestroyed)
		}
		base.registered = true
		if base.self == nil {
			base.self = b
		}
		if !slices.Contains(base.owners, c) {
			base.owners = append(base.owners, c)
		}
	}

	c.pending = append(c.pending, entry{capability: capability, target: instance})
	if c.registering {
		return nil
	}

	c.drain()
	c.notify()
	return nil
}

// drain applies queued registrations one at a time in arrival order.
func (c *Container) drain() {
	c.registering = true
	defer func() { c.registering = false }()
	for len(c.pending) > 0 {
		e := c.pending[0]
		c.pending[0] = entry{}
		c.pending = c.pending[1:]
		c.apply(e)
	}
	c.pending = nil
}

func (c *Container) apply(e entry) {
	c.registry[e.capability] = e.target
	c.observer.Registered(e.capability)
	c.log.Debug("dependency registered", "capability", e.capability.String())

	var readied []*request
	for _, row := range c.order {
		row.slots = slices.DeleteFunc(row.slots, func(s inject.Slot) bool {
			if s.Capability != e.capability {
				return false
			}
			s.Assign(row.requester, e.target)
			return true
		})
		if len(row.slots) == 0 {
			readied = append(readied, row)
		}
	}

	// Each row leaves the outstanding set only as it is readied, so a hook
	// that panics leaves the rest waiting with no slots. The next
	// registration sweeps them.
	for _, row := range readied {
		c.removeRow(row.requester)
		c.ready(row.requester)
	}
}

// Request records the slots b still needs, merged with any it was already
// waiting for, and resolves whatever the registry can satisfy now. When
// nothing is left b is marked ready before Request returns.
func (c *Container) Request(b Behaviour, slots []inject.Slot) {
	base := b.lifecycle()
	if base.destroying {
		return
	}

	row, exists := c.rows[b]
	merged := make([]inject.Slot, 0, len(slots))
	seen := make(map[inject.Key]struct{}, len(slots))
	add := func(s inject.Slot) {
		k := s.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		merged = append(merged, s)
	}
	for _, s := range slots {
		add(s)
	}
	if exists {
		for _, s := range row.slots {
			add(s)
		}
	}

	merged = slices.DeleteFunc(merged, func(s inject.Slot) bool {
		target, ok := c.registry[s.Capability]
		if !ok {
			return false
		}
		s.Assign(b, target)
		return true
	})
	c.observer.Requested(b, len(merged))

	if len(merged) == 0 {
		if exists {
			c.removeRow(b)
		}
		c.ready(b)
		return
	}

	if exists {
		row.slots = merged
	} else {
		row = &request{requester: b, slots: merged}
		c.rows[b] = row
		c.order = append(c.order, row)
	}
	base.awaiting = true
	base.recompute()
	c.log.Debug("awaiting dependencies", "behaviour", base.id.String(), "unresolved", len(merged))
	// Inside a registration the outer Register notifies once the queue drains.
	if !c.registering {
		c.notify()
	}
}

// Unload forgets b: registry entries pointing at it are dropped so it is
// never handed out again, and its outstanding request is discarded so it is
// never marked ready. Calling Unload more than once is harmless.
func (c *Container) Unload(b Behaviour) {
	base := b.lifecycle()
	if base.registered {
		for capability, target := range c.registry {
			if target == any(b) {
				delete(c.registry, capability)
				c.log.Debug("dependency unregistered", "capability", capability.String())
			}
		}
		c.pending = slices.DeleteFunc(c.pending, func(e entry) bool {
			return e.target == any(b)
		})
	}
	if _, ok := c.rows[b]; ok {
		c.removeRow(b)
	}
	c.observer.Unloaded(b)
}

func (c *Container) ready(b Behaviour) {
	if b.lifecycle().markReady() {
		c.observer.Readied(b)
	}
}

func (c *Container) removeRow(b Behaviour) {
	row, ok := c.rows[b]
	if !ok {
		return
	}
	delete(c.rows, b)
	c.order = slices.DeleteFunc(c.order, func(r *request) bool { return r == row })
}

// Subscribe adds fn to the listeners notified after every batch of
// registrations and every request left waiting. The returned func removes it.
func (c *Container) Subscribe(fn func()) (unsubscribe func()) {
	l := &listener{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		c.listeners = slices.DeleteFunc(c.listeners, func(x *listener) bool { return x == l })
	}
}

func (c *Container) notify() {
	c.observer.Changed(len(c.rows))
	for _, l := range slices.Clone(c.listeners) {
		l.fn()
	}
}

// Lookup returns the instance currently bound to capability.
func (c *Container) Lookup(capability reflect.Type) (any, bool) {
	v, ok := c.registry[capability]
	return v, ok
}

// Outstanding returns the number of behaviours waiting for dependencies.
func (c *Container) Outstanding() int { return len(c.rows) }

// Registered returns the number of bound capabilities.
func (c *Container) Registered() int { return len(c.registry) }

// Unresolved returns a copy of the slots b is still waiting for.
func (c *Container) Unresolved(b Behaviour) []inject.Slot {
	row, ok := c.rows[b]
	if !ok {
		return nil
	}
	return slices.Clone(row.slots)
}

// OutstandingRequest describes one behaviour waiting for dependencies.
type OutstandingRequest struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Missing []string `json:"missing"`
}

// Diagnostics is a point-in-time view of the container.
type Diagnostics struct {
	Registered  []string             `json:"registered"`
	Outstanding []OutstandingRequest `json:"outstanding"`
}

// Snapshot returns the bound capabilities (sorted) and the outstanding
// requests (in arrival order).
func (c *Container) Snapshot() Diagnostics {
	d := Diagnostics{
		Registered:  make([]string, 0, len(c.registry)),
		Outstanding: make([]OutstandingRequest, 0, len(c.order)),
	}
	for capability := range c.registry {
		d.Registered = append(d.Registered, capability.String())
	}
	sort.Strings(d.Registered)

	for _, row := range c.order {
		missing := make([]string, 0, len(row.slots))
		for _, s := range row.slots {
			missing = append(missing, s.Capability.String())
		}
		d.Outstanding = append(d.Outstanding, OutstandingRequest{
			ID:      row.requester.lifecycle().id.String(),
			Type:    reflect.TypeOf(row.requester).String(),
			Missing: missing,
		})
	}
	return d
}

// Reset drops every binding, queued registration and outstanding request.
// Listeners stay subscribed.
func (c *Container) Reset() {
	clear(c.registry)
	clear(c.rows)
	c.order = nil
	c.pending = nil
	c.registering = false
}

// Register binds v as the singleton for capability T.
func Register[T any](c *Container, v T) error {
	return c.Register(reflect.TypeFor[T](), v)
}

// Lookup returns the instance bound to capability T.
func Lookup[T any](c *Container) (T, bool) {
	var zero T
	raw, ok := c.Lookup(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// MustLookup is Lookup for wiring code that cannot continue without T.
func MustLookup[T any](c *Container) T {
	v, ok := Lookup[T](c)
	if !ok {
		panic(fmt.Errorf("container: missing dependency %v", reflect.TypeFor[T]()))
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
