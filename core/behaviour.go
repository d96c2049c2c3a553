package core

import (
	"slices"

	"github.com/google/uuid"
)

// Behaviour is anything embedding Base. Behaviours are attached by pointer.
type Behaviour interface {
	lifecycle() *Base
}

// State is the lifecycle position of a behaviour. Enabled is tracked
// separately and does not change the state.
type State int

const (
	StateConstructed State = iota
	StateAwaitingDependencies
	StateReady
	StateDestroying
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateAwaitingDependencies:
		return "awaiting_dependencies"
	case StateReady:
		return "ready"
	case StateDestroying:
		return "destroying"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Base carries the lifecycle state of a behaviour. Embed it in concrete
// behaviour structs:
//
//	type Mover struct {
//	    core.Base
//	    clock *Clock
//	}
//
// A Base must only be touched from the goroutine driving its runtime.
type Base struct {
	id   uuid.UUID
	rt   *Runtime
	self Behaviour

	attached   bool
	awaiting   bool
	ready      bool
	enabled    bool
	destroying bool
	destroyed  bool
	started    bool
	registered bool

	// Containers b was registered in, so teardown can unbind it even when b
	// was never attached.
	owners []*Container

	// Ready && enabled && !destroying, refreshed on every transition.
	eligible bool
}

func (b *Base) lifecycle() *Base { return b }

// ID is assigned on attach.
func (b *Base) ID() uuid.UUID { return b.id }

// Runtime returns the runtime b is attached to, or nil.
func (b *Base) Runtime() *Runtime { return b.rt }

// Container returns the dependency container of b's runtime, or nil when b is
// not attached.
func (b *Base) Container() *Container {
	if b.rt == nil {
		return nil
	}
	return b.rt.container
}

func (b *Base) State() State {
	switch {
	case b.destroyed:
		return StateDestroyed
	case b.destroying:
		return StateDestroying
	case b.ready:
		return StateReady
	case b.awaiting:
		return StateAwaitingDependencies
	}
	return StateConstructed
}

func (b *Base) Ready() bool      { return b.ready }
func (b *Base) Enabled() bool    { return b.enabled }
func (b *Base) Destroying() bool { return b.destroying }

// RegisteredAsDependency reports whether b was ever registered in a container.
func (b *Base) RegisteredAsDependency() bool { return b.registered }

// TickEligible reports whether the scheduler will dispatch tick hooks to b.
func (b *Base) TickEligible() bool { return b.eligible }

func (b *Base) recompute() {
	b.eligible = b.ready && b.enabled && !b.destroying
}

// MarkReady flags every dependency of b as filled. It is a no-op when b is
// already ready or is being destroyed.
func (b *Base) MarkReady() {
	if b.markReady() && b.rt != nil {
		b.rt.observer.Readied(b.self)
	}
}

func (b *Base) markReady() bool {
	if b.ready || b.destroying {
		return false
	}
	b.ready = true
	b.awaiting = false
	b.recompute()
	if h, ok := b.self.(DependenciesFilledHandler); ok {
		h.OnDependenciesFilled()
	}
	return true
}

// SetEnabled toggles whether b may tick. Ready and destroying are unaffected.
func (b *Base) SetEnabled(enabled bool) {
	if b.enabled == enabled {
		return
	}
	b.enabled = enabled
	b.recompute()
	if enabled {
		if h, ok := b.self.(Enabler); ok {
			h.OnEnable()
		}
		return
	}
	if h, ok := b.self.(Disabler); ok {
		h.OnDisable()
	}
}

// Destroy tears b down. Repeated calls are no-ops.
func (b *Base) Destroy() {
	if b.rt != nil && b.self != nil {
		b.rt.Detach(b.self)
		return
	}
	if b.destroying {
		return
	}
	b.destroying = true
	b.recompute()
	b.unload()
	b.destroyed = true
}

// unload drops b from every container that knows about it: the ones it was
// registered in and the one of its runtime.
func (b *Base) unload() {
	if b.self == nil {
		return
	}
	containers := b.owners
	if b.attached && b.rt != nil && !slices.Contains(containers, b.rt.container) {
		containers = append(slices.Clip(containers), b.rt.container)
	}
	for _, c := range containers {
		c.Unload(b.self)
	}
}
