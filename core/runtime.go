package core

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/havud29/asyncdep/inject"
)

// Runtime owns the slot resolver, the dependency container and the update
// scheduler shared by every behaviour attached to it. It is driven from a
// single goroutine, normally the frame loop.
type Runtime struct {
	log       *slog.Logger
	observer  Observer
	resolver  *inject.Resolver
	container *Container
	scheduler *Scheduler

	starting []Behaviour
}

type options struct {
	logger   *slog.Logger
	observer Observer
	capacity int
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithInitialCapacity sets the starting size of the tick snapshot buffer.
func WithInitialCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

func NewRuntime(opts ...Option) *Runtime {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	return &Runtime{
		log:       o.logger,
		observer:  o.observer,
		resolver:  inject.NewResolver(),
		container: NewContainer(o.logger, o.observer),
		scheduler: NewScheduler(o.capacity, o.observer),
	}
}

func (r *Runtime) Container() *Container      { return r.container }
func (r *Runtime) Scheduler() *Scheduler      { return r.scheduler }
func (r *Runtime) Resolver() *inject.Resolver { return r.resolver }
func (r *Runtime) Logger() *slog.Logger       { return r.log }

type attachOptions struct {
	disabled bool
}

type AttachOption func(*attachOptions)

// AttachDisabled attaches the behaviour without enabling it.
func AttachDisabled() AttachOption {
	return func(o *attachOptions) { o.disabled = true }
}

// Attach brings b to life: it requests b's declared dependencies, adds it to
// the scheduler when its type ticks, and enables it. A behaviour without
// dependencies is ready when Attach returns. Attaching twice is a no-op.
func (r *Runtime) Attach(b Behaviour, opts ...AttachOption) error {
	if isNil(b) {
		return ErrNilBehaviour
	}
	var o attachOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := b.lifecycle()
	if base.attached {
		return nil
	}
	if base.destroying {
		return &AttachError{Type: reflect.TypeOf(b), Err: ErrDestroyed}
	}

	slots, err := r.resolver.SlotsFor(b)
	if err != nil {
		return &AttachError{Type: reflect.TypeOf(b), Err: err}
	}

	base.rt = r
	base.self = b
	base.attached = true
	if base.id == uuid.Nil {
		base.id = uuid.New()
	}
	r.log.Debug("behaviour attached",
		"behaviour", base.id.String(), "type", reflect.TypeOf(b).String(), "slots", len(slots))

	if h, ok := b.(Attacher); ok {
		h.OnAttach()
	}
	if base.destroying {
		return nil
	}

	r.scheduler.Add(b)
	if len(slots) == 0 {
		r.container.ready(b)
	} else {
		r.container.Request(b, slots)
	}
	if base.destroying {
		return nil
	}

	r.starting = append(r.starting, b)
	if !o.disabled {
		base.SetEnabled(true)
	}
	return nil
}

// Detach tears b down: its container bindings and pending request are
// dropped, OnDestroy runs, and it leaves the scheduler from the next frame.
// Detaching twice is a no-op.
func (r *Runtime) Detach(b Behaviour) {
	if isNil(b) {
		return
	}
	base := b.lifecycle()
	if base.destroying {
		return
	}
	base.destroying = true
	base.recompute()

	if base.self == nil {
		base.self = b
	}
	base.unload()
	if h, ok := b.(Destroyer); ok {
		h.OnDestroy()
	}
	r.scheduler.Remove(b)
	base.destroyed = true
	r.log.Debug("behaviour detached", "behaviour", base.id.String())
}

// TickAll runs pending OnStart hooks and then the Tick phase.
func (r *Runtime) TickAll(f Frame) int {
	r.start()
	return r.scheduler.TickAll(f)
}

// LateTickAll runs the LateTick phase.
func (r *Runtime) LateTickAll(f Frame) int {
	return r.scheduler.LateTickAll(f)
}

func (r *Runtime) start() {
	if len(r.starting) == 0 {
		return
	}
	batch := r.starting
	r.starting = nil
	for _, b := range batch {
		base := b.lifecycle()
		if base.destroying || base.started {
			continue
		}
		base.started = true
		if h, ok := b.(Starter); ok {
			h.OnStart()
		}
	}
}

// Reset returns the runtime to its initial state. Behaviours attached before
// the reset are forgotten, not destroyed. Meant for test isolation.
func (r *Runtime) Reset() {
	r.container.Reset()
	r.scheduler.Reset()
	r.resolver.Reset()
	r.starting = nil
}

// Provide binds v as the singleton for capability T in r's container.
func Provide[T any](r *Runtime, v T) error {
	return Register[T](r.container, v)
}
