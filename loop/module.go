package loop

import (
	"context"

	"github.com/havud29/asyncdep/config"
	"github.com/havud29/asyncdep/core"
)

const Name = "loop"

type Option func(*loopModule)

// WithFrameObserver reports frame durations to obs.
func WithFrameObserver(obs FrameObserver) Option {
	return func(m *loopModule) { m.observer = obs }
}

// Module hosts the frame loop. Configure registers the *Host in the runtime
// container; other modules use Host.Do once the loop has started.
func Module(opts ...Option) core.Module {
	m := &loopModule{}
	for _, o := range opts {
		o(m)
	}
	return m
}

// FromRuntime returns the host registered by the loop module.
func FromRuntime(rt *core.Runtime) *Host {
	return core.MustLookup[*Host](rt.Container())
}

type loopModule struct {
	observer FrameObserver
	host     *Host
}

func (m *loopModule) Name() string        { return Name }
func (m *loopModule) DependsOn() []string { return nil }

func (m *loopModule) Configure(rt *core.Runtime) error {
	cfg := core.MustLookup[config.Root](rt.Container())
	m.host = NewHost(rt, cfg.Loop.FrameRate, m.observer)
	return core.Register[*Host](rt.Container(), m.host)
}

func (m *loopModule) Start(ctx context.Context, _ *core.Runtime) error {
	return m.host.Start(ctx)
}

func (m *loopModule) Stop(ctx context.Context, _ *core.Runtime) error {
	return m.host.Stop(ctx)
}
