package core_test

import (
	"reflect"

	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/inject"
)

// Plain services.
type svcA struct{ name string }
type svcB struct{ name string }
type svcC struct{ name string }
type svcD struct{ name string }

type Greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type needsA struct {
	core.Base
	a      *svcA
	filled int
}

func (*needsA) InjectSlots() []inject.Slot {
	return []inject.Slot{inject.Field("a", func(n *needsA, a *svcA) { n.a = a })}
}

func (n *needsA) OnDependenciesFilled() { n.filled++ }

type needsBC struct {
	core.Base
	b *svcB
	c *svcC
}

func (*needsBC) InjectSlots() []inject.Slot {
	return []inject.Slot{
		inject.Field("b", func(n *needsBC, b *svcB) { n.b = b }),
		inject.Field("c", func(n *needsBC, c *svcC) { n.c = c }),
	}
}

type needsAll struct {
	core.Base
	a *svcA
	b *svcB
	c *svcC
}

func (*needsAll) InjectSlots() []inject.Slot {
	return []inject.Slot{
		inject.Field("a", func(n *needsAll, a *svcA) { n.a = a }),
		inject.Field("b", func(n *needsAll, b *svcB) { n.b = b }),
		inject.Field("c", func(n *needsAll, c *svcC) { n.c = c }),
	}
}

type needsD struct {
	core.Base
	d *svcD
}

func (*needsD) InjectSlots() []inject.Slot {
	return []inject.Slot{inject.Field("d", func(n *needsD, d *svcD) { n.d = d })}
}

type needsGreeter struct {
	core.Base
	g Greeter
}

func (*needsGreeter) InjectSlots() []inject.Slot {
	return []inject.Slot{inject.Field("greeter", func(n *needsGreeter, g Greeter) { n.g = g })}
}

// plain has no slots and no hooks.
type plain struct {
	core.Base
}

// hooked counts every lifecycle hook.
type hooked struct {
	core.Base
	attached, started, filled, destroyed, enabled, disabled int
	ticks, lateTicks                                        int
	onTick                                                  func(core.Frame)
}

func (h *hooked) OnAttach()             { h.attached++ }
func (h *hooked) OnStart()              { h.started++ }
func (h *hooked) OnDependenciesFilled() { h.filled++ }
func (h *hooked) OnDestroy()            { h.destroyed++ }
func (h *hooked) OnEnable()             { h.enabled++ }
func (h *hooked) OnDisable()            { h.disabled++ }

func (h *hooked) Tick(f core.Frame) {
	h.ticks++
	if h.onTick != nil {
		h.onTick(f)
	}
}

func (h *hooked) LateTick(core.Frame) { h.lateTicks++ }

// lateOnly only has the late hook.
type lateOnly struct {
	core.Base
	lateTicks int
}

func (l *lateOnly) LateTick(core.Frame) { l.lateTicks++ }

// tickingA ticks once it has svcA.
type tickingA struct {
	core.Base
	a     *svcA
	ticks int
}

func (*tickingA) InjectSlots() []inject.Slot {
	return []inject.Slot{inject.Field("a", func(t *tickingA, a *svcA) { t.a = a })}
}

func (t *tickingA) Tick(core.Frame) { t.ticks++ }

// recorder remembers the order of observer events.
type recorder struct {
	core.NopObserver
	registered []reflect.Type
	readied    int
	unloaded   int
	changed    int
	rebuilt    []int
}

func (r *recorder) Registered(t reflect.Type) { r.registered = append(r.registered, t) }
func (r *recorder) Readied(core.Behaviour)    { r.readied++ }
func (r *recorder) Unloaded(core.Behaviour)   { r.unloaded++ }
func (r *recorder) Changed(int)               { r.changed++ }
func (r *recorder) SnapshotRebuilt(n int)     { r.rebuilt = append(r.rebuilt, n) }
