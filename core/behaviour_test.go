package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/inject"
)

func TestState_String(t *testing.T) {
	cases := map[core.State]string{
		core.StateConstructed:          "constructed",
		core.StateAwaitingDependencies: "awaiting_dependencies",
		core.StateReady:                "ready",
		core.StateDestroying:           "destroying",
		core.StateDestroyed:            "destroyed",
		core.State(42):                 "unknown",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
}

func TestBase_Unattached(t *testing.T) {
	b := &plain{}
	assert.Equal(t, core.StateConstructed, b.State())
	assert.Nil(t, b.Runtime())
	assert.Nil(t, b.Container())
	assert.Equal(t, uuid.Nil, b.ID())

	b.Destroy()
	assert.Equal(t, core.StateDestroyed, b.State())
	assert.True(t, b.Destroying())
}

func TestAttach_RunsHooksInOrder(t *testing.T) {
	rt := core.NewRuntime()
	h := &hooked{}

	require.NoError(t, rt.Attach(h))

	assert.NotEqual(t, uuid.Nil, h.ID())
	assert.Same(t, rt, h.Runtime())
	assert.Equal(t, 1, h.attached)
	assert.Equal(t, 1, h.filled)
	assert.Equal(t, 1, h.enabled)
	assert.Zero(t, h.started, "start waits for the first frame")
	assert.True(t, h.TickEligible())
}

func TestAttach_Twice(t *testing.T) {
	rt := core.NewRuntime()
	h := &hooked{}
	require.NoError(t, rt.Attach(h))
	id := h.ID()

	require.NoError(t, rt.Attach(h))

	assert.Equal(t, id, h.ID())
	assert.Equal(t, 1, h.attached)
	assert.Equal(t, 1, rt.Scheduler().Members())
}

func TestAttach_Nil(t *testing.T) {
	rt := core.NewRuntime()
	var h *hooked
	assert.ErrorIs(t, rt.Attach(h), core.ErrNilBehaviour)
	assert.ErrorIs(t, rt.Attach(nil), core.ErrNilBehaviour)
}

func TestAttach_Disabled(t *testing.T) {
	rt := core.NewRuntime()
	h := &hooked{}

	require.NoError(t, rt.Attach(h, core.AttachDisabled()))

	assert.True(t, h.Ready())
	assert.False(t, h.Enabled())
	assert.False(t, h.TickEligible())
	assert.Zero(t, h.enabled)
}

type badSlot struct {
	core.Base
}

func (*badSlot) InjectSlots() []inject.Slot {
	return []inject.Slot{inject.Field[*badSlot, any]("anything", func(*badSlot, any) {})}
}

func TestAttach_InvalidSlot(t *testing.T) {
	rt := core.NewRuntime()
	b := &badSlot{}

	err := rt.Attach(b)

	var attachErr *core.AttachError
	require.ErrorAs(t, err, &attachErr)
	var slotErr *inject.InvalidSlotError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, "anything", slotErr.Slot)
	assert.Nil(t, b.Runtime())
	assert.Equal(t, core.StateConstructed, b.State())
}

func TestAttach_DestroyedBehaviour(t *testing.T) {
	rt := core.NewRuntime()
	b := &plain{}
	b.Destroy()

	err := rt.Attach(b)
	assert.ErrorIs(t, err, core.ErrDestroyed)
}

func TestMarkReady_Idempotent(t *testing.T) {
	obs := &recorder{}
	rt := core.NewRuntime(core.WithObserver(obs))
	b := &needsA{}
	require.NoError(t, rt.Attach(b))
	require.False(t, b.Ready())

	b.MarkReady()
	b.MarkReady()

	assert.True(t, b.Ready())
	assert.Equal(t, 1, b.filled)
	assert.Equal(t, 1, obs.readied)

	// A later registration no longer calls the hook.
	require.NoError(t, core.Provide(rt, &svcA{}))
	assert.Equal(t, 1, b.filled)
}

func TestMarkReady_IgnoredWhileDestroying(t *testing.T) {
	rt := core.NewRuntime()
	b := &needsA{}
	require.NoError(t, rt.Attach(b))
	b.Destroy()

	b.MarkReady()

	assert.False(t, b.Ready())
	assert.Zero(t, b.filled)
}

func TestSetEnabled_FiresOnTransitionsOnly(t *testing.T) {
	rt := core.NewRuntime()
	h := &hooked{}
	require.NoError(t, rt.Attach(h))

	h.SetEnabled(true)
	assert.Equal(t, 1, h.enabled)

	h.SetEnabled(false)
	h.SetEnabled(false)
	assert.Equal(t, 1, h.disabled)
	assert.True(t, h.Ready(), "disabling keeps the behaviour ready")
	assert.False(t, h.TickEligible())

	h.SetEnabled(true)
	assert.Equal(t, 2, h.enabled)
	assert.True(t, h.TickEligible())
}

func TestDestroy_Twice(t *testing.T) {
	obs := &recorder{}
	rt := core.NewRuntime(core.WithObserver(obs))
	h := &hooked{}
	require.NoError(t, rt.Attach(h))

	h.Destroy()
	h.Destroy()
	rt.Detach(h)

	assert.Equal(t, 1, h.destroyed)
	assert.Equal(t, 1, obs.unloaded)
	assert.Equal(t, core.StateDestroyed, h.State())
	assert.False(t, h.TickEligible())
	assert.False(t, rt.Scheduler().Contains(h))
}

// selfDestructing destroys itself while it is being attached.
type selfDestructing struct {
	core.Base
	filled int
}

func (s *selfDestructing) OnAttach()             { s.Destroy() }
func (s *selfDestructing) OnDependenciesFilled() { s.filled++ }
func (s *selfDestructing) Tick(core.Frame)       {}

func TestAttach_DestroyedDuringOnAttach(t *testing.T) {
	rt := core.NewRuntime()
	s := &selfDestructing{}

	require.NoError(t, rt.Attach(s))

	assert.Equal(t, core.StateDestroyed, s.State())
	assert.Zero(t, s.filled)
	assert.False(t, s.Enabled())
	assert.False(t, rt.Scheduler().Contains(s))
}
