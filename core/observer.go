package core

import "reflect"

// Phase names a dispatch pass of the scheduler.
type Phase string

const (
	PhaseTick     Phase = "tick"
	PhaseLateTick Phase = "late_tick"
)

// Observer receives runtime events, typically to feed metrics.
// All calls happen on the goroutine driving the runtime.
type Observer interface {
	Registered(capability reflect.Type)
	Requested(b Behaviour, unresolved int)
	Readied(b Behaviour)
	Unloaded(b Behaviour)
	Changed(outstanding int)
	SnapshotRebuilt(size int)
	Dispatched(phase Phase, n int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Registered(reflect.Type)  {}
func (NopObserver) Requested(Behaviour, int) {}
func (NopObserver) Readied(Behaviour)        {}
func (NopObserver) Unloaded(Behaviour)       {}
func (NopObserver) Changed(int)              {}
func (NopObserver) SnapshotRebuilt(int)      {}
func (NopObserver) Dispatched(Phase, int)    {}
