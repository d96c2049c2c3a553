package core

import (
	"cmp"
	"math/bits"
	"reflect"
	"slices"
)

// DefaultCapacity is the initial size of the tick snapshot buffer.
const DefaultCapacity = 512

type tickCaps struct {
	tick bool
	late bool
}

type member struct {
	seq  uint64
	b    Behaviour
	tick Ticker
	late LateTicker
}

// Scheduler tracks the behaviours whose type has a tick hook and dispatches
// frames to the eligible ones.
//
// Membership changes only mark the snapshot dirty; it is rebuilt by the next
// TickAll or LateTickAll, so callbacks that attach or destroy behaviours never
// disturb the pass in progress.
type Scheduler struct {
	observer Observer

	caps    map[reflect.Type]tickCaps
	members map[Behaviour]member
	seq     uint64

	dirty    bool
	snapshot []member
	count    int
	rebuilds int
}

func NewScheduler(capacity int, observer Observer) *Scheduler {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Scheduler{
		observer: observer,
		caps:     make(map[reflect.Type]tickCaps),
		members:  make(map[Behaviour]member),
		snapshot: make([]member, capacity),
	}
}

func (s *Scheduler) probe(b Behaviour) tickCaps {
	t := reflect.TypeOf(b)
	if c, ok := s.caps[t]; ok {
		return c
	}
	var c tickCaps
	_, c.tick = b.(Ticker)
	_, c.late = b.(LateTicker)
	s.caps[t] = c
	return c
}

// Add makes b a member if its type has a tick hook and reports whether it
// did.
func (s *Scheduler) Add(b Behaviour) bool {
	c := s.probe(b)
	if !c.tick && !c.late {
		return false
	}
	if _, ok := s.members[b]; ok {
		return true
	}
	s.seq++
	m := member{seq: s.seq, b: b}
	if c.tick {
		m.tick = b.(Ticker)
	}
	if c.late {
		m.late = b.(LateTicker)
	}
	s.members[b] = m
	s.dirty = true
	return true
}

func (s *Scheduler) Remove(b Behaviour) {
	if _, ok := s.members[b]; !ok {
		return
	}
	delete(s.members, b)
	s.dirty = true
}

// TickAll calls Tick on every eligible member and returns how many were
// called.
func (s *Scheduler) TickAll(f Frame) int {
	s.refresh()
	n := 0
	for _, m := range s.snapshot[:s.count] {
		if m.tick == nil || !m.b.lifecycle().eligible {
			continue
		}
		m.tick.Tick(f)
		n++
	}
	s.observer.Dispatched(PhaseTick, n)
	return n
}

// LateTickAll calls LateTick on every eligible member and returns how many
// were called.
func (s *Scheduler) LateTickAll(f Frame) int {
	s.refresh()
	n := 0
	for _, m := range s.snapshot[:s.count] {
		if m.late == nil || !m.b.lifecycle().eligible {
			continue
		}
		m.late.LateTick(f)
		n++
	}
	s.observer.Dispatched(PhaseLateTick, n)
	return n
}

func (s *Scheduler) refresh() {
	if !s.dirty {
		return
	}
	s.dirty = false

	n := len(s.members)
	if len(s.snapshot) < n {
		s.snapshot = make([]member, nextPowerOfTwo(n))
	}
	i := 0
	for _, m := range s.members {
		s.snapshot[i] = m
		i++
	}
	slices.SortFunc(s.snapshot[:n], func(a, b member) int { return cmp.Compare(a.seq, b.seq) })
	clear(s.snapshot[n:])
	s.count = n
	s.rebuilds++
	s.observer.SnapshotRebuilt(n)
}

// Members returns the number of live members.
func (s *Scheduler) Members() int { return len(s.members) }

// Contains reports whether b is a live member.
func (s *Scheduler) Contains(b Behaviour) bool {
	_, ok := s.members[b]
	return ok
}

// SnapshotLen returns the length of the snapshot used by the last dispatch.
func (s *Scheduler) SnapshotLen() int { return s.count }

// Capacity returns the size of the snapshot buffer.
func (s *Scheduler) Capacity() int { return len(s.snapshot) }

// Rebuilds returns how many times the snapshot has been rebuilt.
func (s *Scheduler) Rebuilds() int { return s.rebuilds }

// Dirty reports whether the next dispatch will rebuild the snapshot.
func (s *Scheduler) Dirty() bool { return s.dirty }

func (s *Scheduler) Reset() {
	clear(s.members)
	clear(s.snapshot)
	s.count = 0
	s.dirty = false
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
