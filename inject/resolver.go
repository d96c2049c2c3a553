package inject

import (
	"fmt"
	"reflect"
)

// InvalidSlotError reports a slot declaration whose capability type cannot be
// determined. It is raised the first time the declaring type is analysed.
type InvalidSlotError struct {
	Type   reflect.Type
	Slot   string
	Reason string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("inject: invalid slot %q on %v: %s", e.Slot, e.Type, e.Reason)
}

var anyType = reflect.TypeFor[any]()

// Resolver memoizes the slot list of every concrete type it has seen.
// It is not safe for concurrent use; the runtime drives it from one goroutine.
type Resolver struct {
	cache map[reflect.Type][]Slot
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[reflect.Type][]Slot)}
}

// SlotsFor returns the slots declared by v's concrete type.
// The returned slice is shared and must not be modified.
func (r *Resolver) SlotsFor(v any) ([]Slot, error) {
	t := reflect.TypeOf(v)
	if slots, ok := r.cache[t]; ok {
		return slots, nil
	}

	var declared []Slot
	if d, ok := v.(Declarer); ok {
		declared = d.InjectSlots()
	}

	slots := make([]Slot, 0, len(declared))
	for _, s := range declared {
		switch {
		case s.Capability == nil:
			return nil, &InvalidSlotError{Type: t, Slot: s.Name, Reason: "nil capability type"}
		case s.Capability == anyType:
			return nil, &InvalidSlotError{Type: t, Slot: s.Name, Reason: "empty interface is not a capability"}
		case s.assign == nil:
			return nil, &InvalidSlotError{Type: t, Slot: s.Name, Reason: "no assign function"}
		case primitive(s.Capability):
			continue
		}
		slots = append(slots, s)
	}

	r.cache[t] = slots
	return slots, nil
}

// Cached reports how many types have been analysed.
func (r *Resolver) Cached() int { return len(r.cache) }

// Reset forgets every analysed type.
func (r *Resolver) Reset() {
	clear(r.cache)
}
