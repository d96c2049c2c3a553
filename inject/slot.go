package inject

import (
	"fmt"
	"reflect"
)

// Slot is a single dependency requirement of a behaviour type: a capability
// type plus the member that receives the resolved instance.
type Slot struct {
	Capability reflect.Type
	Name       string
	assign     func(target, value any)
}

// Key identifies a slot independently of its assign function.
type Key struct {
	Capability reflect.Type
	Name       string
}

func (s Slot) Key() Key { return Key{Capability: s.Capability, Name: s.Name} }

// Assign stores value into the slot's member on target.
func (s Slot) Assign(target, value any) { s.assign(target, value) }

func (s Slot) String() string {
	if s.Capability == nil {
		return s.Name + " <nil>"
	}
	return fmt.Sprintf("%s %s", s.Name, s.Capability)
}

// Declarer is implemented by behaviour types that need injected members.
//
// InjectSlots is a static table: it is called once per concrete type,
// possibly on a nil receiver, and must not read the receiver.
type Declarer interface {
	InjectSlots() []Slot
}

// Field declares a slot of capability C on targets of type B.
//
//	func (*Mover) InjectSlots() []inject.Slot {
//	    return []inject.Slot{
//	        inject.Field("clock", func(m *Mover, c *Clock) { m.clock = c }),
//	    }
//	}
func Field[B any, C any](name string, set func(B, C)) Slot {
	s := Slot{Capability: reflect.TypeFor[C](), Name: name}
	if set != nil {
		s.assign = func(target, value any) {
			set(target.(B), value.(C))
		}
	}
	return s
}

// Inherit re-targets slots declared on an embedded type P so they can be
// listed by the embedding type B. up returns the embedded value inside b.
//
//	func (*Runner) InjectSlots() []inject.Slot {
//	    own := []inject.Slot{inject.Field("track", func(r *Runner, t *Track) { r.track = t })}
//	    return append(own, inject.Inherit(func(r *Runner) *Walker { return &r.Walker },
//	        (*Walker)(nil).InjectSlots()...)...)
//	}
func Inherit[B any, P any](up func(B) P, slots ...Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		parent := s
		if parent.assign != nil {
			inner := parent.assign
			parent.assign = func(target, value any) {
				inner(up(target.(B)), value)
			}
		}
		out = append(out, parent)
	}
	return out
}

func primitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}
