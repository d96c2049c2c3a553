package core

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNilBehaviour is returned when a nil behaviour is attached.
var ErrNilBehaviour = errors.New("core: nil behaviour")

// NilInstanceError represents an attempt to register a nil instance.
type NilInstanceError struct {
	Capability reflect.Type
}

func (e *NilInstanceError) Error() string {
	return fmt.Sprintf("core: nil instance registered for capability %v", e.Capability)
}

// CapabilityMismatchError represents an instance that does not satisfy the
// capability it is registered under.
type CapabilityMismatchError struct {
	Capability reflect.Type
	Got        reflect.Type
}

func (e *CapabilityMismatchError) Error() string {
	return fmt.Sprintf("core: %v is not assignable to capability %v", e.Got, e.Capability)
}

// AttachError wraps a failure to attach a behaviour.
type AttachError struct {
	Type reflect.Type
	Err  error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("core: attach %v: %v", e.Type, e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}
