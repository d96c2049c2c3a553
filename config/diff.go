package config

import "reflect"

// diffEvent lists the top-level fields that differ between two structs (or
// pointers to structs) of the same type.
func diffEvent(prev, next any) Event {
	evt := Event{OldConfig: prev, NewConfig: next}
	if prev == nil || next == nil {
		return evt
	}

	pv := reflect.Indirect(reflect.ValueOf(prev))
	nv := reflect.Indirect(reflect.ValueOf(next))
	if pv.Kind() != reflect.Struct || pv.Type() != nv.Type() {
		return evt
	}

	for i := range pv.NumField() {
		if !reflect.DeepEqual(pv.Field(i).Interface(), nv.Field(i).Interface()) {
			evt.ChangedKeys = append(evt.ChangedKeys, pv.Type().Field(i).Name)
		}
	}
	return evt
}
