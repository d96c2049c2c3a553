package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes a merged source tree into a struct and validates it.
//
// Fields are matched through `config` tags and checked with `validate` tags.
// Strings are converted where needed ("8080" -> 8080, "5s" -> 5*time.Second,
// "a,b" -> []string{"a", "b"}).
type Binder struct {
	validate *validator.Validate
}

// BindError reports which stage of binding failed.
type BindError struct {
	Stage string // "decode" or "validate"
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func NewBinder() *Binder {
	return &Binder{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Bind fills target, a pointer to a struct, from tree.
func (b *Binder) Bind(tree map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := dec.Decode(tree); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := b.validate.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}
