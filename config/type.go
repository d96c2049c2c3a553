package config

import "context"

// ConfigSource is one layer of configuration. Later layers override earlier
// ones key by key.
type ConfigSource interface {
	// Load returns the layer as a string-keyed tree. Implementations return a
	// fresh map on every call and honour ctx cancellation.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in errors and logs ("file", "env", "cli").
	Name() string
}

// Event is delivered to subscribers when a reload changes the configuration.
type Event struct {
	// ChangedKeys lists the top-level struct fields that differ.
	ChangedKeys []string
	OldConfig   any
	NewConfig   any
}
