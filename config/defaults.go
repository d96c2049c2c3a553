package config

import "context"

// Defaults is the lowest-precedence source. It supplies a value for every
// field of Root so that a missing file still yields a valid configuration.
type Defaults struct{}

func (Defaults) Name() string { return "defaults" }

func (Defaults) Load(context.Context) (map[string]any, error) {
	return map[string]any{
		"app": map[string]any{
			"name":    "asyncdep",
			"version": "dev",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"loop": map[string]any{
			"frameRate": 60,
		},
		"scheduler": map[string]any{
			"initialCapacity": 512,
		},
		"server": map[string]any{
			"enabled":      true,
			"addr":         ":8080",
			"readTimeout":  "5s",
			"writeTimeout": "10s",
			"idleTimeout":  "60s",
		},
		"observability": map[string]any{
			"metrics": map[string]any{"enabled": true},
		},
		"actuator": map[string]any{
			"basePath": "/actuator",
		},
	}, nil
}
