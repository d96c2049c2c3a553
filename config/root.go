package config

import "time"

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version" validate:"required"`
}

type LoggingConfig struct {
	Level  string `config:"level" validate:"oneof=debug info warn error"`
	Format string `config:"format" validate:"oneof=text json"`
}

// LoopConfig drives the frame loop host.
type LoopConfig struct {
	FrameRate int `config:"frameRate" validate:"min=1,max=1000"`
}

type SchedulerConfig struct {
	// InitialCapacity sizes the tick snapshot buffer before it first grows.
	InitialCapacity int `config:"initialCapacity" validate:"min=1"`
}

type MetricsConfig struct {
	Enabled bool `config:"enabled"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath" validate:"required,startswith=/"`
}

type ServerConfig struct {
	Enabled      bool          `config:"enabled"`
	Addr         string        `config:"addr" validate:"required_if=Enabled true"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type Root struct {
	App           AppInfo             `config:"app"`
	Logging       LoggingConfig       `config:"logging"`
	Loop          LoopConfig          `config:"loop"`
	Scheduler     SchedulerConfig     `config:"scheduler"`
	Server        ServerConfig        `config:"server"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
}
