package core

import "context"

// Module is a unit of the host application: the frame loop, the diagnostics
// server and so on. Modules share objects through the runtime's container.
type Module interface {
	Name() string
	// DependsOn declares hard dependencies by module name.
	DependsOn() []string
	// Configure registers objects into the runtime. All modules are configured
	// before any is started, on the caller's goroutine.
	Configure(rt *Runtime) error
	// Start begins any long-running work.
	Start(ctx context.Context, rt *Runtime) error
	// Stop gracefully stops the module.
	Stop(ctx context.Context, rt *Runtime) error
}
