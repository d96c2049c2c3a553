package core

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

// App runs a set of modules around a shared Runtime.
type App struct {
	Modules         []Module
	Runtime         *Runtime
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
}

// NewApp builds an App. A nil runtime is replaced by one logging to logger.
func NewApp(logger *slog.Logger, rt *Runtime, mods ...Module) *App {
	if rt == nil {
		rt = NewRuntime(WithLogger(logger))
	}
	return &App{
		Modules:         mods,
		Runtime:         rt,
		Logger:          logger,
		ShutdownTimeout: 15 * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	order, err := orderModules(a.Modules)
	if err != nil {
		return err
	}

	// Configure runs on this goroutine before any module starts, so the
	// container can be read directly here.
	for _, m := range order {
		if err := m.Configure(a.Runtime); err != nil {
			return fmt.Errorf("configure %s: %w", m.Name(), err)
		}
	}
	c := a.Runtime.Container()
	a.Logger.Info("modules configured",
		"modules", len(order), "registered", c.Registered(), "outstanding", c.Outstanding())

	var started []Module
	for _, m := range order {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, a.Runtime); err != nil {
			_ = a.stop(started)
			return fmt.Errorf("start %s: %w", m.Name(), err)
		}
		started = append(started, m)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case <-stop:
	}

	signal.Stop(stop)
	return a.stop(started)
}

// stop stops mods in reverse order and returns the first error.
func (a *App) stop(mods []Module) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
	defer cancel()

	var firstErr error
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(shutdownCtx, a.Runtime); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.Name(), err)
		}
	}
	return firstErr
}

// orderModules returns mods with every module after the modules it depends
// on. Independent modules come out in name order.
func orderModules(mods []Module) ([]Module, error) {
	byName := make(map[string]Module, len(mods))
	for _, m := range mods {
		if _, dup := byName[m.Name()]; dup {
			return nil, fmt.Errorf("duplicate module name: %s", m.Name())
		}
		byName[m.Name()] = m
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(mods))
	out := make([]Module, 0, len(mods))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("cycle detected at module %s", name)
		case done:
			return nil
		}
		state[name] = visiting
		m := byName[name]
		for _, dep := range m.DependsOn() {
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("missing dependency: %s depends on %s", name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, m)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(byName)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
