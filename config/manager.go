package config

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
)

// Manager loads a configuration struct from layered sources and tells
// subscribers when a reload changes it.
//
// A reload binds and validates into a fresh value first; the managed struct
// is only overwritten when that succeeds, so it never holds a half-applied or
// invalid configuration. Methods are safe for concurrent use.
type Manager struct {
	sources []ConfigSource
	binder  *Binder

	mu     sync.RWMutex
	config any
	subs   []chan Event
}

// NewManager loads cfg, a pointer to a struct, from sources in order; later
// sources win.
//
//	var cfg config.Root
//	mgr, err := config.NewManager(&cfg,
//	    config.Defaults{},
//	    &source.FileSource{BasePath: "configs"},
//	    &source.EnvSource{},
//	    &source.CLISource{},
//	)
func NewManager(cfg any, sources ...ConfigSource) (*Manager, error) {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("config: target must be a pointer to a struct, got %T", cfg)
	}
	m := &Manager{
		sources: sources,
		binder:  NewBinder(),
		config:  cfg,
	}
	if err := m.Reload(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads every source. On any error the current configuration is
// left untouched.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("load config from %s: %w", src.Name(), err)
		}
		MergeMaps(merged, lowerKeys(vals))
	}

	typ := reflect.TypeOf(m.config).Elem()
	next := reflect.New(typ)
	if err := m.binder.Bind(merged, next.Interface()); err != nil {
		return err
	}

	m.mu.Lock()
	prev := reflect.New(typ)
	prev.Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(next.Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(prev.Interface(), next.Interface()) {
		m.notify(diffEvent(prev.Interface(), next.Interface()))
	}
	return nil
}

// ReloadOn calls Reload for every signal received on signals until ctx is
// done or signals is closed. Failed reloads go to onErr, which may be nil.
func (m *Manager) ReloadOn(ctx context.Context, signals <-chan os.Signal, onErr func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			if err := m.Reload(ctx); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}

// Snapshot copies the current configuration into out, a pointer of the same
// type as the managed struct.
func (m *Manager) Snapshot(out any) error {
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.Type() != reflect.TypeOf(m.config) {
		return fmt.Errorf("config: snapshot target must be %T, got %T", m.config, out)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ov.Elem().Set(reflect.ValueOf(m.config).Elem())
	return nil
}

// Subscribe registers ch for change events. Delivery never blocks: a full
// channel misses the event. The channel is never closed by the Manager.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
