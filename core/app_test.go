package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name     string
	deps     []string
	startErr error
	stopErr  error
	log      *[]string
}

func (m *fakeModule) Name() string        { return m.name }
func (m *fakeModule) DependsOn() []string { return m.deps }

func (m *fakeModule) Configure(*Runtime) error {
	*m.log = append(*m.log, "configure "+m.name)
	return nil
}

func (m *fakeModule) Start(context.Context, *Runtime) error {
	*m.log = append(*m.log, "start "+m.name)
	return m.startErr
}

func (m *fakeModule) Stop(context.Context, *Runtime) error {
	*m.log = append(*m.log, "stop "+m.name)
	return m.stopErr
}

func names(mods []Module) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.Name())
	}
	return out
}

func TestOrderModules(t *testing.T) {
	var log []string
	mod := func(name string, deps ...string) Module {
		return &fakeModule{name: name, deps: deps, log: &log}
	}

	tests := []struct {
		name    string
		mods    []Module
		want    []string
		wantErr string
	}{
		{
			name: "dependencies first",
			mods: []Module{mod("actuator", "web", "loop"), mod("web"), mod("loop")},
			want: []string{"web", "loop", "actuator"},
		},
		{
			name: "stable without dependencies",
			mods: []Module{mod("b"), mod("c"), mod("a")},
			want: []string{"a", "b", "c"},
		},
		{
			name:    "missing dependency",
			mods:    []Module{mod("demo", "loop")},
			wantErr: "missing dependency: demo depends on loop",
		},
		{
			name:    "cycle",
			mods:    []Module{mod("a", "b"), mod("b", "a")},
			wantErr: "cycle detected",
		},
		{
			name:    "duplicate",
			mods:    []Module{mod("a"), mod("a")},
			wantErr: "duplicate module name: a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orderModules(tt.mods)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestApp_RunStopsInReverseOrder(t *testing.T) {
	var log []string
	app := NewApp(quietLogger(), nil,
		&fakeModule{name: "web", deps: []string{"loop"}, log: &log},
		&fakeModule{name: "loop", log: &log},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.Run(ctx))
	assert.Equal(t, []string{
		"configure loop", "configure web",
		"start loop", "start web",
		"stop web", "stop loop",
	}, log)
}

func TestApp_RunRollsBackOnStartFailure(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	app := NewApp(quietLogger(), nil,
		&fakeModule{name: "a", log: &log},
		&fakeModule{name: "b", startErr: boom, log: &log},
		&fakeModule{name: "c", log: &log},
	)

	err := app.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{
		"configure a", "configure b", "configure c",
		"start a", "start b",
		"stop a",
	}, log)
}

func TestApp_RunReportsFirstStopError(t *testing.T) {
	var log []string
	first, second := errors.New("first"), errors.New("second")
	app := NewApp(quietLogger(), nil,
		&fakeModule{name: "a", stopErr: second, log: &log},
		&fakeModule{name: "b", stopErr: first, log: &log},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.Run(ctx)

	require.ErrorIs(t, err, first)
	assert.NotErrorIs(t, err, second)
}
