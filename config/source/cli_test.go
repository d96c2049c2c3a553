package source

import (
	"context"
	"reflect"
	"testing"
)

func TestCLISource_Name(t *testing.T) {
	if got := (&CLISource{}).Name(); got != "cli" {
		t.Errorf("Name() = %v, want cli", got)
	}
}

func TestCLISource_Load(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected map[string]any
	}{
		{
			name: "equals and space forms",
			args: []string{"--loop.frameRate=30", "--server.addr", ":9090"},
			expected: map[string]any{
				"loop":   map[string]any{"frameRate": "30"},
				"server": map[string]any{"addr": ":9090"},
			},
		},
		{
			name: "single dash and positional args are ignored",
			args: []string{"-v", "run", "--app.name=demo"},
			expected: map[string]any{
				"app": map[string]any{"name": "demo"},
			},
		},
		{
			name:     "empty values are ignored",
			args:     []string{"--logging.level="},
			expected: map[string]any{},
		},
		{
			name:     "no args",
			args:     []string{},
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&CLISource{Args: tt.args}).Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Load() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"--loop.frameRate=30": "loop.frameRate",
		"--server.addr":       "server.addr",
		"--":                  "",
		"-v":                  "",
		"plain":               "",
	}
	for arg, want := range tests {
		if got := flagName(arg); got != want {
			t.Errorf("flagName(%q) = %q, want %q", arg, got, want)
		}
	}
}

func TestLongOnly(t *testing.T) {
	got := longOnly([]string{"-v", "--a=1", "-", "x"})
	want := []string{"--a=1", "-", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("longOnly() = %v, want %v", got, want)
	}
}
