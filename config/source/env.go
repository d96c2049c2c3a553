package source

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix selects which environment variables EnvSource reads.
const DefaultEnvPrefix = "ASYNCDEP_"

// EnvSource maps prefixed environment variables onto the configuration tree.
// After the prefix, double underscores separate levels and the remaining
// name is matched case-insensitively by the binder:
//
//	ASYNCDEP_LOOP__FRAMERATE=30        -> {loop: {framerate: "30"}}
//	ASYNCDEP_SERVER__ADDR=:9090        -> {server: {addr: ":9090"}}
//
// Values stay strings; the binder converts them. Variables from Files
// (dotenv format) apply first and the process environment wins over them.
// Missing files are skipped.
type EnvSource struct {
	Prefix string
	Files  []string
	// Environ defaults to os.Environ.
	Environ func() []string
}

func (e *EnvSource) Name() string { return "env" }

func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}

	vars, err := readDotEnv(e.Files)
	if err != nil {
		return nil, err
	}
	for _, kv := range environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			vars[key] = value
		}
	}

	out := map[string]any{}
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, prefix)), "__")
		setPath(out, path, vars[key])
	}
	return out, nil
}

// readDotEnv merges files in order, later files winning.
func readDotEnv(files []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		maps.Copy(vars, m)
	}
	return vars, nil
}

// setPath stores value at path, creating maps on the way. A path that runs
// through an existing leaf is dropped.
func setPath(m map[string]any, path []string, value string) {
	cur := m
	for i, seg := range path {
		if seg == "" {
			return
		}
		if i == len(path)-1 {
			cur[seg] = value
			return
		}
		next, exists := cur[seg]
		if !exists {
			child := map[string]any{}
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return
		}
		cur = child
	}
}
