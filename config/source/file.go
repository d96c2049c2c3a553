package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/havud29/asyncdep/config"
)

// DefaultBaseName is the file name, without extension, FileSource looks for.
const DefaultBaseName = "asyncdep"

// FileSource reads YAML from BasePath: {BaseName}.yaml (or .yml) and, when
// Profile is set, {BaseName}.{Profile}.yaml deep-merged on top.
//
//	configs/
//	  asyncdep.yaml
//	  asyncdep.dev.yaml
//
// A missing base file is not an error unless Required is set; a missing
// profile file is always ignored.
type FileSource struct {
	BasePath string
	BaseName string
	Profile  string
	Required bool
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := f.BaseName
	if name == "" {
		name = DefaultBaseName
	}

	data := map[string]any{}
	base := findYAML(f.BasePath, name)
	if base == "" {
		if f.Required {
			return nil, fmt.Errorf("%s.yaml in %q: %w", name, f.BasePath, os.ErrNotExist)
		}
		return data, nil
	}
	if err := readYAML(base, data); err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if overlay := findYAML(f.BasePath, name+"."+f.Profile); overlay != "" {
			prof := map[string]any{}
			if err := readYAML(overlay, prof); err != nil {
				return nil, err
			}
			config.MergeMaps(data, prof)
		}
	}
	return data, nil
}

func findYAML(dir, name string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if out == nil {
		return errors.New("parse " + path + ": not a mapping")
	}
	return nil
}
