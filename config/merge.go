package config

import "strings"

// MergeMaps folds src into dst. Nested maps merge recursively; anything else
// in src replaces the value in dst.
func MergeMaps(dst, src map[string]any) {
	for k, v := range src {
		sub, isMap := v.(map[string]any)
		if existing, ok := dst[k].(map[string]any); ok && isMap {
			MergeMaps(existing, sub)
			continue
		}
		if isMap {
			cp := make(map[string]any, len(sub))
			MergeMaps(cp, sub)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}

// lowerKeys returns a copy of m with every key lower-cased at every level,
// so sources that spell a key differently ("frameRate", "framerate") land on
// the same entry. The binder matches keys case-insensitively.
func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = lowerKeys(sub)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
